package resolver

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/llehouerou/go-graphql-catalog/internal/store"
)

const subscriberBuffer = 16

type subscriber struct {
	ctx    context.Context
	events chan *productResolver
}

// broker fans added products out to subscribers. A subscriber that falls
// behind loses events instead of blocking the mutation.
type broker struct {
	logger *zap.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[uint64]*subscriber
}

func newBroker(logger *zap.Logger) *broker {
	return &broker{
		logger: logger,
		subs:   make(map[uint64]*subscriber),
	}
}

// subscribe registers a subscriber until ctx is done, then closes its channel.
func (b *broker) subscribe(ctx context.Context) <-chan *productResolver {
	s := &subscriber{ctx: ctx, events: make(chan *productResolver, subscriberBuffer)}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = s
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(s.events)
		b.mu.Unlock()
	}()

	return s.events
}

func (b *broker) publish(event *productResolver) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, s := range b.subs {
		if s.ctx.Err() != nil {
			continue
		}
		select {
		case s.events <- event:
		default:
			b.logger.Warn("dropping product event for slow subscriber",
				zap.Uint64("subscriber", id),
				zap.String("product_id", event.p.ID),
			)
		}
	}
}

func (b *broker) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// ProductAdded resolves Subscription.productAdded.
func (r *Resolver) ProductAdded(ctx context.Context) <-chan *productResolver {
	return r.events.subscribe(ctx)
}

func (r *Resolver) productEvent(p store.Product) *productResolver {
	return &productResolver{root: r, p: p}
}
