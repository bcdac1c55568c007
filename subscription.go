package catalog

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/llehouerou/go-graphql-catalog/pkg/jsonutil"
	"github.com/llehouerou/go-graphql-catalog/types"
)

// OperationMessageType is the type of a graphql-ws protocol message.
type OperationMessageType string

const (
	GQL_CONNECTION_INIT       OperationMessageType = "connection_init"
	GQL_CONNECTION_ACK        OperationMessageType = "connection_ack"
	GQL_CONNECTION_ERROR      OperationMessageType = "connection_error"
	GQL_CONNECTION_KEEP_ALIVE OperationMessageType = "ka"
	GQL_CONNECTION_TERMINATE  OperationMessageType = "connection_terminate"
	GQL_START                 OperationMessageType = "start"
	GQL_STOP                  OperationMessageType = "stop"
	GQL_DATA                  OperationMessageType = "data"
	GQL_ERROR                 OperationMessageType = "error"
	GQL_COMPLETE              OperationMessageType = "complete"
)

// ErrSubscriptionStopped is returned by a handler to stop its subscription
// without failing Run.
var ErrSubscriptionStopped = errors.New("subscription stopped")

const defaultSubscriptionTimeout = time.Minute

// OperationMessage is a graphql-ws protocol message. wsjson encodes it with
// encoding/json, so the payload is a standard RawMessage.
type OperationMessage struct {
	ID      string               `json:"id,omitempty"`
	Type    OperationMessageType `json:"type"`
	Payload stdjson.RawMessage   `json:"payload,omitempty"`
}

// WebsocketOptions customises the websocket handshake.
type WebsocketOptions struct {
	HTTPClient *http.Client
	HTTPHeader http.Header
}

type subscription struct {
	query     string
	variables map[string]any
	handler   func(data []byte, err error) error
}

// SubscriptionClient streams GraphQL subscriptions over a single websocket.
// Unlike Client, its With* methods modify the receiver and return it.
type SubscriptionClient struct {
	url              string
	connectionParams map[string]any
	timeout          time.Duration
	readLimit        int64
	wsOptions        WebsocketOptions
	log              func(args ...any)
	onConnected      func()
	onDisconnected   func()

	mu            sync.Mutex
	subscriptions map[string]*subscription
	conn          *websocket.Conn
	runCtx        context.Context
	cancel        context.CancelFunc
}

// NewSubscriptionClient creates a client for the websocket endpoint at url.
// Both ws(s):// and http(s):// URLs are accepted.
func NewSubscriptionClient(url string) *SubscriptionClient {
	return &SubscriptionClient{
		url:           url,
		timeout:       defaultSubscriptionTimeout,
		log:           func(args ...any) {},
		subscriptions: make(map[string]*subscription),
	}
}

// WithConnectionParams sets the payload of the connection_init message.
func (c *SubscriptionClient) WithConnectionParams(params map[string]any) *SubscriptionClient {
	c.connectionParams = params
	return c
}

// WithTimeout bounds the handshake and the wait for connection_ack.
func (c *SubscriptionClient) WithTimeout(timeout time.Duration) *SubscriptionClient {
	c.timeout = timeout
	return c
}

// WithReadLimit sets the maximum size of a message read from the server.
func (c *SubscriptionClient) WithReadLimit(limit int64) *SubscriptionClient {
	c.readLimit = limit
	return c
}

// WithWebSocketOptions customises the websocket handshake.
func (c *SubscriptionClient) WithWebSocketOptions(options WebsocketOptions) *SubscriptionClient {
	c.wsOptions = options
	return c
}

// WithLog sets a logger for protocol messages.
func (c *SubscriptionClient) WithLog(logf func(args ...any)) *SubscriptionClient {
	if logf != nil {
		c.log = logf
	}
	return c
}

// OnConnected sets a callback invoked once the server acknowledged the connection.
func (c *SubscriptionClient) OnConnected(fn func()) *SubscriptionClient {
	c.onConnected = fn
	return c
}

// OnDisconnected sets a callback invoked when Run returns.
func (c *SubscriptionClient) OnDisconnected(fn func()) *SubscriptionClient {
	c.onDisconnected = fn
	return c
}

// Subscribe registers a subscription and returns its operation id. It is
// started as soon as the client is connected. handler receives the data of
// every event; returning ErrSubscriptionStopped stops the subscription and
// any other error stops Run.
func (c *SubscriptionClient) Subscribe(
	query string,
	variables map[string]any,
	handler func(data []byte, err error) error,
) (string, error) {
	if handler == nil {
		return "", errors.New("subscription handler is required")
	}
	id := uuid.NewString()
	sub := &subscription{query: query, variables: variables, handler: handler}

	c.mu.Lock()
	c.subscriptions[id] = sub
	conn, ctx := c.conn, c.runCtx
	c.mu.Unlock()

	if conn != nil {
		if err := c.start(ctx, conn, id, sub); err != nil {
			return "", err
		}
	}
	return id, nil
}

// SubscribeProductAdded subscribes to productAdded and decodes every event.
func (c *SubscriptionClient) SubscribeProductAdded(handler func(p Product, err error) error) (string, error) {
	var event struct {
		ProductAdded Product
	}
	query, err := ConstructSubscription(&event, nil, OperationName("ProductAdded"))
	if err != nil {
		return "", err
	}
	return c.Subscribe(query, nil, func(data []byte, err error) error {
		if err != nil {
			return handler(Product{}, err)
		}
		var event struct {
			ProductAdded Product
		}
		if err := jsonutil.UnmarshalGraphQL(data, &event); err != nil {
			return handler(Product{}, Errors{newError(ErrGraphQLDecode, err)})
		}
		if err := event.ProductAdded.check(); err != nil {
			return handler(Product{}, err)
		}
		return handler(event.ProductAdded, nil)
	})
}

// Unsubscribe stops the subscription with the given id. Run returns once no
// subscription is left.
func (c *SubscriptionClient) Unsubscribe(id string) error {
	c.mu.Lock()
	if _, ok := c.subscriptions[id]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("subscription %s not found", id)
	}
	delete(c.subscriptions, id)
	conn, ctx, cancel := c.conn, c.runCtx, c.cancel
	remaining := len(c.subscriptions)
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	err := wsjson.Write(ctx, conn, OperationMessage{ID: id, Type: GQL_STOP})
	if remaining == 0 {
		cancel()
	}
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stop subscription %s: %w", id, err)
	}
	return nil
}

// Run connects, starts every registered subscription and dispatches events
// until ctx is done, Close is called or no subscription is left.
func (c *SubscriptionClient) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn, c.runCtx, c.cancel = conn, ctx, cancel
	pending := make(map[string]*subscription, len(c.subscriptions))
	for id, sub := range c.subscriptions {
		pending[id] = sub
	}
	c.mu.Unlock()
	if c.onConnected != nil {
		c.onConnected()
	}

	defer func() {
		c.mu.Lock()
		c.conn, c.runCtx, c.cancel = nil, nil, nil
		c.mu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		if c.onDisconnected != nil {
			c.onDisconnected()
		}
	}()

	for id, sub := range pending {
		if err := c.start(ctx, conn, id, sub); err != nil {
			return err
		}
	}

	for {
		var msg OperationMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		c.log(string(msg.Type), msg.ID)

		done, err := c.dispatch(ctx, conn, msg)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Close stops a running client.
func (c *SubscriptionClient) Close() error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

func (c *SubscriptionClient) connect(ctx context.Context) (*websocket.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.url, &websocket.DialOptions{
		HTTPClient:   c.wsOptions.HTTPClient,
		HTTPHeader:   c.wsOptions.HTTPHeader,
		Subprotocols: []string{types.SubscriptionProtocol},
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.url, err)
	}
	if c.readLimit > 0 {
		conn.SetReadLimit(c.readLimit)
	}

	init := OperationMessage{Type: GQL_CONNECTION_INIT, Payload: stdjson.RawMessage("{}")}
	if c.connectionParams != nil {
		params, err := json.Marshal(c.connectionParams)
		if err != nil {
			_ = conn.Close(websocket.StatusInternalError, "")
			return nil, fmt.Errorf("encode connection params: %w", err)
		}
		init.Payload = params
	}
	if err := wsjson.Write(dialCtx, conn, init); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "")
		return nil, fmt.Errorf("send connection_init: %w", err)
	}

	for {
		var msg OperationMessage
		if err := wsjson.Read(dialCtx, conn, &msg); err != nil {
			_ = conn.Close(websocket.StatusInternalError, "")
			return nil, fmt.Errorf("wait for connection_ack: %w", err)
		}
		c.log(string(msg.Type))
		switch msg.Type {
		case GQL_CONNECTION_ACK:
			return conn, nil
		case GQL_CONNECTION_ERROR:
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return nil, fmt.Errorf("connection rejected: %s", msg.Payload)
		}
	}
}

func (c *SubscriptionClient) start(ctx context.Context, conn *websocket.Conn, id string, sub *subscription) error {
	payload, err := json.Marshal(map[string]any{
		"query":     sub.query,
		"variables": sub.variables,
	})
	if err != nil {
		return fmt.Errorf("encode subscription %s: %w", id, err)
	}
	if err := wsjson.Write(ctx, conn, OperationMessage{ID: id, Type: GQL_START, Payload: payload}); err != nil {
		return fmt.Errorf("start subscription %s: %w", id, err)
	}
	return nil
}

// dispatch handles one server message and reports whether Run is done.
func (c *SubscriptionClient) dispatch(ctx context.Context, conn *websocket.Conn, msg OperationMessage) (bool, error) {
	switch msg.Type {
	case GQL_DATA, GQL_ERROR:
		c.mu.Lock()
		sub := c.subscriptions[msg.ID]
		c.mu.Unlock()
		if sub == nil {
			return false, nil
		}

		data, gqlErrs := decodePayload(msg)
		var herr error
		if len(gqlErrs) > 0 {
			herr = sub.handler(data, gqlErrs)
		} else {
			herr = sub.handler(data, nil)
		}
		if errors.Is(herr, ErrSubscriptionStopped) {
			_ = wsjson.Write(ctx, conn, OperationMessage{ID: msg.ID, Type: GQL_STOP})
			return c.remove(msg.ID), nil
		}
		return false, herr
	case GQL_COMPLETE:
		return c.remove(msg.ID), nil
	case GQL_CONNECTION_ERROR:
		return false, fmt.Errorf("connection error: %s", msg.Payload)
	default:
		return false, nil
	}
}

// remove drops a subscription and reports whether none is left.
func (c *SubscriptionClient) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, id)
	return len(c.subscriptions) == 0
}

// decodePayload extracts data and errors from a data or error message. The
// payload of an error message is either a single error or a list of errors.
func decodePayload(msg OperationMessage) ([]byte, Errors) {
	if msg.Type == GQL_ERROR {
		var errs Errors
		if err := json.Unmarshal(msg.Payload, &errs); err == nil {
			return nil, errs
		}
		var single Error
		if err := json.Unmarshal(msg.Payload, &single); err != nil {
			return nil, Errors{newError(ErrJsonDecode, err)}
		}
		return nil, Errors{single}
	}

	var out struct {
		Data   jsoniter.RawMessage `json:"data"`
		Errors Errors              `json:"errors"`
	}
	if err := json.Unmarshal(msg.Payload, &out); err != nil {
		return nil, Errors{newError(ErrJsonDecode, err)}
	}
	return out.Data, out.Errors
}
