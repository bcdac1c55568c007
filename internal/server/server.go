// Package server exposes the catalog schema over HTTP and websocket.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/graph-gophers/graphql-transport-ws/graphqlws"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/llehouerou/go-graphql-catalog/internal/config"
	"github.com/llehouerou/go-graphql-catalog/internal/observability"
	"github.com/llehouerou/go-graphql-catalog/internal/resolver"
	"github.com/llehouerou/go-graphql-catalog/internal/schema"
	"github.com/llehouerou/go-graphql-catalog/internal/store"
)

const GraphQLPath = "/graphql"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewSchema parses the catalog schema against r with the execution limits
// from cfg. Resolver panics are logged through logger.
func NewSchema(r *resolver.Resolver, cfg config.GraphQLConfig, logger *zap.Logger) (*graphql.Schema, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := schema.Parse(r,
		graphql.MaxDepth(cfg.MaxDepth),
		graphql.MaxParallelism(cfg.MaxParallelism),
		graphql.Logger(observability.PanicLogger{Logger: logger.Named("graphql")}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return s, nil
}

// NewRouter mounts the GraphQL endpoint and the health check. Websocket
// upgrades on the GraphQL path are served with the graphql-ws protocol.
func NewRouter(s *graphql.Schema, st *store.Store, logger *zap.Logger) chi.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(st))

	graphqlHandler := graphqlws.NewHandlerFunc(s, &relay.Handler{Schema: s})
	r.Handle(GraphQLPath, graphqlHandler)

	return r
}

func healthz(st *store.Store) http.HandlerFunc {
	startedAt := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		payload := map[string]any{
			"status":      "ok",
			"uptime":      time.Since(startedAt).String(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"products":    len(st.Products()),
			"ingredients": len(st.Ingredients()),
			"suppliers":   len(st.Suppliers()),
		}

		if err := json.NewEncoder(w).Encode(payload); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
