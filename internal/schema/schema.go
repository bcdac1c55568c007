// Package schema holds the GraphQL schema of the catalog API.
package schema

import (
	_ "embed"

	graphql "github.com/graph-gophers/graphql-go"
)

//go:embed products.graphql
var sdl string

// String returns the schema definition language document.
func String() string {
	return sdl
}

// Parse builds an executable schema bound to resolver.
func Parse(resolver interface{}, opts ...graphql.SchemaOpt) (*graphql.Schema, error) {
	return graphql.ParseSchema(sdl, resolver, opts...)
}
