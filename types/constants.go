package types

// Names shared by the catalog server and its client. Centralizing these
// prevents typos between the schema, the resolvers and the decoders.
const (
	// GraphQLTag is the struct tag naming the field, alias, arguments or
	// inline fragment a struct field selects.
	GraphQLTag = "graphql"

	// ScalarTag marks a struct field whose value is decoded whole instead
	// of being expanded into a selection set.
	ScalarTag = "scalar"

	// FragmentPrefix starts an inline fragment tag ("... on Cake").
	FragmentPrefix = "..."

	// TypenameField is the GraphQL introspection field used for type
	// discrimination in unions and interfaces.
	TypenameField = "__typename"

	// CakeTypename and BeverageTypename are the concrete members of the
	// Product union.
	CakeTypename     = "Cake"
	BeverageTypename = "Beverage"

	// ProductTypeCake and ProductTypeBeverage are the values of the
	// ProductType enum accepted by addProduct.
	ProductTypeCake     = "cake"
	ProductTypeBeverage = "beverage"

	// SortAscending and SortDescending are the values of the
	// SortDirection enum.
	SortAscending  = "ASCENDING"
	SortDescending = "DESCENDING"

	// SubscriptionProtocol is the websocket subprotocol spoken on the
	// subscription endpoint.
	SubscriptionProtocol = "graphql-ws"
)

// Codes the catalog server reports in the extensions of GraphQL errors.
const (
	CodeInvalidInput   = "INVALID_INPUT"
	CodeUnknownSortKey = "UNKNOWN_SORT_KEY"
	CodeInternal       = "INTERNAL"
)
