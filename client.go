// Package catalog is a client for the catalog GraphQL server. Client runs
// queries and mutations over HTTP and SubscriptionClient streams
// subscriptions over the graphql-ws websocket protocol.
//
// Operations are described by structs: the fields, with graphql tags for
// arguments, aliases and inline fragments, give both the selection set sent
// to the server and the shape the response is decoded into.
package catalog

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/llehouerou/go-graphql-catalog/pkg/jsonutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RequestModifier tweaks every outgoing HTTP request, for instance to set
// authentication headers.
type RequestModifier func(*http.Request)

// Client is a catalog GraphQL client.
//
// WithDebug and WithRequestModifier return a new Client and leave the
// receiver untouched:
//
//	client = client.WithDebug(true)  // Correct
//	client.WithDebug(true)            // Wrong - original client unchanged
//
// SubscriptionClient differs: its With* methods modify the receiver.
type Client struct {
	url             string
	httpClient      *http.Client
	requestModifier RequestModifier
	debug           bool
}

// NewClient creates a client for the GraphQL endpoint at url. A nil
// httpClient means http.DefaultClient.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, httpClient: httpClient}
}

// Query builds a query from q, a pointer to a selection struct, runs it
// and decodes the result into q.
func (c *Client) Query(ctx context.Context, q any, variables map[string]any, options ...Option) error {
	return c.run(ctx, queryOperation, q, variables, options)
}

// Mutate is Query for mutations.
func (c *Client) Mutate(ctx context.Context, m any, variables map[string]any, options ...Option) error {
	return c.run(ctx, mutationOperation, m, variables, options)
}

func (c *Client) run(ctx context.Context, op operationType, v any, variables map[string]any, options []Option) error {
	document, err := constructOperation(op, v, variables, options)
	if err != nil {
		return Errors{newError(ErrGraphQLEncode, err)}
	}
	return c.Exec(ctx, document, v, variables)
}

// Exec runs a GraphQL document and decodes the data member into v. Partial
// data is still decoded when the server also reports errors, so a nullable
// field that failed is left nil while its siblings are filled.
func (c *Client) Exec(ctx context.Context, query string, v any, variables map[string]any) error {
	data, x, errs := c.roundTrip(ctx, query, variables)
	if len(data) > 0 && v != nil {
		if err := jsonutil.UnmarshalGraphQL(data, v); err != nil {
			errs = append(errs, c.annotate(newError(ErrGraphQLDecode, err), x))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ExecRaw runs a GraphQL document and returns the data member undecoded.
func (c *Client) ExecRaw(ctx context.Context, query string, variables map[string]any) ([]byte, error) {
	data, _, errs := c.roundTrip(ctx, query, variables)
	if len(errs) > 0 {
		return data, errs
	}
	return data, nil
}

// exchange is one HTTP round trip, kept so that errors can carry it in
// debug mode.
type exchange struct {
	req      *http.Request
	reqBody  []byte
	resp     *http.Response
	respBody []byte
}

// roundTrip posts the document and returns the data member of the reply
// together with the GraphQL errors the server reported.
func (c *Client) roundTrip(ctx context.Context, query string, variables map[string]any) ([]byte, *exchange, Errors) {
	req, reqBody, err := c.BuildRequest(ctx, query, variables)
	x := &exchange{req: req, reqBody: reqBody}
	if err != nil {
		return nil, x, c.fail(ErrRequestError, fmt.Errorf("problem constructing request: %w", err), x)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, x, c.fail(ErrRequestError, err, x)
	}
	defer func() { _ = resp.Body.Close() }()
	x.resp = resp

	if x.respBody, err = readBody(resp); err != nil {
		return nil, x, c.fail(ErrJsonDecode, err, x)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, x, c.fail(ErrRequestError, fmt.Errorf("%v; body: %q", resp.Status, x.respBody), x)
	}

	data, errs := c.DecodeResponse(bytes.NewReader(x.respBody))
	switch {
	case len(errs) == 0:
		return data, x, nil
	case errs[0].GetCode() == ErrJsonDecode:
		return nil, x, c.fail(ErrJsonDecode, errors.New(errs[0].Message), x)
	}
	errs[0] = c.annotate(errs[0], x)
	return data, x, errs
}

// readBody reads the whole response body, inflating it when the server sent
// it gzip-encoded.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("problem trying to create gzip reader: %w", err)
		}
		defer func() { _ = gr.Close() }()
		r = gr
	}
	return io.ReadAll(r)
}

// BuildRequest builds the POST request for a GraphQL document. It also
// returns the encoded body.
func (c *Client) BuildRequest(ctx context.Context, query string, variables map[string]any) (*http.Request, []byte, error) {
	if len(variables) == 0 {
		variables = nil
	}
	in := struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
	}{Query: query, Variables: variables}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return nil, nil, err
	}
	body := buf.Bytes()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, body, err
	}
	req.Header.Add("Content-Type", "application/json")
	if c.requestModifier != nil {
		c.requestModifier(req)
	}
	return req, body, nil
}

// DecodeResponse splits a GraphQL response into its data member, nil when
// absent or null, and its errors.
func (c *Client) DecodeResponse(r io.Reader) ([]byte, Errors) {
	var out struct {
		Data   jsoniter.RawMessage
		Errors Errors
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, Errors{newError(ErrJsonDecode, err)}
	}

	var data []byte
	if len(out.Data) > 0 && string(out.Data) != "null" {
		data = out.Data
	}
	if len(out.Errors) > 0 {
		return data, out.Errors
	}
	return data, nil
}

func (c *Client) fail(code string, err error, x *exchange) Errors {
	return Errors{c.annotate(newError(code, err), x)}
}

// annotate attaches the exchange to e in debug mode.
func (c *Client) annotate(e Error, x *exchange) Error {
	if !c.debug || x == nil {
		return e
	}
	internal := &InternalExtensions{}
	if x.req != nil {
		internal.Request = &HTTPInfo{Headers: x.req.Header, Body: string(x.reqBody)}
	}
	if x.resp != nil {
		internal.Response = &HTTPInfo{Headers: x.resp.Header, Body: string(x.respBody)}
	}
	return e.withInternal(internal)
}

func (c *Client) clone() *Client {
	cp := *c
	return &cp
}

// WithRequestModifier returns a copy of the client that passes every request
// through f. The copies share the underlying http.Client and its
// connections.
func (c *Client) WithRequestModifier(f RequestModifier) *Client {
	cp := c.clone()
	cp.requestModifier = f
	return cp
}

// WithDebug returns a copy of the client that attaches the request and
// response to the errors it returns.
func (c *Client) WithDebug(debug bool) *Client {
	cp := c.clone()
	cp.debug = debug
	return cp
}
