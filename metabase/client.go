package metabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/oapi-codegen/runtime"
)

// RequestEditorFn is the function signature for the RequestEditor callback function.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Doer performs HTTP requests.
//
// The standard http.Client implements this interface.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client which conforms to the OpenAPI3 specification for the Metabase API.
type Client struct {
	// The endpoint of the server conforming to this interface, with scheme,
	// https://metabase.example.com/api for example. This can contain a path relative
	// to the server, such as https://metabase.example.com/deployed-metabase/api,
	// and all the paths in the API will be appended to the server.
	Server string

	// Doer for performing requests, typically a *http.Client with any
	// customized settings, such as certificate chains.
	Client HttpRequestDoer

	// A list of callbacks for modifying requests which are generated before sending over
	// the network.
	RequestEditors []RequestEditorFn
}

// ClientOption allows setting custom parameters during construction.
type ClientOption func(*Client) error

// Creates a new Client, with reasonable defaults.
func NewClient(server string, opts ...ClientOption) (*Client, error) {
	client := Client{
		Server: server,
	}

	for _, o := range opts {
		if err := o(&client); err != nil {
			return nil, err
		}
	}

	// Ensures the server URL always has a trailing slash.
	if !strings.HasSuffix(client.Server, "/") {
		client.Server += "/"
	}

	if client.Client == nil {
		client.Client = cleanhttp.DefaultPooledClient()
	}

	return &client, nil
}

// WithHTTPClient allows overriding the default Doer, which is automatically created using a pooled http.Client.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.Client = doer
		return nil
	}
}

// WithRequestEditorFn allows setting up a callback function, which will be called right before sending the request.
// This can be used to mutate the request.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.RequestEditors = append(c.RequestEditors, fn)
		return nil
	}
}

func (c *Client) ListDatabases(ctx context.Context, params *ListDatabasesParams, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewListDatabasesRequest(c.Server, params)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) GetDatabaseMetadata(ctx context.Context, id int, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewGetDatabaseMetadataRequest(c.Server, id)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) GetTableMetadata(ctx context.Context, id int, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewGetTableMetadataRequest(c.Server, id)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) ListCollections(ctx context.Context, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewListCollectionsRequest(c.Server)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) CreateCardWithBody(ctx context.Context, contentType string, body io.Reader, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewCreateCardRequestWithBody(c.Server, contentType, body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) CreateCard(ctx context.Context, body CreateCardJSONRequestBody, reqEditors ...RequestEditorFn) (*http.Response, error) {
	bodyReader, err := jsonBodyReader(body)
	if err != nil {
		return nil, err
	}
	return c.CreateCardWithBody(ctx, "application/json", bodyReader, reqEditors...)
}

func (c *Client) QueryCardWithBody(ctx context.Context, id int, contentType string, body io.Reader, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewQueryCardRequestWithBody(c.Server, id, contentType, body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) CreateDashboardWithBody(ctx context.Context, contentType string, body io.Reader, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewCreateDashboardRequestWithBody(c.Server, contentType, body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) UpdateDashboardWithBody(ctx context.Context, id int, contentType string, body io.Reader, reqEditors ...RequestEditorFn) (*http.Response, error) {
	req, err := NewUpdateDashboardRequestWithBody(c.Server, id, contentType, body)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

func (c *Client) CreateSession(ctx context.Context, body CreateSessionJSONRequestBody, reqEditors ...RequestEditorFn) (*http.Response, error) {
	bodyReader, err := jsonBodyReader(body)
	if err != nil {
		return nil, err
	}
	req, err := NewCreateSessionRequestWithBody(c.Server, "application/json", bodyReader)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, req, reqEditors)
}

// Generates requests for ListDatabases.
func NewListDatabasesRequest(server string, params *ListDatabasesParams) (*http.Request, error) {
	queryURL, err := operationURL(server, "/database")
	if err != nil {
		return nil, err
	}

	if params != nil && params.Include != nil {
		queryValues := queryURL.Query()
		queryValues.Add("include", *params.Include)
		queryURL.RawQuery = queryValues.Encode()
	}

	return http.NewRequest(http.MethodGet, queryURL.String(), nil)
}

// Generates requests for GetDatabaseMetadata.
func NewGetDatabaseMetadataRequest(server string, id int) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return nil, err
	}

	queryURL, err := operationURL(server, fmt.Sprintf("/database/%s/metadata", pathParam0))
	if err != nil {
		return nil, err
	}

	return http.NewRequest(http.MethodGet, queryURL.String(), nil)
}

// Generates requests for GetTableMetadata.
func NewGetTableMetadataRequest(server string, id int) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return nil, err
	}

	queryURL, err := operationURL(server, fmt.Sprintf("/table/%s/query_metadata", pathParam0))
	if err != nil {
		return nil, err
	}

	return http.NewRequest(http.MethodGet, queryURL.String(), nil)
}

// Generates requests for ListCollections.
func NewListCollectionsRequest(server string) (*http.Request, error) {
	queryURL, err := operationURL(server, "/collection")
	if err != nil {
		return nil, err
	}

	return http.NewRequest(http.MethodGet, queryURL.String(), nil)
}

// Generates requests for CreateCard with any type of body.
func NewCreateCardRequestWithBody(server string, contentType string, body io.Reader) (*http.Request, error) {
	queryURL, err := operationURL(server, "/card")
	if err != nil {
		return nil, err
	}

	return newRequestWithBody(http.MethodPost, queryURL, contentType, body)
}

// Generates requests for QueryCard with any type of body. The body may be `nil`.
func NewQueryCardRequestWithBody(server string, id int, contentType string, body io.Reader) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return nil, err
	}

	queryURL, err := operationURL(server, fmt.Sprintf("/card/%s/query", pathParam0))
	if err != nil {
		return nil, err
	}

	return newRequestWithBody(http.MethodPost, queryURL, contentType, body)
}

// Generates requests for CreateDashboard with any type of body.
func NewCreateDashboardRequestWithBody(server string, contentType string, body io.Reader) (*http.Request, error) {
	queryURL, err := operationURL(server, "/dashboard")
	if err != nil {
		return nil, err
	}

	return newRequestWithBody(http.MethodPost, queryURL, contentType, body)
}

// Generates requests for UpdateDashboard with any type of body.
func NewUpdateDashboardRequestWithBody(server string, id int, contentType string, body io.Reader) (*http.Request, error) {
	pathParam0, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, id)
	if err != nil {
		return nil, err
	}

	queryURL, err := operationURL(server, fmt.Sprintf("/dashboard/%s", pathParam0))
	if err != nil {
		return nil, err
	}

	return newRequestWithBody(http.MethodPut, queryURL, contentType, body)
}

// Generates requests for CreateSession with any type of body.
func NewCreateSessionRequestWithBody(server string, contentType string, body io.Reader) (*http.Request, error) {
	queryURL, err := operationURL(server, "/session")
	if err != nil {
		return nil, err
	}

	return newRequestWithBody(http.MethodPost, queryURL, contentType, body)
}

// Resolves an operation path relative to the server URL, keeping any path prefix the server URL contains.
func operationURL(server string, operationPath string) (*url.URL, error) {
	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}

	if operationPath[0] == '/' {
		operationPath = "." + operationPath
	}

	return serverURL.Parse(operationPath)
}

func newRequestWithBody(method string, queryURL *url.URL, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, queryURL.String(), body)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Add("Content-Type", contentType)
	}

	return req, nil
}

func jsonBodyReader(body any) (io.Reader, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buf), nil
}

func (c *Client) do(ctx context.Context, req *http.Request, additionalEditors []RequestEditorFn) (*http.Response, error) {
	req = req.WithContext(ctx)
	if err := c.applyEditors(ctx, req, additionalEditors); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

func (c *Client) applyEditors(ctx context.Context, req *http.Request, additionalEditors []RequestEditorFn) error {
	for _, r := range c.RequestEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	for _, r := range additionalEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	return nil
}
