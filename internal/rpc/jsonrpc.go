package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flovouin/mbops/metabase"
)

// The path of the JSON-RPC endpoint on an MCP server.
const DefaultMCPPath = "/mcp"

// Every call is sent in its own request, so the request ID is constant. This keeps envelopes deterministic.
const envelopeRequestId = 1

// The JSON-RPC envelope of a `tools/call` request.
type envelope struct {
	JSONRPC string             `json:"jsonrpc"`
	Id      int                `json:"id"`
	Method  string             `json:"method"`
	Params  mcp.CallToolParams `json:"params"`
}

// The error object of a JSON-RPC response.
type envelopeError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// The JSON-RPC envelope of a response.
type envelopeResponse struct {
	JSONRPC string           `json:"jsonrpc"`
	Id      json.RawMessage  `json:"id"`
	Result  *json.RawMessage `json:"result"`
	Error   *envelopeError   `json:"error"`
}

// Serializes a call to a named tool as a JSON-RPC `tools/call` request.
// The output only depends on the operation and the arguments: the ID is fixed and object keys are sorted.
func BuildEnvelope(operation string, args Args) ([]byte, error) {
	if args == nil {
		args = Args{}
	}

	b, err := json.Marshal(envelope{
		JSONRPC: mcp.JSONRPC_VERSION,
		Id:      envelopeRequestId,
		Method:  string(mcp.MethodToolsCall),
		Params: mcp.CallToolParams{
			Name:      operation,
			Arguments: map[string]any(args),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err.Error())
	}

	return b, nil
}

// Calls operations as tools of an MCP server, over plain JSON-RPC HTTP requests.
type JSONRPCCaller struct {
	endpoint string
	client   metabase.HttpRequestDoer
	editors  []metabase.RequestEditorFn
}

// Allows setting custom parameters during construction.
type JSONRPCOption func(*JSONRPCCaller)

// Overrides the default pooled HTTP client.
func WithDoer(doer metabase.HttpRequestDoer) JSONRPCOption {
	return func(c *JSONRPCCaller) {
		c.client = doer
	}
}

// Adds a callback called right before sending each request, e.g. to set authentication headers.
func WithEditor(fn metabase.RequestEditorFn) JSONRPCOption {
	return func(c *JSONRPCCaller) {
		c.editors = append(c.editors, fn)
	}
}

// Creates a caller posting JSON-RPC envelopes to the given server URL and path.
func NewJSONRPCCaller(serverUrl string, path string, opts ...JSONRPCOption) (*JSONRPCCaller, error) {
	if len(serverUrl) == 0 {
		return nil, errors.New("the MCP server URL should be set and non-empty")
	}

	if len(path) == 0 {
		path = DefaultMCPPath
	}

	c := &JSONRPCCaller{
		endpoint: strings.TrimRight(serverUrl, "/") + "/" + strings.TrimLeft(path, "/"),
	}
	for _, o := range opts {
		o(c)
	}

	if c.client == nil {
		c.client = cleanhttp.DefaultPooledClient()
	}

	return c, nil
}

// Returns the URL envelopes are posted to.
func (c *JSONRPCCaller) Endpoint() string {
	return c.endpoint
}

func (c *JSONRPCCaller) Call(ctx context.Context, operation string, args Args) (json.RawMessage, error) {
	payload, err := BuildEnvelope(operation, args)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", jsonContentType)
	req.Header.Set("Accept", jsonContentType)

	for _, e := range c.editors {
		if err := e(ctx, req); err != nil {
			return nil, err
		}
	}

	rsp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling tool '%s': %w", operation, err)
	}
	defer func() { _ = rsp.Body.Close() }()

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response of tool '%s': %w", operation, err)
	}

	if rsp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Operation:  operation,
			StatusCode: rsp.StatusCode,
			Body:       string(body),
		}
	}

	return parseEnvelopeResponse(operation, body)
}

// Extracts the payload of a tool result from a JSON-RPC response.
// The structured content is preferred. Otherwise, a single text content holding JSON is returned as is, and any other
// content is returned as the JSON array of content items.
func parseEnvelopeResponse(operation string, body []byte) (json.RawMessage, error) {
	var resp envelopeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: tool '%s' did not return a JSON-RPC response", ErrUnexpectedShape, operation)
	}

	if resp.Error != nil {
		return nil, &StatusError{
			Operation:  operation,
			StatusCode: resp.Error.Code,
			Body:       resp.Error.Message,
		}
	}

	if resp.Result == nil {
		return nil, fmt.Errorf("%w: tool '%s' returned neither a result nor an error", ErrUnexpectedShape, operation)
	}

	result, err := mcp.ParseCallToolResult(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("%w: tool '%s': %s", ErrUnexpectedShape, operation, err.Error())
	}

	if result.IsError {
		return nil, &StatusError{
			Operation: operation,
			Body:      contentText(result.Content),
		}
	}

	if result.StructuredContent != nil {
		return json.Marshal(result.StructuredContent)
	}

	if len(result.Content) == 1 {
		if text, ok := mcp.AsTextContent(result.Content[0]); ok && json.Valid([]byte(text.Text)) {
			return json.RawMessage(text.Text), nil
		}
	}

	return json.Marshal(result.Content)
}

// Joins the text contents of a tool result, for error reporting.
func contentText(content []mcp.Content) string {
	texts := make([]string, 0, len(content))
	for _, c := range content {
		if text, ok := mcp.AsTextContent(c); ok {
			texts = append(texts, text.Text)
		}
	}
	return strings.Join(texts, "\n")
}
