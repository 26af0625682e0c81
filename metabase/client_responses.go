package metabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ClientWithResponses builds on Client to offer response payloads.
type ClientWithResponses struct {
	ClientInterface *Client
}

// NewClientWithResponses creates a new ClientWithResponses, which wraps Client with return type handling.
func NewClientWithResponses(server string, opts ...ClientOption) (*ClientWithResponses, error) {
	client, err := NewClient(server, opts...)
	if err != nil {
		return nil, err
	}
	return &ClientWithResponses{client}, nil
}

type ListDatabasesResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *DatabaseList
}

type GetDatabaseMetadataResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *DatabaseMetadata
}

type GetTableMetadataResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *TableMetadata
}

type ListCollectionsResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *[]Collection
}

type CreateCardResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *Card
}

type QueryCardResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON202      *CardQueryResult
	JSON200      *CardQueryResult
}

type CreateDashboardResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *Dashboard
}

type UpdateDashboardResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *Dashboard
}

type CreateSessionResponse struct {
	Body         []byte
	HTTPResponse *http.Response
	JSON200      *Session
}

func (c *ClientWithResponses) ListDatabasesWithResponse(ctx context.Context, params *ListDatabasesParams, reqEditors ...RequestEditorFn) (*ListDatabasesResponse, error) {
	rsp, err := c.ClientInterface.ListDatabases(ctx, params, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseListDatabasesResponse(rsp)
}

func (c *ClientWithResponses) GetDatabaseMetadataWithResponse(ctx context.Context, id int, reqEditors ...RequestEditorFn) (*GetDatabaseMetadataResponse, error) {
	rsp, err := c.ClientInterface.GetDatabaseMetadata(ctx, id, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseGetDatabaseMetadataResponse(rsp)
}

func (c *ClientWithResponses) GetTableMetadataWithResponse(ctx context.Context, id int, reqEditors ...RequestEditorFn) (*GetTableMetadataResponse, error) {
	rsp, err := c.ClientInterface.GetTableMetadata(ctx, id, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseGetTableMetadataResponse(rsp)
}

func (c *ClientWithResponses) ListCollectionsWithResponse(ctx context.Context, reqEditors ...RequestEditorFn) (*ListCollectionsResponse, error) {
	rsp, err := c.ClientInterface.ListCollections(ctx, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseListCollectionsResponse(rsp)
}

func (c *ClientWithResponses) CreateCardWithBodyWithResponse(ctx context.Context, contentType string, body io.Reader, reqEditors ...RequestEditorFn) (*CreateCardResponse, error) {
	rsp, err := c.ClientInterface.CreateCardWithBody(ctx, contentType, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseCreateCardResponse(rsp)
}

func (c *ClientWithResponses) CreateCardWithResponse(ctx context.Context, body CreateCardJSONRequestBody, reqEditors ...RequestEditorFn) (*CreateCardResponse, error) {
	rsp, err := c.ClientInterface.CreateCard(ctx, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseCreateCardResponse(rsp)
}

func (c *ClientWithResponses) QueryCardWithBodyWithResponse(ctx context.Context, id int, contentType string, body io.Reader, reqEditors ...RequestEditorFn) (*QueryCardResponse, error) {
	rsp, err := c.ClientInterface.QueryCardWithBody(ctx, id, contentType, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseQueryCardResponse(rsp)
}

func (c *ClientWithResponses) CreateDashboardWithBodyWithResponse(ctx context.Context, contentType string, body io.Reader, reqEditors ...RequestEditorFn) (*CreateDashboardResponse, error) {
	rsp, err := c.ClientInterface.CreateDashboardWithBody(ctx, contentType, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseCreateDashboardResponse(rsp)
}

func (c *ClientWithResponses) UpdateDashboardWithBodyWithResponse(ctx context.Context, id int, contentType string, body io.Reader, reqEditors ...RequestEditorFn) (*UpdateDashboardResponse, error) {
	rsp, err := c.ClientInterface.UpdateDashboardWithBody(ctx, id, contentType, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseUpdateDashboardResponse(rsp)
}

func (c *ClientWithResponses) CreateSessionWithResponse(ctx context.Context, body CreateSessionJSONRequestBody, reqEditors ...RequestEditorFn) (*CreateSessionResponse, error) {
	rsp, err := c.ClientInterface.CreateSession(ctx, body, reqEditors...)
	if err != nil {
		return nil, err
	}
	return ParseCreateSessionResponse(rsp)
}

// Returned when a response with the expected status code does not decode into its model.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response with status %d: %s", e.StatusCode, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Reads and closes the body of the response, and decodes it into `dest` when the status code is `expected` and the
// content is JSON.
func readResponse(rsp *http.Response, expected int, dest any) ([]byte, bool, error) {
	bodyBytes, err := io.ReadAll(rsp.Body)
	defer func() { _ = rsp.Body.Close() }()
	if err != nil {
		return nil, false, err
	}

	if rsp.StatusCode != expected || !strings.Contains(rsp.Header.Get("Content-Type"), "json") {
		return bodyBytes, false, nil
	}

	if err := json.Unmarshal(bodyBytes, dest); err != nil {
		return nil, false, &DecodeError{StatusCode: rsp.StatusCode, Err: err}
	}

	return bodyBytes, true, nil
}

// ParseListDatabasesResponse parses an HTTP response from a ListDatabasesWithResponse call.
func ParseListDatabasesResponse(rsp *http.Response) (*ListDatabasesResponse, error) {
	response := &ListDatabasesResponse{HTTPResponse: rsp}

	var dest DatabaseList
	body, ok, err := readResponse(rsp, http.StatusOK, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		response.JSON200 = &dest
	}

	return response, nil
}

// ParseGetDatabaseMetadataResponse parses an HTTP response from a GetDatabaseMetadataWithResponse call.
func ParseGetDatabaseMetadataResponse(rsp *http.Response) (*GetDatabaseMetadataResponse, error) {
	response := &GetDatabaseMetadataResponse{HTTPResponse: rsp}

	var dest DatabaseMetadata
	body, ok, err := readResponse(rsp, http.StatusOK, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		response.JSON200 = &dest
	}

	return response, nil
}

// ParseGetTableMetadataResponse parses an HTTP response from a GetTableMetadataWithResponse call.
func ParseGetTableMetadataResponse(rsp *http.Response) (*GetTableMetadataResponse, error) {
	response := &GetTableMetadataResponse{HTTPResponse: rsp}

	var dest TableMetadata
	body, ok, err := readResponse(rsp, http.StatusOK, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		response.JSON200 = &dest
	}

	return response, nil
}

// ParseListCollectionsResponse parses an HTTP response from a ListCollectionsWithResponse call.
func ParseListCollectionsResponse(rsp *http.Response) (*ListCollectionsResponse, error) {
	response := &ListCollectionsResponse{HTTPResponse: rsp}

	var dest []Collection
	body, ok, err := readResponse(rsp, http.StatusOK, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		response.JSON200 = &dest
	}

	return response, nil
}

// ParseCreateCardResponse parses an HTTP response from a CreateCardWithResponse call.
func ParseCreateCardResponse(rsp *http.Response) (*CreateCardResponse, error) {
	response := &CreateCardResponse{HTTPResponse: rsp}

	var dest Card
	body, ok, err := readResponse(rsp, http.StatusOK, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		response.JSON200 = &dest
	}

	return response, nil
}

// ParseQueryCardResponse parses an HTTP response from a QueryCardWithResponse call.
// Metabase answers card queries with a 202 status code, while some versions and proxies return 200.
func ParseQueryCardResponse(rsp *http.Response) (*QueryCardResponse, error) {
	response := &QueryCardResponse{HTTPResponse: rsp}

	expected := http.StatusAccepted
	if rsp.StatusCode == http.StatusOK {
		expected = http.StatusOK
	}

	var dest CardQueryResult
	body, ok, err := readResponse(rsp, expected, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		switch rsp.StatusCode {
		case http.StatusOK:
			response.JSON200 = &dest
		case http.StatusAccepted:
			response.JSON202 = &dest
		}
	}

	return response, nil
}

// ParseCreateDashboardResponse parses an HTTP response from a CreateDashboardWithResponse call.
func ParseCreateDashboardResponse(rsp *http.Response) (*CreateDashboardResponse, error) {
	response := &CreateDashboardResponse{HTTPResponse: rsp}

	var dest Dashboard
	body, ok, err := readResponse(rsp, http.StatusOK, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		response.JSON200 = &dest
	}

	return response, nil
}

// ParseUpdateDashboardResponse parses an HTTP response from a UpdateDashboardWithResponse call.
func ParseUpdateDashboardResponse(rsp *http.Response) (*UpdateDashboardResponse, error) {
	response := &UpdateDashboardResponse{HTTPResponse: rsp}

	var dest Dashboard
	body, ok, err := readResponse(rsp, http.StatusOK, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		response.JSON200 = &dest
	}

	return response, nil
}

// ParseCreateSessionResponse parses an HTTP response from a CreateSessionWithResponse call.
func ParseCreateSessionResponse(rsp *http.Response) (*CreateSessionResponse, error) {
	response := &CreateSessionResponse{HTTPResponse: rsp}

	var dest Session
	body, ok, err := readResponse(rsp, http.StatusOK, &dest)
	if err != nil {
		return nil, err
	}
	response.Body = body
	if ok {
		response.JSON200 = &dest
	}

	return response, nil
}
