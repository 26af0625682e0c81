package metabase

import "net/http"

// This file ensures the Metabase responses conform to the `MetabaseResponse` interface, for convenience when routing
// operations to the API generically.
type MetabaseResponse interface {
	StatusCode() int
	BodyString() string
	BodyBytes() []byte
}

// Returns the status code of a possibly `nil` response.
func statusCode(rsp *http.Response) int {
	if rsp != nil {
		return rsp.StatusCode
	}
	return 0
}

// StatusCode returns HTTPResponse.StatusCode
func (r *ListDatabasesResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *ListDatabasesResponse) BodyString() string {
	return string(r.Body)
}

func (r *ListDatabasesResponse) BodyBytes() []byte {
	return r.Body
}

// StatusCode returns HTTPResponse.StatusCode
func (r *GetDatabaseMetadataResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *GetDatabaseMetadataResponse) BodyString() string {
	return string(r.Body)
}

func (r *GetDatabaseMetadataResponse) BodyBytes() []byte {
	return r.Body
}

// StatusCode returns HTTPResponse.StatusCode
func (r *GetTableMetadataResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *GetTableMetadataResponse) BodyString() string {
	return string(r.Body)
}

func (r *GetTableMetadataResponse) BodyBytes() []byte {
	return r.Body
}

// StatusCode returns HTTPResponse.StatusCode
func (r *ListCollectionsResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *ListCollectionsResponse) BodyString() string {
	return string(r.Body)
}

func (r *ListCollectionsResponse) BodyBytes() []byte {
	return r.Body
}

// StatusCode returns HTTPResponse.StatusCode
func (r *CreateCardResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *CreateCardResponse) BodyString() string {
	return string(r.Body)
}

func (r *CreateCardResponse) BodyBytes() []byte {
	return r.Body
}

// StatusCode returns HTTPResponse.StatusCode
func (r *QueryCardResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *QueryCardResponse) BodyString() string {
	return string(r.Body)
}

func (r *QueryCardResponse) BodyBytes() []byte {
	return r.Body
}

// StatusCode returns HTTPResponse.StatusCode
func (r *CreateDashboardResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *CreateDashboardResponse) BodyString() string {
	return string(r.Body)
}

func (r *CreateDashboardResponse) BodyBytes() []byte {
	return r.Body
}

// StatusCode returns HTTPResponse.StatusCode
func (r *UpdateDashboardResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *UpdateDashboardResponse) BodyString() string {
	return string(r.Body)
}

func (r *UpdateDashboardResponse) BodyBytes() []byte {
	return r.Body
}

// StatusCode returns HTTPResponse.StatusCode
func (r *CreateSessionResponse) StatusCode() int {
	return statusCode(r.HTTPResponse)
}

func (r *CreateSessionResponse) BodyString() string {
	return string(r.Body)
}

func (r *CreateSessionResponse) BodyBytes() []byte {
	return r.Body
}
