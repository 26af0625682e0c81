package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flovouin/mbops/metabase"
)

type recordedRequest struct {
	mu     sync.Mutex
	method string
	path   string
	query  string
	body   string
}

type wantRequest struct {
	method string
	path   string
	query  string
	body   string
}

func newRESTCaller(t *testing.T, status int, response string) (*RESTCaller, *recordedRequest) {
	t.Helper()

	recorded := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		recorded.mu.Lock()
		defer recorded.mu.Unlock()

		recorded.method = r.Method
		recorded.path = r.URL.Path
		recorded.query = r.URL.RawQuery
		recorded.body = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)

	client, err := metabase.NewClientWithResponses(metabase.ApiEndpoint(server.URL))
	require.NoError(t, err)

	return NewRESTCaller(client), recorded
}

func TestRESTCallerRoutes(t *testing.T) {
	tCases := []struct {
		name      string
		operation string
		args      Args
		status    int
		response  string
		want      string
		wantReq   wantRequest
	}{
		{
			name:      "list_databases",
			operation: OperationListDatabases,
			status:    http.StatusOK,
			response:  `{"data":[{"id":2,"name":"production","engine":"mysql"}],"total":1}`,
			want:      `{"data":[{"id":2,"name":"production","engine":"mysql"}],"total":1}`,
			wantReq:   wantRequest{method: http.MethodGet, path: "/api/database"},
		},
		{
			name:      "list_databases_include",
			operation: OperationListDatabases,
			args:      Args{"include": "tables"},
			status:    http.StatusOK,
			response:  `[]`,
			want:      `[]`,
			wantReq:   wantRequest{method: http.MethodGet, path: "/api/database", query: "include=tables"},
		},
		{
			name:      "list_tables",
			operation: OperationListTables,
			args:      Args{"database_id": 2},
			status:    http.StatusOK,
			response:  `{"id":2,"name":"production","engine":"mysql","tables":[{"id":7,"name":"sellers","schema":"public","fields":[]}]}`,
			want:      `[{"id":7,"name":"sellers","schema":"public","fields":[]}]`,
			wantReq:   wantRequest{method: http.MethodGet, path: "/api/database/2/metadata"},
		},
		{
			name:      "get_table_fields",
			operation: OperationGetTableFields,
			args:      Args{"table_id": float64(7)},
			status:    http.StatusOK,
			response:  `{"id":7,"name":"sellers","fields":[{"name":"id","base_type":"type/Integer","semantic_type":"type/PK"}]}`,
			want:      `[{"name":"id","base_type":"type/Integer","semantic_type":"type/PK"}]`,
			wantReq:   wantRequest{method: http.MethodGet, path: "/api/table/7/query_metadata"},
		},
		{
			name:      "create_card",
			operation: OperationCreateCard,
			args:      Args{"name": "AP", "display": "table"},
			status:    http.StatusOK,
			response:  `{"id":300,"name":"AP","display":"table"}`,
			want:      `{"id":300,"name":"AP","display":"table"}`,
			wantReq:   wantRequest{method: http.MethodPost, path: "/api/card", body: `{"display":"table","name":"AP"}`},
		},
		{
			name:      "update_dashboard",
			operation: OperationUpdateDashboard,
			args:      Args{"dashboard_id": "12", "parameters": []any{}},
			status:    http.StatusOK,
			response:  `{"id":12,"name":"ROAS"}`,
			want:      `{"id":12,"name":"ROAS"}`,
			wantReq:   wantRequest{method: http.MethodPut, path: "/api/dashboard/12", body: `{"parameters":[]}`},
		},
		{
			name:      "run_card_query",
			operation: OperationRunCardQuery,
			args:      Args{"card_id": 262},
			status:    http.StatusAccepted,
			response:  `{"status":"completed","row_count":0,"data":{"rows":[]}}`,
			want:      `{"status":"completed","row_count":0,"data":{"rows":[]}}`,
			wantReq:   wantRequest{method: http.MethodPost, path: "/api/card/262/query"},
		},
	}

	for _, tCase := range tCases {
		tCase := tCase
		t.Run(tCase.name, func(t *testing.T) {
			t.Parallel()

			caller, recorded := newRESTCaller(t, tCase.status, tCase.response)

			got, err := caller.Call(context.Background(), tCase.operation, tCase.args)
			require.NoError(t, err)
			assert.JSONEq(t, tCase.want, string(got))

			recorded.mu.Lock()
			defer recorded.mu.Unlock()

			assert.Equal(t, tCase.wantReq.method, recorded.method)
			assert.Equal(t, tCase.wantReq.path, recorded.path)
			assert.Equal(t, tCase.wantReq.query, recorded.query)
			if len(tCase.wantReq.body) > 0 {
				assert.JSONEq(t, tCase.wantReq.body, recorded.body)
			} else {
				assert.Empty(t, recorded.body)
			}
		})
	}
}

func TestRESTCallerFailures(t *testing.T) {
	tCases := []struct {
		name      string
		operation string
		args      Args
		status    int
		response  string
		wantErr   error
	}{
		{
			name:      "non_success_status",
			operation: OperationCreateDashboard,
			args:      Args{"name": "ROAS"},
			status:    http.StatusBadRequest,
			response:  `{"errors":{"name":"value must be a non-blank string."}}`,
			wantErr:   ErrUnexpectedStatus,
		},
		{
			name:      "unknown_operation",
			operation: "delete_everything",
			status:    http.StatusOK,
			response:  `{}`,
			wantErr:   ErrUnknownOperation,
		},
		{
			name:      "missing_argument",
			operation: OperationGetTableFields,
			args:      Args{},
			status:    http.StatusOK,
			response:  `{}`,
			wantErr:   ErrInvalidArgument,
		},
		{
			name:      "missing_extracted_attribute",
			operation: OperationListTables,
			args:      Args{"database_id": 2},
			status:    http.StatusOK,
			response:  `{"id":2,"name":"production"}`,
			wantErr:   ErrUnexpectedShape,
		},
		{
			name:      "response_not_matching_model",
			operation: OperationListCollections,
			status:    http.StatusOK,
			response:  `{"message":"not a list"}`,
			wantErr:   ErrUnexpectedShape,
		},
		{
			name:      "database_list_without_data",
			operation: OperationListDatabases,
			status:    http.StatusOK,
			response:  `{"total":0}`,
			wantErr:   ErrUnexpectedShape,
		},
	}

	for _, tCase := range tCases {
		tCase := tCase
		t.Run(tCase.name, func(t *testing.T) {
			t.Parallel()

			caller, _ := newRESTCaller(t, tCase.status, tCase.response)

			got, err := caller.Call(context.Background(), tCase.operation, tCase.args)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, tCase.wantErr), err.Error())
		})
	}
}

func TestRESTCallerStatusErrorKeepsBody(t *testing.T) {
	caller, _ := newRESTCaller(t, http.StatusNotFound, `"Not found."`)

	_, err := caller.Call(context.Background(), OperationRunCardQuery, Args{"card_id": 999})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, OperationRunCardQuery, statusErr.Operation)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, `"Not found."`, statusErr.Body)
}

func TestRESTCallerRoute(t *testing.T) {
	caller := NewRESTCaller(nil)

	method, path, ok := caller.Route(OperationUpdateDashboard)
	assert.True(t, ok)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/dashboard/{dashboard_id}", path)

	_, _, ok = caller.Route("unknown")
	assert.False(t, ok)
}

func TestArgsInt(t *testing.T) {
	tCases := []struct {
		name    string
		value   any
		want    int
		wantErr bool
	}{
		{name: "int", value: 2, want: 2},
		{name: "int64", value: int64(3), want: 3},
		{name: "float", value: float64(4), want: 4},
		{name: "json_number", value: json.Number("5"), want: 5},
		{name: "string", value: "6", want: 6},
		{name: "fractional", value: 1.5, wantErr: true},
		{name: "not_a_number", value: "abc", wantErr: true},
		{name: "bool", value: true, wantErr: true},
		{name: "nil", value: nil, wantErr: true},
	}

	for _, tCase := range tCases {
		tCase := tCase
		t.Run(tCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := Args{"id": tCase.value}.Int("id")
			assert.Equal(t, tCase.wantErr, err != nil)
			assert.Equal(t, tCase.want, got)
		})
	}
}

func TestDecode(t *testing.T) {
	dbs, err := Decode[[]metabase.Database](OperationListDatabases, json.RawMessage(`[{"id":1,"name":"staging","engine":"postgres"}]`))
	require.NoError(t, err)
	assert.Equal(t, []metabase.Database{{Id: 1, Name: "staging", Engine: "postgres"}}, dbs)

	_, err = Decode[[]metabase.Database](OperationListDatabases, json.RawMessage(`{"id":1}`))
	assert.True(t, errors.Is(err, ErrUnexpectedShape))

	_, err = Decode[[]metabase.Database](OperationListDatabases, nil)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))
}

func TestArgsFrom(t *testing.T) {
	description := "Monthly"
	args, err := ArgsFrom(metabase.CreateCardBody{Name: "AP", Description: &description, Display: "table"})
	require.NoError(t, err)
	assert.Equal(t, "AP", args["name"])
	assert.Equal(t, "Monthly", args["description"])
	assert.NotContains(t, args, "collection_id")

	_, err = ArgsFrom([]int{1})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}
