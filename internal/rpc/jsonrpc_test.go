package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnvelope(t *testing.T) {
	tCases := []struct {
		name      string
		operation string
		args      Args
		want      string
	}{
		{
			name:      "no_args",
			operation: OperationListDatabases,
			args:      nil,
			want:      `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_databases","arguments":{}}}`,
		},
		{
			name:      "int_arg",
			operation: OperationListTables,
			args:      Args{"database_id": 2},
			want:      `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_tables","arguments":{"database_id":2}}}`,
		},
		{
			name:      "nested_args",
			operation: OperationUpdateDashboard,
			args: Args{
				"dashboard_id": 12,
				"parameters":   []any{map[string]any{"slug": "platform", "default": nil}},
			},
			want: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"update_dashboard","arguments":{"dashboard_id":12,"parameters":[{"default":null,"slug":"platform"}]}}}`,
		},
	}

	for _, tCase := range tCases {
		tCase := tCase
		t.Run(tCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildEnvelope(tCase.operation, tCase.args)
			require.NoError(t, err)
			assert.JSONEq(t, tCase.want, string(got))
		})
	}
}

func TestBuildEnvelopeIsDeterministic(t *testing.T) {
	first := Args{}
	first["b"] = "two"
	first["a"] = 1
	first["c"] = map[string]any{"z": true, "y": []any{1, 2}}

	second := Args{}
	second["c"] = map[string]any{"y": []any{1, 2}, "z": true}
	second["a"] = 1
	second["b"] = "two"

	want, err := BuildEnvelope(OperationCreateCard, first)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		got, err := BuildEnvelope(OperationCreateCard, second)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(got))
	}
}

func newMCPServer(t *testing.T, status int, response string, check func(envelope map[string]any)) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DefaultMCPPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var env map[string]any
		assert.NoError(t, json.Unmarshal(body, &env))
		if check != nil {
			check(env)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)

	return server
}

func TestJSONRPCCallerCall(t *testing.T) {
	tCases := []struct {
		name      string
		status    int
		response  string
		want      string
		wantErr   error
		wantCode  int
		checkBody string
	}{
		{
			name:     "text_content",
			status:   http.StatusOK,
			response: `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"[{\"id\":7,\"name\":\"sellers\"}]"}]}}`,
			want:     `[{"id":7,"name":"sellers"}]`,
		},
		{
			name:     "structured_content",
			status:   http.StatusOK,
			response: `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"2 tables"}],"structuredContent":{"count":2}}}`,
			want:     `{"count":2}`,
		},
		{
			name:     "non_json_text",
			status:   http.StatusOK,
			response: `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"done"}]}}`,
			want:     `[{"type":"text","text":"done"}]`,
		},
		{
			name:     "rpc_error",
			status:   http.StatusOK,
			response: `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"tool not found"}}`,
			wantErr:  ErrUnexpectedStatus,
			wantCode: -32601,
		},
		{
			name:     "tool_error",
			status:   http.StatusOK,
			response: `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"database 9 not found"}],"isError":true}}`,
			wantErr:  ErrUnexpectedStatus,
		},
		{
			name:     "http_error",
			status:   http.StatusInternalServerError,
			response: `boom`,
			wantErr:  ErrUnexpectedStatus,
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "not_jsonrpc",
			status:   http.StatusOK,
			response: `<html></html>`,
			wantErr:  ErrUnexpectedShape,
		},
	}

	for _, tCase := range tCases {
		tCase := tCase
		t.Run(tCase.name, func(t *testing.T) {
			t.Parallel()

			server := newMCPServer(t, tCase.status, tCase.response, func(env map[string]any) {
				assert.Equal(t, "2.0", env["jsonrpc"])
				assert.Equal(t, "tools/call", env["method"])
				params, _ := env["params"].(map[string]any)
				assert.Equal(t, OperationListTables, params["name"])
				assert.Equal(t, map[string]any{"database_id": float64(2)}, params["arguments"])
			})

			caller, err := NewJSONRPCCaller(server.URL, "")
			require.NoError(t, err)

			got, err := caller.Call(context.Background(), OperationListTables, Args{"database_id": 2})
			if tCase.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tCase.wantErr))
				assert.Nil(t, got)

				var statusErr *StatusError
				if tCase.wantCode != 0 && assert.True(t, errors.As(err, &statusErr)) {
					assert.Equal(t, tCase.wantCode, statusErr.StatusCode)
				}
				return
			}

			require.NoError(t, err)
			assert.JSONEq(t, tCase.want, string(got))
		})
	}
}

func TestJSONRPCCallerEditors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"[]"}]}}`)
	}))
	t.Cleanup(server.Close)

	caller, err := NewJSONRPCCaller(server.URL+"/", "/mcp", WithEditor(func(ctx context.Context, req *http.Request) error {
		req.Header.Set("X-Api-Key", "secret")
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/mcp", caller.Endpoint())

	got, err := caller.Call(context.Background(), OperationListDatabases, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(got))
}

func TestNewJSONRPCCallerWithoutURL(t *testing.T) {
	_, err := NewJSONRPCCaller("", DefaultMCPPath)
	assert.Error(t, err)
}
