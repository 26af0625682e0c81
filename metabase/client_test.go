package metabase

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

func TestRequestBuilders(t *testing.T) {
	const server = "https://metabase.example.com/api/"

	tCases := []struct {
		name       string
		build      func() (*http.Request, error)
		wantMethod string
		wantURL    string
	}{
		{
			name: "list_databases",
			build: func() (*http.Request, error) {
				return NewListDatabasesRequest(server, &ListDatabasesParams{})
			},
			wantMethod: http.MethodGet,
			wantURL:    "https://metabase.example.com/api/database",
		},
		{
			name: "list_databases_include",
			build: func() (*http.Request, error) {
				include := "tables"
				return NewListDatabasesRequest(server, &ListDatabasesParams{Include: &include})
			},
			wantMethod: http.MethodGet,
			wantURL:    "https://metabase.example.com/api/database?include=tables",
		},
		{
			name: "database_metadata",
			build: func() (*http.Request, error) {
				return NewGetDatabaseMetadataRequest(server, 2)
			},
			wantMethod: http.MethodGet,
			wantURL:    "https://metabase.example.com/api/database/2/metadata",
		},
		{
			name: "table_metadata",
			build: func() (*http.Request, error) {
				return NewGetTableMetadataRequest(server, 17)
			},
			wantMethod: http.MethodGet,
			wantURL:    "https://metabase.example.com/api/table/17/query_metadata",
		},
		{
			name: "query_card",
			build: func() (*http.Request, error) {
				return NewQueryCardRequestWithBody(server, 262, "application/json", nil)
			},
			wantMethod: http.MethodPost,
			wantURL:    "https://metabase.example.com/api/card/262/query",
		},
		{
			name: "update_dashboard",
			build: func() (*http.Request, error) {
				return NewUpdateDashboardRequestWithBody(server, 12, "application/json", nil)
			},
			wantMethod: http.MethodPut,
			wantURL:    "https://metabase.example.com/api/dashboard/12",
		},
	}

	for _, tCase := range tCases {
		tCase := tCase
		t.Run(tCase.name, func(t *testing.T) {
			t.Parallel()

			req, err := tCase.build()
			require.NoError(t, err)
			assert.Equal(t, tCase.wantMethod, req.Method)
			assert.Equal(t, tCase.wantURL, req.URL.String())
		})
	}
}

func TestDatabaseListUnmarshal(t *testing.T) {
	tCases := []struct {
		name    string
		body    string
		want    []Database
		wantErr bool
	}{
		{
			name: "wrapped",
			body: `{"data":[{"id":1,"name":"staging","engine":"postgres"}],"total":1}`,
			want: []Database{{Id: 1, Name: "staging", Engine: "postgres"}},
		},
		{
			name: "bare_array",
			body: `[{"id":2,"name":"production","engine":"mysql"}]`,
			want: []Database{{Id: 2, Name: "production", Engine: "mysql"}},
		},
		{
			name:    "object_without_data",
			body:    `{"message":"not what you expect"}`,
			wantErr: true,
		},
		{
			name:    "null_data",
			body:    `{"data":null,"total":0}`,
			wantErr: true,
		},
	}

	for _, tCase := range tCases {
		tCase := tCase
		t.Run(tCase.name, func(t *testing.T) {
			t.Parallel()

			var list DatabaseList
			err := json.Unmarshal([]byte(tCase.body), &list)
			if tCase.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tCase.want, list.Data)
		})
	}
}

func TestCollectionId(t *testing.T) {
	var collections []Collection
	err := json.Unmarshal([]byte(`[{"id":"root","name":"Our analytics"},{"id":47,"name":"ROAS"}]`), &collections)
	require.NoError(t, err)
	require.Len(t, collections, 2)

	rootId, err := collections[0].Id.AsCollectionId0()
	require.NoError(t, err)
	assert.Equal(t, "root", rootId)
	_, err = collections[0].Id.AsCollectionId1()
	assert.Error(t, err)

	id, err := collections[1].Id.AsCollectionId1()
	require.NoError(t, err)
	assert.Equal(t, 47, id)

	out, err := json.Marshal(collections[1].Id)
	require.NoError(t, err)
	assert.Equal(t, "47", string(out))
}

func newJSONServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)

	return server
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestMakeAuthenticatedClientWithApiKey(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get(ApiKeyHeader))
		assert.Equal(t, "/api/database", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data":[{"id":2,"name":"production","engine":"mysql"}]}`)
	})

	client, err := MakeAuthenticatedClientWithApiKey(context.Background(), ApiEndpoint(server.URL), "secret")
	require.NoError(t, err)

	resp, err := client.ListDatabasesWithResponse(context.Background(), &ListDatabasesParams{})
	require.NoError(t, err)
	require.NotNil(t, resp.JSON200)
	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, "production", resp.JSON200.Data[0].Name)
}

func TestMakeAuthenticatedClientWithBearerToken(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `[]`)
	})

	client, err := MakeAuthenticatedClientWithBearerToken(context.Background(), ApiEndpoint(server.URL), "token")
	require.NoError(t, err)

	resp, err := client.ListCollectionsWithResponse(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.JSON200)
	assert.Empty(t, *resp.JSON200)
}

func TestMakeAuthenticatedClientWithUsernameAndPassword(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/session":
			var body CreateSessionBody
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, CreateSessionBody{Username: "ops@example.com", Password: "pw"}, body)
			writeJSON(w, http.StatusOK, `{"id":"session-id"}`)
		case "/api/collection":
			assert.Equal(t, "session-id", r.Header.Get(SessionHeader))
			writeJSON(w, http.StatusOK, `[{"id":"root","name":"Our analytics"}]`)
		default:
			writeJSON(w, http.StatusNotFound, `{}`)
		}
	})

	client, err := MakeAuthenticatedClientWithUsernameAndPassword(context.Background(), ApiEndpoint(server.URL), "ops@example.com", "pw")
	require.NoError(t, err)

	resp, err := client.ListCollectionsWithResponse(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp.JSON200)
	assert.Len(t, *resp.JSON200, 1)
}

func TestMakeAuthenticatedClientWithUsernameAndPasswordRejected(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"errors":{"password":"did not match stored password"}}`)
	})

	_, err := MakeAuthenticatedClientWithUsernameAndPassword(context.Background(), ApiEndpoint(server.URL), "ops@example.com", "wrong")
	assert.Error(t, err)
}

func TestQueryCardAccepted(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusAccepted, `{"status":"completed","row_count":1,"data":{"rows":[[1.5]],"cols":[{"name":"overall_roas"}]}}`)
	})

	client, err := NewClientWithResponses(ApiEndpoint(server.URL))
	require.NoError(t, err)

	resp, err := client.QueryCardWithBodyWithResponse(context.Background(), 262, "application/json", nil)
	require.NoError(t, err)
	assert.Nil(t, resp.JSON200)
	require.NotNil(t, resp.JSON202)
	assert.Equal(t, QueryStatusCompleted, resp.JSON202.Status)
	assert.Len(t, resp.JSON202.Data.Rows, 1)
}

func TestNonSuccessKeepsBody(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, `"You don't have permissions to do that."`)
	})

	client, err := NewClientWithResponses(ApiEndpoint(server.URL))
	require.NoError(t, err)

	resp, err := client.GetTableMetadataWithResponse(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, resp.JSON200)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	assert.Contains(t, resp.BodyString(), "permissions")
}

func TestApiEndpoint(t *testing.T) {
	tCases := []struct {
		in       string
		wantApi  string
		wantSite string
	}{
		{in: "https://mb.example.com", wantApi: "https://mb.example.com/api", wantSite: "https://mb.example.com"},
		{in: "https://mb.example.com/", wantApi: "https://mb.example.com/api", wantSite: "https://mb.example.com"},
		{in: "https://mb.example.com/api", wantApi: "https://mb.example.com/api", wantSite: "https://mb.example.com"},
	}

	for _, tCase := range tCases {
		assert.Equal(t, tCase.wantApi, ApiEndpoint(tCase.in))
		assert.Equal(t, tCase.wantSite, SiteUrl(tCase.in))
	}
}

func TestParseResponseDecodeError(t *testing.T) {
	server := newJSONServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"not a list"}`)
	})

	client, err := NewClientWithResponses(ApiEndpoint(server.URL))
	require.NoError(t, err)

	_, err = client.ListCollectionsWithResponse(context.Background())
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, http.StatusOK, decodeErr.StatusCode)
}
