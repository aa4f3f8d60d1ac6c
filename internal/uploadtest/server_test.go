package uploadtest

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, url, body string) (int, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestServerStoresUpload(t *testing.T) {
	srv := NewServer("/backend/upload/")
	defer srv.Close()

	status, body := post(t, srv.URL+"/backend/upload/req-1", `{"name":"hi.txt","data":"data:text/plain;base64,aGk="}`)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"url":"`+srv.URL+`/static/req-1/hi.txt"}`, body)

	obj, err := srv.Store().Get(context.Background(), "req-1/hi.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), obj.Data)
	assert.Equal(t, "text/plain", obj.ContentType)

	got := srv.Received()
	require.Len(t, got, 1)
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.Equal(t, "application/json", got[0].ContentType)
}

func TestServerRejectsBadEnvelope(t *testing.T) {
	srv := NewServer("backend")
	defer srv.Close()

	tests := []struct {
		name string
		body string
	}{
		{"not json", `nope`},
		{"missing name", `{"data":"data:text/plain;base64,aGk="}`},
		{"not a data url", `{"name":"a","data":"aGk="}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, srv.URL+"/backend/x", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, status)
			assert.Contains(t, body, `"detail"`)
		})
	}
	assert.Empty(t, srv.Store().Keys())
}

func TestServerReplyOverride(t *testing.T) {
	srv := NewServer("/api/vi/")
	defer srv.Close()
	srv.Reply(http.StatusInternalServerError, `{"detail":"boom"}`)

	status, body := post(t, srv.URL+"/api/vi/abc", `{"name":"a","data":"data:text/plain;base64,aGk="}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"detail":"boom"}`, body)
	assert.Len(t, srv.Received(), 1)
}

func TestServerEndpoint(t *testing.T) {
	srv := NewServer("/backend/")
	defer srv.Close()

	cfg := srv.Endpoint()
	assert.Equal(t, "http", cfg.Scheme)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.NotZero(t, cfg.Port)
	assert.Equal(t, "/backend/", cfg.PathPrefix)
}

func TestServerCORSPreflight(t *testing.T) {
	srv := NewServer("/backend/upload/")
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/backend/upload/abc", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
