package clients

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHTTPClient_GetAndPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("X-Test", r.Header.Get("X-Test"))
			_, _ = w.Write([]byte("pong"))
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(body)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient()

	status, body, headers, err := client.Get(context.Background(), srv.URL, http.Header{"X-Test": []string{"1"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", string(body))
	assert.Equal(t, "1", headers.Get("X-Test"))

	status, body, _, err = client.Post(context.Background(), srv.URL, nil, []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, `{"a":1}`, string(body))
}

func TestHTTPClient_DoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
	}))
	defer srv.Close()

	status, _, headers, err := NewHTTPClient().Get(context.Background(), srv.URL+"/panel", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, status)
	assert.Equal(t, "/login", headers.Get("Location"))
}

func TestHTTPClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, _, _, err := NewHTTPClientWithTimeout(20*time.Millisecond).Get(context.Background(), srv.URL, nil)
	assert.Error(t, err)
}

func TestHTTPClient_SetClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockHTTPClientI(ctrl)
	client := NewHTTPClient()
	client.SetClient(mock)

	mock.EXPECT().Get(gomock.Any(), "http://panel", gomock.Nil()).Return(0, nil, nil, errors.New("dial tcp: refused"))

	_, _, _, err := client.Get(context.Background(), "http://panel", nil)
	assert.EqualError(t, err, "dial tcp: refused")
}
