package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/pkg/clients"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePanel imitates the subset of the 3x-ui API the gateway talks to.
type fakePanel struct {
	mu         sync.Mutex
	logins     int
	loginOK    bool
	session    string
	clients    map[string]clientPayload
	lastBody   []byte
	failStatus int
	expireOnce bool
}

func newFakePanel() *fakePanel {
	return &fakePanel{loginOK: true, clients: map[string]clientPayload{}}
}

func (f *fakePanel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path == loginPath {
		f.logins++
		_ = r.ParseForm()
		if !f.loginOK || r.PostForm.Get("username") != "admin" {
			writeJSON(w, apiResponse{Success: false, Msg: "wrong username or password"})
			return
		}
		f.session = fmt.Sprintf("s%d", f.logins)
		http.SetCookie(w, &http.Cookie{Name: "3x-ui", Value: f.session, Path: "/"})
		writeJSON(w, apiResponse{Success: true})
		return
	}

	if c, err := r.Cookie("3x-ui"); err != nil || c.Value != f.session || f.expireOnce {
		f.expireOnce = false
		http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
		return
	}
	if f.failStatus != 0 {
		w.WriteHeader(f.failStatus)
		return
	}

	body, _ := io.ReadAll(r.Body)
	f.lastBody = body

	switch {
	case r.URL.Path == addPath:
		c := decodeClient(body)
		f.clients[c.ID] = c
		writeJSON(w, apiResponse{Success: true, Msg: "Client(s) added"})
	case strings.HasPrefix(r.URL.Path, "/panel/api/inbounds/updateClient/"):
		id := strings.TrimPrefix(r.URL.Path, "/panel/api/inbounds/updateClient/")
		if _, ok := f.clients[id]; !ok {
			writeJSON(w, apiResponse{Success: false, Msg: "Client Not Found"})
			return
		}
		f.clients[id] = decodeClient(body)
		writeJSON(w, apiResponse{Success: true})
	case strings.Contains(r.URL.Path, "/delClient/"):
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if _, ok := f.clients[id]; !ok {
			writeJSON(w, apiResponse{Success: false, Msg: "Client Not Found"})
			return
		}
		delete(f.clients, id)
		writeJSON(w, apiResponse{Success: true})
	case strings.HasPrefix(r.URL.Path, "/panel/api/inbounds/get/"):
		list := make([]clientPayload, 0, len(f.clients))
		for _, c := range f.clients {
			list = append(list, c)
		}
		settings, _ := json.Marshal(settingsPayload{Clients: list})
		obj, _ := json.Marshal(inboundObj{ID: 1, Settings: string(settings)})
		writeJSON(w, apiResponse{Success: true, Obj: obj})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func decodeClient(body []byte) clientPayload {
	var req inboundRequest
	_ = json.Unmarshal(body, &req)
	var s settingsPayload
	_ = json.Unmarshal([]byte(req.Settings), &s)
	if len(s.Clients) == 0 {
		return clientPayload{}
	}
	return s.Clients[0]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func NewMock(t *testing.T) (*Gateway, *fakePanel) {
	fake := newFakePanel()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	p := &domain.Panel{ID: 1, BaseURL: srv.URL + "/", Username: "admin", Password: "secret", SubBaseURL: "https://sub.example.com/sub/"}
	return New(p, clients.NewHTTPClientWithTimeout(time.Second)), fake
}

func testSpec(id string) domain.ClientSpec {
	return domain.ClientSpec{
		UUID:       id,
		Email:      "u1-" + id[:8],
		SubID:      "sub-" + id[:8],
		Enabled:    true,
		ExpiresAt:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		TotalBytes: 10 << 30,
	}
}

func TestGateway_CreateClient(t *testing.T) {
	g, fake := NewMock(t)
	id := "2f1c6a8e-7b4d-4c1e-9a55-0d2b3c4e5f60"

	got, err := g.CreateClient(context.Background(), 1, testSpec(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	stored := fake.clients[id]
	assert.Equal(t, "u1-2f1c6a8e", stored.Email)
	assert.True(t, stored.Enable)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), stored.ExpiryTime)
	assert.Equal(t, int64(10<<30), stored.TotalGB)
	assert.Equal(t, 1, fake.logins)

	// second call reuses the session
	_, err = g.CreateClient(context.Background(), 1, testSpec("9e8d7c6b-5a49-4382-8172-635445362718"))
	require.NoError(t, err)
	assert.Equal(t, 1, fake.logins)
}

func TestGateway_Errors(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(f *fakePanel)
		wantKind domain.ExternalErrorKind
	}{
		{
			name:     "Login rejected",
			prepare:  func(f *fakePanel) { f.loginOK = false },
			wantKind: domain.ExternalAuthentication,
		},
		{
			name:     "Server error",
			prepare:  func(f *fakePanel) { f.failStatus = http.StatusBadGateway },
			wantKind: domain.ExternalConnection,
		},
		{
			name:     "Unexpected status",
			prepare:  func(f *fakePanel) { f.failStatus = http.StatusBadRequest },
			wantKind: domain.ExternalOperationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, fake := NewMock(t)
			tt.prepare(fake)

			_, err := g.CreateClient(context.Background(), 1, testSpec("2f1c6a8e-7b4d-4c1e-9a55-0d2b3c4e5f60"))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrExternalService)
			assert.True(t, domain.IsExternalKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestGateway_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	g := New(&domain.Panel{BaseURL: srv.URL, Username: "admin"}, clients.NewHTTPClientWithTimeout(time.Second))

	_, err := g.CreateClient(context.Background(), 1, testSpec("2f1c6a8e-7b4d-4c1e-9a55-0d2b3c4e5f60"))
	assert.True(t, domain.IsExternalKind(err, domain.ExternalConnection), "got %v", err)
}

func TestGateway_ReloginOnExpiredSession(t *testing.T) {
	g, fake := NewMock(t)
	id := "2f1c6a8e-7b4d-4c1e-9a55-0d2b3c4e5f60"
	_, err := g.CreateClient(context.Background(), 1, testSpec(id))
	require.NoError(t, err)

	fake.expireOnce = true
	found, err := g.DeleteClient(context.Background(), 1, id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, fake.logins)
}

func TestGateway_DeleteAndUpdateNotFound(t *testing.T) {
	g, _ := NewMock(t)

	found, err := g.DeleteClient(context.Background(), 1, "missing")
	assert.NoError(t, err)
	assert.False(t, found)

	ok, err := g.UpdateClient(context.Background(), 1, "missing", testSpec("2f1c6a8e-7b4d-4c1e-9a55-0d2b3c4e5f60"))
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGateway_UpdateClient(t *testing.T) {
	g, fake := NewMock(t)
	id := "2f1c6a8e-7b4d-4c1e-9a55-0d2b3c4e5f60"
	_, err := g.CreateClient(context.Background(), 1, testSpec(id))
	require.NoError(t, err)

	spec := testSpec("ffffffff-0000-0000-0000-000000000000")
	spec.Enabled = false
	ok, err := g.UpdateClient(context.Background(), 1, id, spec)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, fake.clients[id].Enable)
	assert.Equal(t, id, fake.clients[id].ID)
}

func TestGateway_ListClientsAndConfigURL(t *testing.T) {
	g, _ := NewMock(t)
	id := "2f1c6a8e-7b4d-4c1e-9a55-0d2b3c4e5f60"
	_, err := g.CreateClient(context.Background(), 1, testSpec(id))
	require.NoError(t, err)

	list, err := g.ListClients(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].UUID)
	assert.True(t, list[0].Enabled)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), list[0].ExpiresAt.UTC())

	assert.Equal(t, "https://sub.example.com/sub/sub-2f1c6a8e", g.GetConfigURL(context.Background(), 1, id))
	assert.Equal(t, "", g.GetConfigURL(context.Background(), 1, "unknown"))
}

func TestGateway_ConfigURLBestEffort(t *testing.T) {
	g, fake := NewMock(t)
	fake.failStatus = http.StatusInternalServerError

	assert.Equal(t, "", g.GetConfigURL(context.Background(), 1, "2f1c6a8e-7b4d-4c1e-9a55-0d2b3c4e5f60"))
}

func TestResolver_Gateway(t *testing.T) {
	r := NewResolver(time.Second)

	first, err := r.Gateway(&domain.Panel{ID: 1, BaseURL: "http://panel-a"})
	require.NoError(t, err)
	again, err := r.Gateway(&domain.Panel{ID: 1, BaseURL: "http://panel-a/"})
	require.NoError(t, err)
	assert.Same(t, first, again)

	moved, err := r.Gateway(&domain.Panel{ID: 1, BaseURL: "http://panel-b"})
	require.NoError(t, err)
	assert.NotSame(t, first, moved)

	_, err = r.Gateway(&domain.Panel{ID: 2})
	assert.Error(t, err)
}
