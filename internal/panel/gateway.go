package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/pkg/clients"
	"go.uber.org/zap"
)

// Client is the remote panel contract. CreateClient is not idempotent; DeleteClient and
// UpdateClient report a missing client as false with a nil error.
type Client interface {
	CreateClient(ctx context.Context, inboundID int64, spec domain.ClientSpec) (string, error)
	UpdateClient(ctx context.Context, inboundID int64, remoteUUID string, spec domain.ClientSpec) (bool, error)
	DeleteClient(ctx context.Context, inboundID int64, remoteUUID string) (bool, error)
	GetConfigURL(ctx context.Context, inboundID int64, remoteUUID string) string
	ListClients(ctx context.Context, inboundID int64) ([]domain.RemoteClient, error)
}

const (
	loginPath   = "/login"
	addPath     = "/panel/api/inbounds/addClient"
	updatePath  = "/panel/api/inbounds/updateClient/%s"
	deletePath  = "/panel/api/inbounds/%d/delClient/%s"
	inboundPath = "/panel/api/inbounds/get/%d"
)

var errSessionExpired = errors.New("session expired")

type apiResponse struct {
	Success bool            `json:"success"`
	Msg     string          `json:"msg"`
	Obj     json.RawMessage `json:"obj"`
}

type clientPayload struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Enable     bool   `json:"enable"`
	ExpiryTime int64  `json:"expiryTime"`
	TotalGB    int64  `json:"totalGB"`
	LimitIP    int    `json:"limitIp"`
	SubID      string `json:"subId"`
	TgID       int64  `json:"tgId,omitempty"`
	Flow       string `json:"flow"`
}

type settingsPayload struct {
	Clients []clientPayload `json:"clients"`
}

type inboundRequest struct {
	ID       int64  `json:"id"`
	Settings string `json:"settings"`
}

type inboundObj struct {
	ID       int64  `json:"id"`
	Settings string `json:"settings"`
}

type Gateway struct {
	baseURL    string
	username   string
	password   string
	subBaseURL string
	client     clients.HTTPClientI

	mu     sync.Mutex
	cookie string
}

func New(p *domain.Panel, client clients.HTTPClientI) *Gateway {
	return &Gateway{
		baseURL:    trimURL(p.BaseURL),
		username:   p.Username,
		password:   p.Password,
		subBaseURL: trimURL(p.SubBaseURL),
		client:     client,
	}
}

func (g *Gateway) CreateClient(ctx context.Context, inboundID int64, spec domain.ClientSpec) (string, error) {
	body, err := inboundBody(inboundID, spec)
	if err != nil {
		return "", opFailed("addClient", err)
	}
	resp, err := g.call(ctx, "addClient", http.MethodPost, addPath, body)
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", opFailed("addClient", errors.New(resp.Msg))
	}
	zap.L().Info("panel client created", zap.Int64("inbound", inboundID), zap.String("uuid", spec.UUID))
	return spec.UUID, nil
}

func (g *Gateway) UpdateClient(ctx context.Context, inboundID int64, remoteUUID string, spec domain.ClientSpec) (bool, error) {
	spec.UUID = remoteUUID
	body, err := inboundBody(inboundID, spec)
	if err != nil {
		return false, opFailed("updateClient", err)
	}
	resp, err := g.call(ctx, "updateClient", http.MethodPost, fmt.Sprintf(updatePath, url.PathEscape(remoteUUID)), body)
	if err != nil {
		return false, err
	}
	if resp.Success {
		return true, nil
	}
	if isNotFound(resp.Msg) {
		return false, nil
	}
	return false, opFailed("updateClient", errors.New(resp.Msg))
}

func (g *Gateway) DeleteClient(ctx context.Context, inboundID int64, remoteUUID string) (bool, error) {
	resp, err := g.call(ctx, "delClient", http.MethodPost, fmt.Sprintf(deletePath, inboundID, url.PathEscape(remoteUUID)), nil)
	if err != nil {
		return false, err
	}
	if resp.Success {
		return true, nil
	}
	if isNotFound(resp.Msg) {
		return false, nil
	}
	return false, opFailed("delClient", errors.New(resp.Msg))
}

// GetConfigURL returns the subscription link of a client, or "" when it cannot be resolved.
func (g *Gateway) GetConfigURL(ctx context.Context, inboundID int64, remoteUUID string) string {
	if g.subBaseURL == "" {
		return ""
	}
	list, err := g.ListClients(ctx, inboundID)
	if err != nil {
		zap.L().Warn("can't resolve config url", zap.String("uuid", remoteUUID), zap.Error(err))
		return ""
	}
	for _, c := range list {
		if c.UUID == remoteUUID && c.SubID != "" {
			return g.subBaseURL + "/" + url.PathEscape(c.SubID)
		}
	}
	return ""
}

func (g *Gateway) ListClients(ctx context.Context, inboundID int64) ([]domain.RemoteClient, error) {
	resp, err := g.call(ctx, "getInbound", http.MethodGet, fmt.Sprintf(inboundPath, inboundID), nil)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, opFailed("getInbound", errors.New(resp.Msg))
	}

	var inbound inboundObj
	if err := json.Unmarshal(resp.Obj, &inbound); err != nil {
		return nil, opFailed("getInbound", fmt.Errorf("decode inbound: %w", err))
	}
	var settings settingsPayload
	if err := json.Unmarshal([]byte(inbound.Settings), &settings); err != nil {
		return nil, opFailed("getInbound", fmt.Errorf("decode settings: %w", err))
	}

	result := make([]domain.RemoteClient, 0, len(settings.Clients))
	for _, c := range settings.Clients {
		rc := domain.RemoteClient{UUID: c.ID, Email: c.Email, SubID: c.SubID, Enabled: c.Enable}
		if c.ExpiryTime > 0 {
			rc.ExpiresAt = time.UnixMilli(c.ExpiryTime)
		}
		result = append(result, rc)
	}
	return result, nil
}

// call performs one API request, logging in first when there is no session and
// once more when the panel rejects the session.
func (g *Gateway) call(ctx context.Context, op, method, path string, body []byte) (*apiResponse, error) {
	resp, err := g.try(ctx, op, method, path, body)
	if errors.Is(err, errSessionExpired) {
		g.resetSession()
		resp, err = g.try(ctx, op, method, path, body)
		if errors.Is(err, errSessionExpired) {
			return nil, &domain.ExternalServiceError{Kind: domain.ExternalAuthentication, Op: op, Err: err}
		}
	}
	return resp, err
}

func (g *Gateway) try(ctx context.Context, op, method, path string, body []byte) (*apiResponse, error) {
	cookie, err := g.session(ctx)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Cookie", cookie)
	if body != nil {
		headers.Set("Content-Type", "application/json")
	}

	var (
		status  int
		payload []byte
	)
	if method == http.MethodGet {
		status, payload, _, err = g.client.Get(ctx, g.baseURL+path, headers)
	} else {
		status, payload, _, err = g.client.Post(ctx, g.baseURL+path, headers, body)
	}
	if err != nil {
		return nil, &domain.ExternalServiceError{Kind: domain.ExternalConnection, Op: op, Err: err}
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden || (status >= 300 && status < 400):
		return nil, errSessionExpired
	case status >= 500:
		return nil, &domain.ExternalServiceError{Kind: domain.ExternalConnection, Op: op, Err: fmt.Errorf("status %d", status)}
	case status != http.StatusOK:
		return nil, opFailed(op, fmt.Errorf("status %d", status))
	}

	var resp apiResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, opFailed(op, fmt.Errorf("decode response: %w", err))
	}
	return &resp, nil
}

func (g *Gateway) session(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cookie != "" {
		return g.cookie, nil
	}

	form := url.Values{}
	form.Set("username", g.username)
	form.Set("password", g.password)
	headers := http.Header{}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	headers.Set("Accept", "application/json")

	status, payload, respHeaders, err := g.client.Post(ctx, g.baseURL+loginPath, headers, []byte(form.Encode()))
	if err != nil {
		return "", &domain.ExternalServiceError{Kind: domain.ExternalConnection, Op: "login", Err: err}
	}
	if status >= 500 {
		return "", &domain.ExternalServiceError{Kind: domain.ExternalConnection, Op: "login", Err: fmt.Errorf("status %d", status)}
	}
	if status != http.StatusOK {
		return "", &domain.ExternalServiceError{Kind: domain.ExternalAuthentication, Op: "login", Err: fmt.Errorf("status %d", status)}
	}

	var resp apiResponse
	if err := json.Unmarshal(payload, &resp); err != nil || !resp.Success {
		return "", &domain.ExternalServiceError{Kind: domain.ExternalAuthentication, Op: "login", Err: fmt.Errorf("login rejected: %s", resp.Msg)}
	}

	cookie := sessionCookie(respHeaders)
	if cookie == "" {
		return "", &domain.ExternalServiceError{Kind: domain.ExternalAuthentication, Op: "login", Err: errors.New("no session cookie")}
	}
	g.cookie = cookie
	return cookie, nil
}

func (g *Gateway) resetSession() {
	g.mu.Lock()
	g.cookie = ""
	g.mu.Unlock()
}

func sessionCookie(headers http.Header) string {
	parts := make([]string, 0, 1)
	for _, line := range headers.Values("Set-Cookie") {
		if pair, _, _ := strings.Cut(line, ";"); pair != "" {
			parts = append(parts, strings.TrimSpace(pair))
		}
	}
	return strings.Join(parts, "; ")
}

func inboundBody(inboundID int64, spec domain.ClientSpec) ([]byte, error) {
	c := clientPayload{
		ID:      spec.UUID,
		Email:   spec.Email,
		Enable:  spec.Enabled,
		TotalGB: spec.TotalBytes,
		LimitIP: spec.LimitIP,
		SubID:   spec.SubID,
		TgID:    spec.TelegramID,
	}
	if !spec.ExpiresAt.IsZero() {
		c.ExpiryTime = spec.ExpiresAt.UnixMilli()
	}
	settings, err := json.Marshal(settingsPayload{Clients: []clientPayload{c}})
	if err != nil {
		return nil, err
	}
	return json.Marshal(inboundRequest{ID: inboundID, Settings: string(settings)})
}

func trimURL(u string) string {
	return strings.TrimRight(u, "/")
}

func isNotFound(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no client")
}

func opFailed(op string, err error) error {
	return &domain.ExternalServiceError{Kind: domain.ExternalOperationFailed, Op: op, Err: err}
}
