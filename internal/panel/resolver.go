package panel

import (
	"errors"
	"sync"
	"time"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/pkg/clients"
)

// Resolver hands out one gateway per panel so each keeps its own login session.
type Resolver struct {
	timeout  time.Duration
	mu       sync.Mutex
	gateways map[int64]*Gateway
}

func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		timeout:  timeout,
		gateways: make(map[int64]*Gateway),
	}
}

func (r *Resolver) Gateway(p *domain.Panel) (Client, error) {
	if p == nil || p.BaseURL == "" {
		return nil, errors.New("panel has no base url")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gateways[p.ID]; ok && g.baseURL == trimURL(p.BaseURL) {
		return g, nil
	}
	g := New(p, clients.NewHTTPClientWithTimeout(r.timeout))
	r.gateways[p.ID] = g
	return g, nil
}
