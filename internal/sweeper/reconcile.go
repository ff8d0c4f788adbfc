package sweeper

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/vpnshop/internal/domain"
)

// Drift is what one inbound disagrees on. Nothing is repaired automatically.
type Drift struct {
	InboundID int64
	// MissingRemote are local ACTIVE accounts the panel does not know.
	MissingRemote []domain.ClientAccount
	// UnknownRemote are panel clients with no local account.
	UnknownRemote []domain.RemoteClient
}

func (d Drift) Empty() bool {
	return len(d.MissingRemote) == 0 && len(d.UnknownRemote) == 0
}

// Reconcile compares local ACTIVE accounts with the clients on every active panel and
// reports the differences. Inbounds that cannot be checked are skipped.
func (s *Service) Reconcile(ctx context.Context) []Drift {
	inbounds, err := s.catalog.ListInbounds(ctx)
	if err != nil {
		zap.L().Error("reconcile: failed to list inbounds", zap.Error(err))
		return nil
	}

	var (
		mu     sync.Mutex
		drifts []Drift
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.workers, 1))
	for i := range inbounds {
		inbound := inbounds[i]
		g.Go(func() error {
			d, err := s.reconcileInbound(gctx, &inbound)
			if err != nil {
				sweeps.WithLabelValues("reconcile", "failed").Inc()
				zap.L().Warn("reconcile: inbound skipped", zap.Int64("inbound_id", inbound.ID), zap.Error(err))
				return nil
			}
			sweeps.WithLabelValues("reconcile", "ok").Inc()
			if !d.Empty() {
				mu.Lock()
				drifts = append(drifts, d)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	s.report(ctx, drifts)
	return drifts
}

func (s *Service) reconcileInbound(ctx context.Context, inbound *domain.Inbound) (Drift, error) {
	d := Drift{InboundID: inbound.ID}

	p, err := s.catalog.GetPanel(ctx, inbound.PanelID)
	if err != nil {
		return d, err
	}
	if p == nil || !p.IsActive {
		return d, fmt.Errorf("panel %d is not active", inbound.PanelID)
	}
	gw, err := s.gateways.Gateway(p)
	if err != nil {
		return d, err
	}

	remote, err := gw.ListClients(ctx, inbound.RemoteID)
	if err != nil {
		return d, err
	}
	local, err := s.accounts.GetActiveByInbound(ctx, inbound.ID)
	if err != nil {
		return d, err
	}

	known := make(map[string]struct{}, len(local))
	for _, a := range local {
		known[a.RemoteUUID] = struct{}{}
	}
	present := make(map[string]struct{}, len(remote))
	for _, c := range remote {
		present[c.UUID] = struct{}{}
		if _, ok := known[c.UUID]; !ok {
			d.UnknownRemote = append(d.UnknownRemote, c)
		}
	}
	for _, a := range local {
		if _, ok := present[a.RemoteUUID]; !ok {
			d.MissingRemote = append(d.MissingRemote, a)
		}
	}
	return d, nil
}

func (s *Service) report(ctx context.Context, drifts []Drift) {
	var missing, unknown int
	for _, d := range drifts {
		missing += len(d.MissingRemote)
		unknown += len(d.UnknownRemote)
		for _, a := range d.MissingRemote {
			zap.L().Warn("active account missing on panel",
				zap.Int64("inbound_id", d.InboundID),
				zap.Int64("account_id", a.ID),
				zap.String("remote_uuid", a.RemoteUUID),
			)
		}
		for _, c := range d.UnknownRemote {
			zap.L().Warn("panel client without account",
				zap.Int64("inbound_id", d.InboundID),
				zap.String("remote_uuid", c.UUID),
				zap.String("email", c.Email),
			)
		}
	}
	drift.WithLabelValues("missing_remote").Set(float64(missing))
	drift.WithLabelValues("unknown_remote").Set(float64(unknown))

	if missing == 0 && unknown == 0 {
		zap.L().Info("reconcile: panels in sync")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Reconciliation found %d account(s) missing on panels and %d unknown panel client(s).", missing, unknown)
	for _, d := range drifts {
		fmt.Fprintf(&b, "\ninbound %d: missing %d, unknown %d", d.InboundID, len(d.MissingRemote), len(d.UnknownRemote))
	}
	s.notifier.NotifyAdmin(ctx, b.String())
}
