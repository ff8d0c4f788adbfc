package catalogrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/vpnshop/internal/domain"
	"github.com/GlebRadaev/vpnshop/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Repository reads the storefront catalog: plans, panels and their inbounds.
type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPlan(ctx context.Context, id int64) (*domain.Plan, error) {
	var p domain.Plan
	err := r.db.QueryRow(ctx, "SELECT id, name, duration_days, traffic_gb, price, is_active FROM plans WHERE id = $1", id).
		Scan(&p.ID, &p.Name, &p.DurationDays, &p.TrafficGB, &p.Price, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find plan", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetInbound(ctx context.Context, id int64) (*domain.Inbound, error) {
	var in domain.Inbound
	err := r.db.QueryRow(ctx, "SELECT id, panel_id, remote_id, protocol, tag FROM inbounds WHERE id = $1", id).
		Scan(&in.ID, &in.PanelID, &in.RemoteID, &in.Protocol, &in.Tag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find inbound", zap.Error(err))
		return nil, err
	}
	return &in, nil
}

func (r *Repository) GetPanel(ctx context.Context, id int64) (*domain.Panel, error) {
	query := `
        SELECT id, name, base_url, username, password, sub_base_url, is_active
        FROM panels
        WHERE id = $1
    `
	var p domain.Panel
	err := r.db.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.BaseURL, &p.Username, &p.Password, &p.SubBaseURL, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find panel", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// ListInbounds returns every inbound that lives on an active panel.
func (r *Repository) ListInbounds(ctx context.Context) ([]domain.Inbound, error) {
	query := `
        SELECT i.id, i.panel_id, i.remote_id, i.protocol, i.tag
        FROM inbounds i
        JOIN panels p ON p.id = i.panel_id
        WHERE p.is_active
        ORDER BY i.id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't list inbounds", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var inbounds []domain.Inbound
	for rows.Next() {
		var in domain.Inbound
		if err := rows.Scan(&in.ID, &in.PanelID, &in.RemoteID, &in.Protocol, &in.Tag); err != nil {
			zap.L().Error("can't scan inbound row", zap.Error(err))
			return nil, err
		}
		inbounds = append(inbounds, in)
	}
	return inbounds, rows.Err()
}
