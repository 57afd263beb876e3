// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routesrp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/logistica/roteirizacao/pkg/adapter/db/postgres"
	"github.com/logistica/roteirizacao/pkg/core/cerr"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gRoute struct {
	ID               int64      `gorm:"primaryKey;column:id"`
	DriverID         int64      `gorm:"column:id_motorista"`
	DriverName       string     `gorm:"column:nome_motorista"`
	Origin           string     `gorm:"column:local_origem"`
	Destination      string     `gorm:"column:local_destino"`
	DistanceKm       *float64   `gorm:"column:distancia_km"`
	EstimatedMinutes *int       `gorm:"column:tempo_estimado_min"`
	Status           string     `gorm:"column:status"`
	Priority         string     `gorm:"column:prioridade"`
	CreationTime     time.Time  `gorm:"column:data_criacao"`
	StartTime        *time.Time `gorm:"column:data_inicio"`
	CompletionTime   *time.Time `gorm:"column:data_conclusao"`
	Notes            *string    `gorm:"column:observacoes"`
}

func (gr *gRoute) TableName() string {
	return "rotas"
}

func fromModel(r *model.Route) *gRoute {
	dist, mins := r.DistanceKm, r.EstimatedMinutes
	return &gRoute{
		DriverID:         r.DriverID,
		DriverName:       r.DriverName,
		Origin:           r.Origin,
		Destination:      r.Destination,
		DistanceKm:       &dist,
		EstimatedMinutes: &mins,
		Status:           r.Status.String(),
		Priority:         r.Priority.String(),
		CreationTime:     r.CreatedAt,
		StartTime:        r.StartedAt,
		CompletionTime:   r.CompletedAt,
		Notes:            r.Notes,
	}
}

func (gr *gRoute) Model() (*model.Route, error) {
	s, err := model.ParseStatus(gr.Status)
	if err != nil {
		return nil, fmt.Errorf("route %d: %q: %w", gr.ID, gr.Status, err)
	}
	p, err := model.ParsePriority(gr.Priority)
	if err != nil {
		return nil, fmt.Errorf("route %d: %q: %w", gr.ID, gr.Priority, err)
	}
	r := &model.Route{
		ID:          gr.ID,
		DriverID:    gr.DriverID,
		DriverName:  gr.DriverName,
		Origin:      gr.Origin,
		Destination: gr.Destination,
		Status:      s,
		Priority:    p,
		CreatedAt:   gr.CreationTime,
		StartedAt:   gr.StartTime,
		CompletedAt: gr.CompletionTime,
		Notes:       gr.Notes,
	}
	if gr.DistanceKm != nil {
		r.DistanceKm = *gr.DistanceKm
	}
	if gr.EstimatedMinutes != nil {
		r.EstimatedMinutes = *gr.EstimatedMinutes
	}
	return r, nil
}

func notFound(id int64) error {
	return fmt.Errorf("id=%d: %w", id, cerr.NotFound(model.ErrRouteNotFound))
}

// Create inserts r into the rotas table and returns the stored route
// with its serial ID.
func Create[Q postgres.Queryer](
	ctx context.Context, q Q, r *model.Route,
) (*model.Route, error) {
	gr := fromModel(r)
	if err := q.GORM(ctx).Create(gr).Error; err != nil {
		return nil, postgres.TranslateError(err, "insert")
	}
	return gr.Model()
}

// List selects the routes which match all non-nil f fields, newest
// first (breaking ties by the larger ID).
func List[Q postgres.Queryer](
	ctx context.Context, q Q, f model.RouteFilter,
) ([]model.Route, error) {
	gdb := q.GORM(ctx).Model(&gRoute{})
	if f.Status != nil {
		gdb = gdb.Where("status = ?", f.Status.String())
	}
	if f.Priority != nil {
		gdb = gdb.Where("prioridade = ?", f.Priority.String())
	}
	if f.DriverID != nil {
		gdb = gdb.Where("id_motorista = ?", *f.DriverID)
	}
	var grs []gRoute
	err := gdb.Order("data_criacao DESC, id DESC").Find(&grs).Error
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	rs := make([]model.Route, 0, len(grs))
	for i := range grs {
		r, err := grs[i].Model()
		if err != nil {
			return nil, err
		}
		rs = append(rs, *r)
	}
	return rs, nil
}

// Delete removes the id route and returns its deleted row.
func Delete[Q postgres.Queryer](
	ctx context.Context, q Q, id int64,
) (*model.Route, error) {
	var grs []gRoute
	err := q.GORM(ctx).Clauses(clause.Returning{}).Where(
		"id = ?", id,
	).Delete(&grs).Error
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	if len(grs) != 1 {
		return nil, notFound(id)
	}
	return grs[0].Model()
}

type gStats struct {
	Total           int64   `gorm:"column:total"`
	Pending         int64   `gorm:"column:pendentes"`
	InProgress      int64   `gorm:"column:em_andamento"`
	Completed       int64   `gorm:"column:concluidas"`
	Cancelled       int64   `gorm:"column:canceladas"`
	TotalDistanceKm float64 `gorm:"column:distancia_total"`
	AvgMinutes      int64   `gorm:"column:tempo_medio"`
}

const statsQuery = `SELECT
    count(*) AS total,
    count(*) FILTER (WHERE status = 'pendente') AS pendentes,
    count(*) FILTER (WHERE status = 'em_andamento') AS em_andamento,
    count(*) FILTER (WHERE status = 'concluida') AS concluidas,
    count(*) FILTER (WHERE status = 'cancelada') AS canceladas,
    COALESCE(
        sum(distancia_km) FILTER (WHERE status = 'concluida'), 0
    )::float8 AS distancia_total,
    COALESCE(round(avg(tempo_estimado_min)), 0)::int8 AS tempo_medio
FROM rotas`

// Stats aggregates the rotas table in one statement, so all counters
// are taken from the same snapshot.
func Stats[Q postgres.Queryer](
	ctx context.Context, q Q,
) (*model.RouteStats, error) {
	var gs gStats
	if err := q.GORM(ctx).Raw(statsQuery).Scan(&gs).Error; err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	s := model.RouteStats(gs)
	return &s, nil
}

// GetForUpdate selects the id route and locks its row until the end
// of the tx transaction.
func GetForUpdate(
	ctx context.Context, tx *postgres.Tx, id int64,
) (*model.Route, error) {
	var gr gRoute
	err := tx.GORM(ctx).Clauses(
		clause.Locking{Strength: "UPDATE"},
	).Where("id = ?", id).Take(&gr).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, notFound(id)
	case err != nil:
		return nil, fmt.Errorf("select for update: %w", err)
	}
	return gr.Model()
}

// UpdateStatus stores the status and timestamps of r, leaving its
// other columns untouched, and returns the updated row.
func UpdateStatus(
	ctx context.Context, tx *postgres.Tx, r *model.Route,
) (*model.Route, error) {
	gr := gRoute{ID: r.ID}
	res := tx.GORM(ctx).Model(&gr).Clauses(clause.Returning{}).Updates(
		map[string]any{
			"status":         r.Status.String(),
			"data_inicio":    r.StartedAt,
			"data_conclusao": r.CompletedAt,
		},
	)
	if err := res.Error; err != nil {
		return nil, postgres.TranslateError(err, "update")
	}
	if res.RowsAffected != 1 {
		return nil, notFound(r.ID)
	}
	return gr.Model()
}
