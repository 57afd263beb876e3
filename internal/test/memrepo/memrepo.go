// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package memrepo is an internal helper for the test packages which
// need a repo.Pool and the routes and schema repositories without a
// real PostgreSQL DBMS server. Transactions are emulated by taking a
// snapshot of the stored routes and restoring it if the transaction
// handler fails.
package memrepo

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/logistica/roteirizacao/pkg/core/cerr"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/repo"
)

// Store keeps routes in memory and implements repo.Pool.
type Store struct {
	mu     sync.Mutex
	nextID int64
	routes map[int64]model.Route

	// Down makes the Conn method fail with its error if it is set.
	Down error
	// FailWrites makes Create and UpdateStatus fail with its error.
	FailWrites error
}

// New creates an empty Store.
func New() *Store {
	return &Store{routes: make(map[int64]model.Route)}
}

// Conn passes a connection to handler unless s.Down is set.
func (s *Store) Conn(ctx context.Context, handler repo.ConnHandler) error {
	if s.Down != nil {
		return s.Down
	}
	return handler(ctx, &Conn{s: s})
}

// Len returns the number of stored routes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.routes)
}

// Route returns a copy of the id route and reports if it exists.
func (s *Store) Route(id int64) (model.Route, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	return r, ok
}

// Put stores r as it is (assigning an ID if it is zero) and returns
// its ID. It is useful for preparing the test fixtures.
func (s *Store) Put(r model.Route) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		s.nextID++
		r.ID = s.nextID
	} else if r.ID > s.nextID {
		s.nextID = r.ID
	}
	s.routes[r.ID] = r
	return r.ID
}

type Conn struct {
	s *Store
}

func (c *Conn) Exec(context.Context, string, ...any) (int64, error) {
	return 0, nil
}

func (c *Conn) Tx(ctx context.Context, handler repo.TxHandler) error {
	c.s.mu.Lock()
	snapshot := make(map[int64]model.Route, len(c.s.routes))
	for id, r := range c.s.routes {
		snapshot[id] = r
	}
	c.s.mu.Unlock()
	if err := handler(ctx, &Tx{s: c.s}); err != nil {
		c.s.mu.Lock()
		c.s.routes = snapshot
		c.s.mu.Unlock()
		return err
	}
	return nil
}

func (c *Conn) IsConn() {
}

type Tx struct {
	s *Store
}

func (tx *Tx) Exec(context.Context, string, ...any) (int64, error) {
	return 0, nil
}

func (tx *Tx) IsTx() {
}

// Routes implements repo.Routes for connections and transactions of
// a Store.
type Routes struct {
}

func (Routes) Conn(c repo.Conn) repo.RoutesConnQueryer {
	return queryer{s: c.(*Conn).s}
}

func (Routes) Tx(tx repo.Tx) repo.RoutesTxQueryer {
	return queryer{s: tx.(*Tx).s}
}

type queryer struct {
	s *Store
}

func (q queryer) Create(
	_ context.Context, r *model.Route,
) (*model.Route, error) {
	if q.s.FailWrites != nil {
		return nil, q.s.FailWrites
	}
	rr := *r
	rr.ID = 0
	rr.ID = q.s.Put(rr)
	return &rr, nil
}

func (q queryer) List(
	_ context.Context, f model.RouteFilter,
) ([]model.Route, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	var rs []model.Route
	for _, r := range q.s.routes {
		switch {
		case f.Status != nil && r.Status != *f.Status:
		case f.Priority != nil && r.Priority != *f.Priority:
		case f.DriverID != nil && r.DriverID != *f.DriverID:
		default:
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID > rs[j].ID
		}
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
	return rs, nil
}

func (q queryer) Delete(_ context.Context, id int64) (*model.Route, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	r, ok := q.s.routes[id]
	if !ok {
		return nil, cerr.NotFound(model.ErrRouteNotFound)
	}
	delete(q.s.routes, id)
	return &r, nil
}

func (q queryer) Stats(context.Context) (*model.RouteStats, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	st := &model.RouteStats{}
	var minutes int64
	for _, r := range q.s.routes {
		st.Total++
		minutes += int64(r.EstimatedMinutes)
		switch r.Status {
		case model.StatusPending:
			st.Pending++
		case model.StatusInProgress:
			st.InProgress++
		case model.StatusCompleted:
			st.Completed++
			st.TotalDistanceKm += r.DistanceKm
		case model.StatusCancelled:
			st.Cancelled++
		}
	}
	if st.Total > 0 {
		st.AvgMinutes = int64(math.Round(
			float64(minutes) / float64(st.Total),
		))
	}
	return st, nil
}

func (q queryer) GetForUpdate(
	_ context.Context, id int64,
) (*model.Route, error) {
	r, ok := q.s.Route(id)
	if !ok {
		return nil, cerr.NotFound(model.ErrRouteNotFound)
	}
	return &r, nil
}

func (q queryer) UpdateStatus(
	_ context.Context, r *model.Route,
) (*model.Route, error) {
	if q.s.FailWrites != nil {
		return nil, q.s.FailWrites
	}
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	stored, ok := q.s.routes[r.ID]
	if !ok {
		return nil, cerr.NotFound(model.ErrRouteNotFound)
	}
	stored.Status = r.Status
	stored.StartedAt = r.StartedAt
	stored.CompletedAt = r.CompletedAt
	q.s.routes[r.ID] = stored
	return &stored, nil
}

// Schema implements repo.Schema by recording the names of the called
// methods (and their role arguments) in Calls.
type Schema struct {
	mu    sync.Mutex
	Calls []string

	// Fail makes the methods which their recorded call starts with it
	// fail, e.g., "ChangePassword".
	Fail string
}

func (s *Schema) Tx(repo.Tx) repo.SchemaQueryer {
	return schemaQueryer{s: s}
}

type schemaQueryer struct {
	s *Schema
}

func (q schemaQueryer) call(name string) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	q.s.Calls = append(q.s.Calls, name)
	if q.s.Fail != "" && strings.HasPrefix(name, q.s.Fail) {
		return errors.New("memrepo: " + name + " failed")
	}
	return nil
}

func (q schemaQueryer) CreateRoutesTable(context.Context) error {
	return q.call("CreateRoutesTable")
}

func (q schemaQueryer) CreateRoleIfNotExists(
	_ context.Context, role repo.Role,
) error {
	return q.call("CreateRoleIfNotExists:" + string(role))
}

func (q schemaQueryer) ChangePassword(
	_ context.Context, role repo.Role, hashed string,
) error {
	return q.call("ChangePassword:" + string(role) + ":" + hashed)
}

func (q schemaQueryer) GrantRoutesPrivileges(
	_ context.Context, role repo.Role,
) error {
	return q.call("GrantRoutesPrivileges:" + string(role))
}
