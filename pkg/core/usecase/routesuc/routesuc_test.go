// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routesuc_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/logistica/roteirizacao/internal/test/memrepo"
	"github.com/logistica/roteirizacao/pkg/core/cerr"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/usecase/routesuc"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeRegistry struct {
	drivers map[int64]model.Driver
	err     error
	calls   int
}

func (fr *fakeRegistry) Driver(
	_ context.Context, id int64,
) (*model.Driver, error) {
	fr.calls++
	if fr.err != nil {
		return nil, fr.err
	}
	d, ok := fr.drivers[id]
	if !ok {
		return nil, fmt.Errorf("GET /motoristas/%d: %w", id, model.ErrDriverNotFound)
	}
	return &d, nil
}

type fixedEstimator model.Estimate

func (fe fixedEstimator) Estimate(string, string) model.Estimate {
	return model.Estimate(fe)
}

type published struct {
	channel string
	payload map[string]any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (rec *recorder) Publish(
	_ context.Context, channel string, payload map[string]any,
) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, published{channel, payload})
}

type RoutesUseCaseTestSuite struct {
	suite.Suite

	Ctx      context.Context
	Store    *memrepo.Store
	Registry *fakeRegistry
	Notifier *recorder
	Now      time.Time
	UC       *routesuc.UseCase
}

func TestRoutesUseCaseTestSuite(t *testing.T) {
	suite.Run(t, &RoutesUseCaseTestSuite{Ctx: context.Background()})
}

func (ruts *RoutesUseCaseTestSuite) SetupTest() {
	ruts.Store = memrepo.New()
	ruts.Registry = &fakeRegistry{drivers: map[int64]model.Driver{
		7: {ID: 7, Name: "Ana", Status: model.DriverActive},
		8: {ID: 8, Name: "Bruno", Status: model.DriverInactive},
	}}
	ruts.Notifier = &recorder{}
	ruts.Now = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	uc, err := routesuc.New(
		ruts.Store, memrepo.Routes{}, ruts.Registry,
		fixedEstimator{DistanceKm: 12.5, Minutes: 41},
		ruts.Notifier,
		routesuc.WithClock(func() time.Time { return ruts.Now }),
	)
	ruts.Require().NoError(err)
	ruts.UC = uc
}

func (ruts *RoutesUseCaseTestSuite) assertStatus(err error, code int) {
	ruts.Require().Error(err)
	ruts.Equal(code, cerr.StatusCode(err), "unexpected status: %v", err)
}

func (ruts *RoutesUseCaseTestSuite) TestCreateForActiveDriver() {
	r, msg, err := ruts.UC.Create(ruts.Ctx, model.NewRoute{
		DriverID:    7,
		Destination: "Av. Paulista, 1000",
	})
	ruts.Require().NoError(err)
	ruts.NotZero(r.ID)
	ruts.Equal(model.StatusPending, r.Status)
	ruts.Equal("Ana", r.DriverName)
	ruts.Equal(model.DefaultOrigin, r.Origin)
	ruts.Equal(model.PriorityNormal, r.Priority)
	ruts.Equal(12.5, r.DistanceKm)
	ruts.Equal(41, r.EstimatedMinutes)
	ruts.Equal(ruts.Now, r.CreatedAt)
	ruts.Nil(r.StartedAt)
	ruts.Nil(r.CompletedAt)
	ruts.Equal("Rota criada para Av. Paulista, 1000 com motorista Ana", msg)

	stored, ok := ruts.Store.Route(r.ID)
	ruts.Require().True(ok, "route is not persisted")
	ruts.Equal(*r, stored)

	ruts.Require().Len(ruts.Notifier.events, 1)
	ev := ruts.Notifier.events[0]
	ruts.Equal(model.ChannelRouteCreated, ev.channel)
	ruts.Equal(r.ID, ev.payload["id"])
	ruts.Equal(int64(7), ev.payload["motoristaId"])
	ruts.Equal("Ana", ev.payload["motoristaNome"])
	ruts.Equal("pendente", ev.payload["status"])
}

func (ruts *RoutesUseCaseTestSuite) TestCreateKeepsExplicitFields() {
	notes := "portaria"
	r, _, err := ruts.UC.Create(ruts.Ctx, model.NewRoute{
		DriverID:    7,
		Destination: "Rua Augusta, 10",
		Origin:      "CD Norte",
		Priority:    model.PriorityUrgent,
		Notes:       &notes,
	})
	ruts.Require().NoError(err)
	ruts.Equal("CD Norte", r.Origin)
	ruts.Equal(model.PriorityUrgent, r.Priority)
	ruts.Require().NotNil(r.Notes)
	ruts.Equal("portaria", *r.Notes)
}

func (ruts *RoutesUseCaseTestSuite) TestCreateRejections() {
	for _, tc := range []struct {
		name        string
		nr          model.NewRoute
		registryErr error
		code        int
		expected    error
	}{
		{
			name:     "missing driver id",
			nr:       model.NewRoute{Destination: "x"},
			code:     http.StatusBadRequest,
			expected: model.ErrMissingRouteFields,
		},
		{
			name:     "blank destination",
			nr:       model.NewRoute{DriverID: 7, Destination: "  "},
			code:     http.StatusBadRequest,
			expected: model.ErrMissingRouteFields,
		},
		{
			name:     "absent driver",
			nr:       model.NewRoute{DriverID: 999, Destination: "x"},
			code:     http.StatusNotFound,
			expected: model.ErrDriverNotFound,
		},
		{
			name:     "inactive driver",
			nr:       model.NewRoute{DriverID: 8, Destination: "x"},
			code:     http.StatusBadRequest,
			expected: model.ErrDriverUnavailable,
		},
		{
			name:        "unreachable registry",
			nr:          model.NewRoute{DriverID: 7, Destination: "x"},
			registryErr: context.DeadlineExceeded,
			code:        http.StatusInternalServerError,
			expected:    model.ErrRegistryUnavailable,
		},
		{
			name: "invalid priority",
			nr: model.NewRoute{
				DriverID: 7, Destination: "x", Priority: model.Priority(42),
			},
			code:     http.StatusBadRequest,
			expected: model.ErrUnknownPriority,
		},
	} {
		ruts.Run(tc.name, func() {
			ruts.Registry.err = tc.registryErr
			r, _, err := ruts.UC.Create(ruts.Ctx, tc.nr)
			ruts.Nil(r)
			ruts.assertStatus(err, tc.code)
			ruts.ErrorIs(err, tc.expected)
			ruts.Zero(ruts.Store.Len(), "no route may be written")
			ruts.Empty(ruts.Notifier.events, "no event may be published")
		})
	}
}

func (ruts *RoutesUseCaseTestSuite) TestCreateSkipsRegistryForInvalidInput() {
	_, _, err := ruts.UC.Create(ruts.Ctx, model.NewRoute{DriverID: 7})
	ruts.assertStatus(err, http.StatusBadRequest)
	ruts.Zero(ruts.Registry.calls)
}

func (ruts *RoutesUseCaseTestSuite) TestCreatePersistenceFailure() {
	ruts.Store.FailWrites = errors.New("disk full")
	_, _, err := ruts.UC.Create(ruts.Ctx, model.NewRoute{
		DriverID: 7, Destination: "x",
	})
	ruts.assertStatus(err, http.StatusInternalServerError)
	ruts.Empty(ruts.Notifier.events)
}

func (ruts *RoutesUseCaseTestSuite) createPending() *model.Route {
	r, _, err := ruts.UC.Create(ruts.Ctx, model.NewRoute{
		DriverID: 7, Destination: "Av. Paulista, 1000",
	})
	ruts.Require().NoError(err)
	ruts.Notifier.events = nil
	return r
}

func (ruts *RoutesUseCaseTestSuite) TestStartAndComplete() {
	created := ruts.createPending()

	ruts.Now = ruts.Now.Add(time.Hour)
	started := ruts.Now
	r, err := ruts.UC.UpdateStatus(ruts.Ctx, created.ID, model.StatusInProgress)
	ruts.Require().NoError(err)
	ruts.Equal(model.StatusInProgress, r.Status)
	ruts.Require().NotNil(r.StartedAt)
	ruts.Equal(started, *r.StartedAt)
	ruts.Nil(r.CompletedAt)

	ruts.Now = ruts.Now.Add(time.Hour)
	r, err = ruts.UC.UpdateStatus(ruts.Ctx, created.ID, model.StatusCompleted)
	ruts.Require().NoError(err)
	ruts.Equal(model.StatusCompleted, r.Status)
	ruts.Equal(started, *r.StartedAt, "start time must not be re-stamped")
	ruts.Require().NotNil(r.CompletedAt)
	ruts.Equal(ruts.Now, *r.CompletedAt)
	ruts.Equal(created.CreatedAt, r.CreatedAt)

	ruts.Require().Len(ruts.Notifier.events, 2)
	for i, s := range []string{"em_andamento", "concluida"} {
		ev := ruts.Notifier.events[i]
		ruts.Equal(model.ChannelRouteStatusChanged, ev.channel)
		ruts.Equal(created.ID, ev.payload["id"])
		ruts.Equal(int64(7), ev.payload["motoristaId"])
		ruts.Equal(s, ev.payload["novoStatus"])
	}
}

func (ruts *RoutesUseCaseTestSuite) TestCancelKeepsTimestamps() {
	created := ruts.createPending()
	r, err := ruts.UC.UpdateStatus(ruts.Ctx, created.ID, model.StatusCancelled)
	ruts.Require().NoError(err)
	ruts.Equal(model.StatusCancelled, r.Status)
	ruts.Nil(r.StartedAt)
	ruts.Nil(r.CompletedAt)
}

func (ruts *RoutesUseCaseTestSuite) TestUpdateStatusRejections() {
	created := ruts.createPending()
	for _, tc := range []struct {
		name string
		id   int64
		to   model.RouteStatus
		code int
	}{
		{"invalid status", created.ID, model.StatusInvalid, http.StatusBadRequest},
		{"unknown status", created.ID, model.RouteStatus(17), http.StatusBadRequest},
		{"missing route", 404, model.StatusInProgress, http.StatusNotFound},
		{"pending to completed", created.ID, model.StatusCompleted, http.StatusConflict},
		{"pending re-entry", created.ID, model.StatusPending, http.StatusConflict},
	} {
		ruts.Run(tc.name, func() {
			r, err := ruts.UC.UpdateStatus(ruts.Ctx, tc.id, tc.to)
			ruts.Nil(r)
			ruts.assertStatus(err, tc.code)
			stored, ok := ruts.Store.Route(created.ID)
			ruts.Require().True(ok)
			ruts.Equal(*created, stored, "stored route must not change")
			ruts.Empty(ruts.Notifier.events)
		})
	}
}

func (ruts *RoutesUseCaseTestSuite) TestTerminalStatusesAreFinal() {
	created := ruts.createPending()
	_, err := ruts.UC.UpdateStatus(ruts.Ctx, created.ID, model.StatusCancelled)
	ruts.Require().NoError(err)
	for _, to := range []model.RouteStatus{
		model.StatusPending, model.StatusInProgress,
		model.StatusCompleted, model.StatusCancelled,
	} {
		_, err = ruts.UC.UpdateStatus(ruts.Ctx, created.ID, to)
		ruts.assertStatus(err, http.StatusConflict)
		var te *model.TransitionError
		ruts.Require().ErrorAs(err, &te)
		ruts.Equal(model.StatusCancelled, te[0])
	}
}

func (ruts *RoutesUseCaseTestSuite) TestListMatchesStats() {
	ids := make([]int64, 0, 4)
	for i := 0; i < 4; i++ {
		ruts.Now = ruts.Now.Add(time.Minute)
		ids = append(ids, ruts.createPending().ID)
	}
	_, err := ruts.UC.UpdateStatus(ruts.Ctx, ids[0], model.StatusInProgress)
	ruts.Require().NoError(err)
	_, err = ruts.UC.UpdateStatus(ruts.Ctx, ids[1], model.StatusInProgress)
	ruts.Require().NoError(err)
	_, err = ruts.UC.UpdateStatus(ruts.Ctx, ids[1], model.StatusCompleted)
	ruts.Require().NoError(err)

	st, err := ruts.UC.Stats(ruts.Ctx)
	ruts.Require().NoError(err)
	ruts.Equal(int64(4), st.Total)
	ruts.Equal(int64(1), st.InProgress)
	ruts.Equal(int64(1), st.Completed)
	ruts.Equal(12.5, st.TotalDistanceKm)
	ruts.Equal(int64(41), st.AvgMinutes)

	for s, count := range map[model.RouteStatus]int64{
		model.StatusPending:    st.Pending,
		model.StatusInProgress: st.InProgress,
		model.StatusCompleted:  st.Completed,
	} {
		s := s
		rs, err := ruts.UC.List(ruts.Ctx, model.RouteFilter{Status: &s})
		ruts.Require().NoError(err)
		ruts.Len(rs, int(count), "status %s", s)
		for _, r := range rs {
			ruts.Equal(s, r.Status)
		}
	}

	all, err := ruts.UC.List(ruts.Ctx, model.RouteFilter{})
	ruts.Require().NoError(err)
	ruts.Require().Len(all, 4)
	ruts.Equal(ids[3], all[0].ID, "newest route comes first")
}

func (ruts *RoutesUseCaseTestSuite) TestListEmptyIsNotNil() {
	other := int64(8)
	rs, err := ruts.UC.List(ruts.Ctx, model.RouteFilter{DriverID: &other})
	ruts.Require().NoError(err)
	ruts.NotNil(rs)
	ruts.Empty(rs)
}

func (ruts *RoutesUseCaseTestSuite) TestDelete() {
	created := ruts.createPending()
	r, err := ruts.UC.Delete(ruts.Ctx, created.ID)
	ruts.Require().NoError(err)
	ruts.Equal(created.ID, r.ID)
	ruts.Zero(ruts.Store.Len())
	ruts.Require().Len(ruts.Notifier.events, 1)
	ev := ruts.Notifier.events[0]
	ruts.Equal(model.ChannelRouteDeleted, ev.channel)
	ruts.Equal(created.ID, ev.payload["id"])
	ruts.Equal("Av. Paulista, 1000", ev.payload["destino"])

	_, err = ruts.UC.Delete(ruts.Ctx, created.ID)
	ruts.assertStatus(err, http.StatusNotFound)
	ruts.ErrorIs(err, model.ErrRouteNotFound)
	ruts.Len(ruts.Notifier.events, 1)
}

func TestOptions(t *testing.T) {
	s := memrepo.New()
	_, err := routesuc.New(
		s, memrepo.Routes{}, &fakeRegistry{}, fixedEstimator{}, &recorder{},
		routesuc.WithDefaultOrigin(" "),
	)
	require.Error(t, err)
	_, err = routesuc.New(
		s, memrepo.Routes{}, &fakeRegistry{}, fixedEstimator{}, &recorder{},
		routesuc.WithClock(time.Now), routesuc.WithClock(time.Now),
	)
	require.Error(t, err)
	uc, err := routesuc.New(
		s, memrepo.Routes{},
		&fakeRegistry{drivers: map[int64]model.Driver{
			1: {ID: 1, Name: "Caio", Status: model.DriverActive},
		}},
		fixedEstimator{}, &recorder{},
		routesuc.WithDefaultOrigin("CD Sul"),
	)
	require.NoError(t, err)
	r, _, err := uc.Create(context.Background(), model.NewRoute{
		DriverID: 1, Destination: "x",
	})
	require.NoError(t, err)
	require.Equal(t, "CD Sul", r.Origin)
}
