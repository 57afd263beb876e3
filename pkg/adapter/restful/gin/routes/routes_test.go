// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routes_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gogin "github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/logistica/roteirizacao/internal/test/memrepo"
	"github.com/logistica/roteirizacao/pkg/adapter/estimate/randest"
	"github.com/logistica/roteirizacao/pkg/adapter/notify/inproc"
	"github.com/logistica/roteirizacao/pkg/adapter/registry/httprg"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin/routes"
	"github.com/logistica/roteirizacao/pkg/core/model"
	"github.com/logistica/roteirizacao/pkg/core/usecase/healthuc"
	"github.com/logistica/roteirizacao/pkg/core/usecase/routesuc"
	"github.com/stretchr/testify/suite"
)

type RoutesResourceTestSuite struct {
	suite.Suite

	Store    *memrepo.Store
	Registry *httptest.Server
	Gin      *gin.Engine

	mu     sync.Mutex
	events []model.Event
}

func TestRoutesResourceTestSuite(t *testing.T) {
	gogin.SetMode(gogin.TestMode)
	suite.Run(t, new(RoutesResourceTestSuite))
}

func (rrts *RoutesResourceTestSuite) SetupTest() {
	drivers := map[string]string{
		"7": `{"id":7,"nome":"Ana","status":"ativo","cnh":"123"}`,
		"8": `{"id":8,"nome":"Bruno","status":"inativo"}`,
	}
	rrts.Registry = httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/motoristas/")
			if id == "9" {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			d, ok := drivers[id]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, d)
		},
	))
	rg, err := httprg.New(rrts.Registry.URL, httprg.WithTimeout(time.Second))
	rrts.Require().NoError(err, "cannot create registry client")

	rrts.Store = memrepo.New()
	rrts.events = nil
	bus := inproc.New("roteirizacao-service")
	for _, ch := range model.RouteChannels() {
		bus.Subscribe(ch, func(_ context.Context, ev model.Event) {
			rrts.mu.Lock()
			defer rrts.mu.Unlock()
			rrts.events = append(rrts.events, ev)
		})
	}
	routesUC, err := routesuc.New(
		rrts.Store, memrepo.Routes{}, rg,
		randest.New(rand.NewSource(42)), bus,
	)
	rrts.Require().NoError(err, "cannot create routes use case")
	healthUC := healthuc.New(
		rrts.Store, "roteirizacao-service", rg.URL(),
	)

	rrts.Gin = gin.New(gin.Cors(nil))
	routes.Register(rrts.Gin, routesUC, healthUC)
}

func (rrts *RoutesResourceTestSuite) TearDownTest() {
	rrts.Registry.Close()
}

// send serves a request and decodes its JSON response body into res
// (if it is not nil).
func (rrts *RoutesResourceTestSuite) send(
	method, path, body string, res any,
) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" || method != http.MethodGet {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rrts.Gin.ServeHTTP(w, req)
	if res != nil {
		rrts.Require().NoError(
			json.Unmarshal(w.Body.Bytes(), res),
			"body is not json: %s", w.Body.String(),
		)
	}
	return w
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

type createdBody struct {
	Mensagem string      `json:"mensagem"`
	Rota     model.Route `json:"rota"`
}

func (rrts *RoutesResourceTestSuite) channels() []string {
	rrts.mu.Lock()
	defer rrts.mu.Unlock()
	chs := make([]string, 0, len(rrts.events))
	for _, ev := range rrts.events {
		chs = append(chs, ev.Channel)
	}
	return chs
}

func (rrts *RoutesResourceTestSuite) TestRouteLifecycle() {
	created := &createdBody{}
	w := rrts.send(http.MethodPost, "/rota", `{
		"id_motorista": 7,
		"local_destino": "Rua das Flores, 100",
		"observacoes": "portão azul"
	}`, created)
	rrts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	r := created.Rota
	rrts.Equal(
		"Rota criada para Rua das Flores, 100 com motorista Ana",
		created.Mensagem,
	)
	rrts.Equal(int64(7), r.DriverID)
	rrts.Equal("Ana", r.DriverName)
	rrts.Equal(model.DefaultOrigin, r.Origin)
	rrts.Equal(model.StatusPending, r.Status)
	rrts.Equal(model.PriorityNormal, r.Priority)
	rrts.GreaterOrEqual(r.DistanceKm, randest.MinDistanceKm)
	rrts.Less(r.DistanceKm, randest.MaxDistanceKm)
	rrts.Nil(r.StartedAt)
	rrts.Require().NotNil(r.Notes)
	rrts.Equal("portão azul", *r.Notes)
	rrts.Equal(1, rrts.Store.Len())
	path := fmt.Sprintf("/rotas/%d/status", r.ID)

	started := map[string]any{}
	w = rrts.send(http.MethodPut, path, `{"status":"em_andamento"}`, &started)
	rrts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	rrts.Equal("em_andamento", started["status"])
	rrts.NotEmpty(started["data_inicio"])
	rrts.NotContains(started, "data_conclusao")

	completed := &model.Route{}
	w = rrts.send(http.MethodPut, path, `{"status":"concluida"}`, completed)
	rrts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	rrts.Equal(model.StatusCompleted, completed.Status)
	rrts.NotNil(completed.StartedAt)
	rrts.NotNil(completed.CompletedAt)

	eb := &errorBody{}
	w = rrts.send(http.MethodPut, path, `{"status":"cancelada"}`, eb)
	rrts.Equal(http.StatusConflict, w.Code)
	rrts.Equal("Transição de status inválida: concluida -> cancelada", eb.Error)

	rrts.Equal([]string{
		model.ChannelRouteCreated,
		model.ChannelRouteStatusChanged,
		model.ChannelRouteStatusChanged,
	}, rrts.channels())
}

func (rrts *RoutesResourceTestSuite) TestCreateRejections() {
	for _, tc := range []struct {
		name   string
		body   string
		code   int
		msg    string
		fields bool
	}{
		{
			name: "empty body",
			code: http.StatusBadRequest,
			msg:  "id_motorista e local_destino são obrigatórios",
		},
		{
			name: "empty object",
			body: `{}`,
			code: http.StatusBadRequest,
			msg:  "id_motorista e local_destino são obrigatórios",
		},
		{
			name: "blank destination",
			body: `{"id_motorista": 7, "local_destino": "  "}`,
			code: http.StatusBadRequest,
			msg:  "id_motorista e local_destino são obrigatórios",
		},
		{
			name: "driver id is an empty string",
			body: `{"id_motorista": "", "local_destino": "X"}`,
			code: http.StatusBadRequest,
			msg:  "id_motorista e local_destino são obrigatórios",
		},
		{
			name: "driver id is a negative string",
			body: `{"id_motorista": "-3", "local_destino": "X"}`,
			code: http.StatusBadRequest,
			msg:  "id_motorista e local_destino são obrigatórios",
		},
		{
			name: "driver id is not numeric",
			body: `{"id_motorista": "sete", "local_destino": "X"}`,
			code: http.StatusBadRequest,
			msg:  "Dados da rota inválidos",
		},
		{
			name: "driver id is fractional",
			body: `{"id_motorista": 7.5, "local_destino": "X"}`,
			code: http.StatusBadRequest,
			msg:  "Dados da rota inválidos",
		},
		{
			name: "malformed json",
			body: `{"id_motorista": 7,`,
			code: http.StatusBadRequest,
			msg:  "Dados da rota inválidos",
		},
		{
			name: "too long destination",
			body: fmt.Sprintf(
				`{"id_motorista": 7, "local_destino": %q}`,
				strings.Repeat("x", 256),
			),
			code:   http.StatusBadRequest,
			msg:    "Dados da rota inválidos",
			fields: true,
		},
		{
			name: "unknown priority",
			body: `{"id_motorista": 7, "local_destino": "X", "prioridade": "maxima"}`,
			code: http.StatusBadRequest,
			msg:  "Prioridade inválida",
		},
		{
			name: "absent driver",
			body: `{"id_motorista": 999, "local_destino": "X"}`,
			code: http.StatusNotFound,
			msg:  "Motorista não encontrado",
		},
		{
			name: "inactive driver",
			body: `{"id_motorista": 8, "local_destino": "X"}`,
			code: http.StatusBadRequest,
			msg:  "Motorista não está ativo",
		},
		{
			name: "failing registry",
			body: `{"id_motorista": 9, "local_destino": "X"}`,
			code: http.StatusInternalServerError,
			msg:  "Erro ao comunicar com serviço de cadastro",
		},
	} {
		rrts.Run(tc.name, func() {
			eb := &errorBody{}
			w := rrts.send(http.MethodPost, "/rota", tc.body, eb)
			rrts.Equal(tc.code, w.Code, w.Body.String())
			rrts.Equal(tc.msg, eb.Error)
			if tc.fields {
				rrts.NotEmpty(eb.Fields)
			}
		})
	}
	rrts.Zero(rrts.Store.Len(), "no route may be persisted")
	rrts.Empty(rrts.channels(), "no event may be published")
}

func (rrts *RoutesResourceTestSuite) TestCreateWithExplicitFields() {
	created := &createdBody{}
	w := rrts.send(http.MethodPost, "/rota", `{
		"id_motorista": 7,
		"local_destino": "Av. Brasil, 500",
		"local_origem": "CD Norte",
		"prioridade": "urgente"
	}`, created)
	rrts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	rrts.Equal("CD Norte", created.Rota.Origin)
	rrts.Equal(model.PriorityUrgent, created.Rota.Priority)
	rrts.Nil(created.Rota.Notes)
}

func (rrts *RoutesResourceTestSuite) TestCreateWithStringDriverID() {
	created := &createdBody{}
	w := rrts.send(http.MethodPost, "/rota", `{
		"id_motorista": "7",
		"local_origem": "Depot Central",
		"local_destino": "Av. Paulista, 1000",
		"prioridade": "normal",
		"observacoes": ""
	}`, created)
	rrts.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	rrts.Equal(int64(7), created.Rota.DriverID)
	rrts.Equal("Ana", created.Rota.DriverName)
	rrts.Equal("Av. Paulista, 1000", created.Rota.Destination)
	rrts.Equal(1, rrts.Store.Len())
}

func (rrts *RoutesResourceTestSuite) putRoute(
	driverID int64, s model.RouteStatus, p model.Priority,
	createdAt time.Time,
) int64 {
	return rrts.Store.Put(model.Route{
		DriverID:         driverID,
		DriverName:       fmt.Sprintf("driver-%d", driverID),
		Origin:           model.DefaultOrigin,
		Destination:      "Rua X",
		DistanceKm:       10,
		EstimatedMinutes: 30,
		Status:           s,
		Priority:         p,
		CreatedAt:        createdAt,
	})
}

func (rrts *RoutesResourceTestSuite) TestUpdateStatusRejections() {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	id := rrts.putRoute(7, model.StatusPending, model.PriorityNormal, t0)
	path := fmt.Sprintf("/rotas/%d/status", id)
	for _, tc := range []struct {
		name string
		path string
		body string
		code int
		msg  string
	}{
		{
			name: "unknown status",
			path: path,
			body: `{"status":"foo"}`,
			code: http.StatusBadRequest,
			msg:  "Status inválido",
		},
		{
			name: "missing status",
			path: path,
			body: `{}`,
			code: http.StatusBadRequest,
			msg:  "Status inválido",
		},
		{
			name: "skipping em_andamento",
			path: path,
			body: `{"status":"concluida"}`,
			code: http.StatusConflict,
			msg:  "Transição de status inválida: pendente -> concluida",
		},
		{
			name: "same status",
			path: path,
			body: `{"status":"pendente"}`,
			code: http.StatusConflict,
			msg:  "Transição de status inválida: pendente -> pendente",
		},
		{
			name: "absent route",
			path: "/rotas/12345/status",
			body: `{"status":"em_andamento"}`,
			code: http.StatusNotFound,
			msg:  "Rota não encontrada",
		},
		{
			name: "non-numeric id",
			path: "/rotas/abc/status",
			body: `{"status":"em_andamento"}`,
			code: http.StatusBadRequest,
			msg:  "Dados da rota inválidos",
		},
		{
			name: "zero id",
			path: "/rotas/0/status",
			body: `{"status":"em_andamento"}`,
			code: http.StatusBadRequest,
			msg:  "Dados da rota inválidos",
		},
	} {
		rrts.Run(tc.name, func() {
			eb := &errorBody{}
			w := rrts.send(http.MethodPut, tc.path, tc.body, eb)
			rrts.Equal(tc.code, w.Code, w.Body.String())
			rrts.Equal(tc.msg, eb.Error)
		})
	}
	r, ok := rrts.Store.Route(id)
	rrts.Require().True(ok)
	rrts.Equal(model.StatusPending, r.Status, "route must be unchanged")
	rrts.Nil(r.StartedAt)
	rrts.Empty(rrts.channels())
}

func (rrts *RoutesResourceTestSuite) TestCancelInProgress() {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	id := rrts.putRoute(7, model.StatusPending, model.PriorityHigh, t0)
	path := fmt.Sprintf("/rotas/%d/status", id)
	w := rrts.send(http.MethodPut, path, `{"status":"em_andamento"}`, nil)
	rrts.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	cancelled := map[string]any{}
	w = rrts.send(http.MethodPut, path, `{"status":"cancelada"}`, &cancelled)
	rrts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	rrts.Equal("cancelada", cancelled["status"])
	rrts.NotEmpty(cancelled["data_inicio"], "start time is kept")
	rrts.NotContains(cancelled, "data_conclusao")
}

type listBody struct {
	Rotas []model.Route `json:"rotas"`
	Total int           `json:"total"`
}

func (rrts *RoutesResourceTestSuite) TestList() {
	empty := rrts.send(http.MethodGet, "/rotas", "", nil)
	rrts.Equal(http.StatusOK, empty.Code)
	rrts.JSONEq(`{"rotas":[],"total":0}`, empty.Body.String())

	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	oldest := rrts.putRoute(7, model.StatusPending, model.PriorityNormal, t0)
	middle := rrts.putRoute(
		8, model.StatusInProgress, model.PriorityUrgent,
		t0.Add(time.Hour),
	)
	newest := rrts.putRoute(
		7, model.StatusPending, model.PriorityUrgent,
		t0.Add(2*time.Hour),
	)
	for _, tc := range []struct {
		query string
		ids   []int64
	}{
		{"", []int64{newest, middle, oldest}},
		{"?status=", []int64{newest, middle, oldest}},
		{"?status=pendente", []int64{newest, oldest}},
		{"?prioridade=urgente", []int64{newest, middle}},
		{"?id_motorista=8", []int64{middle}},
		{"?status=pendente&prioridade=urgente&id_motorista=7", []int64{newest}},
		{"?status=concluida", nil},
	} {
		rrts.Run("filter "+tc.query, func() {
			lb := &listBody{}
			w := rrts.send(http.MethodGet, "/rotas"+tc.query, "", lb)
			rrts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
			rrts.Equal(len(tc.ids), lb.Total)
			ids := make([]int64, 0, len(lb.Rotas))
			for _, r := range lb.Rotas {
				ids = append(ids, r.ID)
			}
			if tc.ids == nil {
				tc.ids = []int64{}
			}
			rrts.Equal(tc.ids, ids)
		})
	}
	for _, tc := range []struct {
		query string
		msg   string
	}{
		{"?status=foo", "Status inválido"},
		{"?prioridade=maxima", "Prioridade inválida"},
		{"?id_motorista=abc", "Dados da rota inválidos"},
		{"?id_motorista=0", "Dados da rota inválidos"},
	} {
		rrts.Run("invalid "+tc.query, func() {
			eb := &errorBody{}
			w := rrts.send(http.MethodGet, "/rotas"+tc.query, "", eb)
			rrts.Equal(http.StatusBadRequest, w.Code, w.Body.String())
			rrts.Equal(tc.msg, eb.Error)
		})
	}
}

func (rrts *RoutesResourceTestSuite) TestDelete() {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	id := rrts.putRoute(7, model.StatusCompleted, model.PriorityLow, t0)
	path := fmt.Sprintf("/rotas/%d", id)

	res := &struct {
		Mensagem string      `json:"mensagem"`
		Rota     model.Route `json:"rota"`
	}{}
	w := rrts.send(http.MethodDelete, path, "", res)
	rrts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	rrts.Equal("Rota removida com sucesso", res.Mensagem)
	rrts.Equal(id, res.Rota.ID)
	rrts.Equal(model.StatusCompleted, res.Rota.Status)
	rrts.Zero(rrts.Store.Len())

	eb := &errorBody{}
	w = rrts.send(http.MethodDelete, path, "", eb)
	rrts.Equal(http.StatusNotFound, w.Code)
	rrts.Equal("Rota não encontrada", eb.Error)
	rrts.Equal([]string{model.ChannelRouteDeleted}, rrts.channels())
}

func (rrts *RoutesResourceTestSuite) TestStats() {
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	rrts.putRoute(7, model.StatusPending, model.PriorityNormal, t0)
	rrts.putRoute(7, model.StatusInProgress, model.PriorityNormal, t0)
	rrts.putRoute(8, model.StatusCompleted, model.PriorityNormal, t0)
	rrts.putRoute(8, model.StatusCompleted, model.PriorityNormal, t0)
	rrts.putRoute(8, model.StatusCancelled, model.PriorityNormal, t0)

	w := rrts.send(http.MethodGet, "/estatisticas/rotas", "", nil)
	rrts.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	rrts.JSONEq(`{
		"total": 5,
		"pendentes": 1,
		"em_andamento": 1,
		"concluidas": 2,
		"canceladas": 1,
		"distancia_total": 20,
		"tempo_medio": 30
	}`, w.Body.String())
}

func (rrts *RoutesResourceTestSuite) TestHealth() {
	h := &model.Health{}
	w := rrts.send(http.MethodGet, "/health", "", h)
	rrts.Require().Equal(http.StatusOK, w.Code)
	rrts.Equal("ok", h.Status)
	rrts.Equal("roteirizacao-service", h.Service)
	rrts.Equal(map[string]string{
		"database":         "connected",
		"cadastro_service": rrts.Registry.URL,
	}, h.Dependencies)

	rrts.Store.Down = errors.New("connection refused")
	w = rrts.send(http.MethodGet, "/health", "", h)
	rrts.Equal(http.StatusOK, w.Code, "health never fails")
	rrts.Equal("unreachable", h.Dependencies["database"])
}

func (rrts *RoutesResourceTestSuite) TestDatabaseFailure() {
	rrts.Store.Down = errors.New("connection refused")
	eb := &errorBody{}
	w := rrts.send(http.MethodGet, "/rotas", "", eb)
	rrts.Equal(http.StatusInternalServerError, w.Code)
	rrts.Equal("Erro interno do servidor", eb.Error)
}

func (rrts *RoutesResourceTestSuite) TestUnknownPath() {
	eb := &errorBody{}
	w := rrts.send(http.MethodGet, "/motoristas", "", eb)
	rrts.Equal(http.StatusNotFound, w.Code)
	rrts.Equal("Recurso não encontrado", eb.Error)

	w = rrts.send(http.MethodPatch, "/rotas/1/status", "{}", eb)
	rrts.Equal(http.StatusMethodNotAllowed, w.Code)
	rrts.Equal("Método não permitido", eb.Error)
}

func (rrts *RoutesResourceTestSuite) TestCors() {
	req := httptest.NewRequest(http.MethodOptions, "/rotas", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	rrts.Gin.ServeHTTP(w, req)
	rrts.Equal(http.StatusNoContent, w.Code, "preflight")
	rrts.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
	rrts.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)

	req = httptest.NewRequest(http.MethodGet, "/rotas", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	rrts.Gin.ServeHTTP(w, req)
	rrts.Equal(http.StatusOK, w.Code)
	rrts.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
}
