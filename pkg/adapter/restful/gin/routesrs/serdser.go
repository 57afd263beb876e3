// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package routesrs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/goccy/go-json"
	"github.com/logistica/roteirizacao/pkg/adapter/restful/gin/serdser"
	"github.com/logistica/roteirizacao/pkg/core/model"
)

type rawListReq struct {
	Status   string `form:"status"`
	Priority string `form:"prioridade"`
	DriverID *int64 `form:"id_motorista" binding:"omitempty,gt=0"`
}

// driverID is an id_motorista item which may be posted as a JSON
// number or as a numeric string (the value of an HTML select).
// An empty string is kept as zero, so it counts as a missing item.
type driverID int64

func (d *driverID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s = strings.TrimSpace(s); s == "" {
			*d = 0
			return nil
		}
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("id_motorista: %w", err)
	}
	*d = driverID(id)
	return nil
}

type rawCreateReq struct {
	DriverID    driverID `json:"id_motorista"`
	Destination string   `json:"local_destino" binding:"max=255"`
	Origin      string   `json:"local_origem" binding:"max=255"`
	Priority    string   `json:"prioridade"`
	Notes       *string  `json:"observacoes"`
}

type rawStatusReq struct {
	Status string `json:"status"`
}

type rawRouteID struct {
	ID int64 `uri:"id" binding:"required,gt=0"`
}

// DserListReq converts the optional query params into a filter.
// Empty params are ignored, so ?status= lists all routes.
func (rs *resource) DserListReq(c *gin.Context) (
	f model.RouteFilter, ok bool,
) {
	req := &rawListReq{}
	if ok = serdser.Bind(c, req, binding.Query); !ok {
		return
	}
	if req.Status != "" {
		s, err := model.ParseStatus(req.Status)
		if err != nil {
			serdser.BadRequest(c, err)
			return f, false
		}
		f.Status = &s
	}
	if req.Priority != "" {
		p, err := model.ParsePriority(req.Priority)
		if err != nil {
			serdser.BadRequest(c, err)
			return f, false
		}
		f.Priority = &p
	}
	f.DriverID = req.DriverID
	return f, true
}

// DserCreateReq deserializes the JSON body of a route creation.
// Missing id_motorista or local_destino are detected by the use case.
func (rs *resource) DserCreateReq(c *gin.Context) (
	nr model.NewRoute, ok bool,
) {
	req := &rawCreateReq{}
	if ok = serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	if req.Priority != "" {
		p, err := model.ParsePriority(req.Priority)
		if err != nil {
			serdser.BadRequest(c, err)
			return nr, false
		}
		nr.Priority = p
	}
	nr.DriverID = int64(req.DriverID)
	nr.Destination = req.Destination
	nr.Origin = req.Origin
	nr.Notes = req.Notes
	return nr, true
}

func (rs *resource) DserUpdateStatusReq(c *gin.Context) (
	id int64, s model.RouteStatus, ok bool,
) {
	if id, ok = rs.DserRouteID(c); !ok {
		return
	}
	req := &rawStatusReq{}
	if ok = serdser.Bind(c, req, binding.JSON); !ok {
		return
	}
	s, err := model.ParseStatus(req.Status)
	if err != nil {
		serdser.BadRequest(c, err)
		return id, s, false
	}
	return id, s, true
}

func (rs *resource) DserRouteID(c *gin.Context) (id int64, ok bool) {
	req := &rawRouteID{}
	if ok = serdser.BindURI(c, req); !ok {
		return
	}
	return req.ID, true
}
