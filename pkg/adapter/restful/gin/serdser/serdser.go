// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package serdser contains the serialization and deserialization
// helpers which are shared by the resource packages.
// Every failure is reported as a JSON object with an "error" key
// holding a human readable message. Binding failures may also carry
// a "fields" key, mapping each invalid field to its problems.
package serdser

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/logistica/roteirizacao/pkg/core/cerr"
	"github.com/logistica/roteirizacao/pkg/core/log"
	"github.com/logistica/roteirizacao/pkg/core/model"
)

// ErrInternal is the only message which is shown for unclassified
// errors. Their details are logged instead.
var ErrInternal = errors.New("Erro interno do servidor")

// Bind deserializes the c request into req using the b binding and
// validates it. If it fails, a 400 response is written and false is
// returned, so the caller can simply return.
// An empty request body leaves req untouched and is not an error.
func Bind(c *gin.Context, req any, b binding.Binding) bool {
	err := c.ShouldBindWith(req, b)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(req)
	}
	return check(c, err)
}

// BindURI is similar to Bind, but fills req from the path params.
func BindURI(c *gin.Context, req any) bool {
	return check(c, c.ShouldBindUri(req))
}

func check(c *gin.Context, err error) bool {
	switch err := err.(type) {
	case nil:
		return true
	case *validator.InvalidValidationError:
		SerErr(c, err)
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			AddErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  model.ErrInvalidRouteData.Error(),
			"fields": nameToErrs,
		})
	default:
		log.Debug(c, "cannot bind request", log.Err("err", err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": model.ErrInvalidRouteData.Error(),
		})
	}
	return false
}

func AddErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	(*errs)[name] = append((*errs)[name], msgs...)
}

// SerErr writes err as a JSON error response. The status code and
// message come from the first *cerr.Error in the err chain. Other
// errors are logged and reported as a generic 500.
func SerErr(c *gin.Context, err error) {
	var ce *cerr.Error
	if errors.As(err, &ce) {
		if ce.HTTPStatusCode >= http.StatusInternalServerError {
			log.Error(c, "request failed", log.Err("err", err))
		}
		c.JSON(ce.HTTPStatusCode, gin.H{
			"error": ce.Err.Error(),
		})
		return
	}
	log.Error(c, "unexpected error", log.Err("err", err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": ErrInternal.Error(),
	})
}

// BadRequest writes err as a 400 response. It is useful for the
// client visible errors which are detected by the resource itself.
func BadRequest(c *gin.Context, err error) {
	SerErr(c, cerr.BadRequest(err))
}
