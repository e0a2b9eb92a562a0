// Package http is the JSON transport of the platform: a chi router under
// /api/v1 with tenant resolution, bearer authentication and metrics.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap"
)

// PlatformErrorCodeHeader carries the error code of failed responses
const PlatformErrorCodeHeader = "X-Platform-Error-Code"

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

var statusCodePlatformError = map[string]int{
	perrors.EInternal:            http.StatusInternalServerError,
	perrors.EInvalid:             http.StatusBadRequest,
	perrors.EUnprocessableEntity: http.StatusUnprocessableEntity,
	perrors.EConflict:            http.StatusConflict,
	perrors.ENotFound:            http.StatusNotFound,
	perrors.EForbidden:           http.StatusForbidden,
	perrors.ETooManyRequests:     http.StatusTooManyRequests,
	perrors.EUnauthorized:        http.StatusUnauthorized,
	perrors.EMethodNotAllowed:    http.StatusMethodNotAllowed,
}

// ErrBody is the JSON body of every failed response
type ErrBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// API writes JSON responses and maps coded errors onto status codes
type API struct {
	log *zap.Logger
}

// NewAPI creates an API that logs internal errors to log
func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

// Respond writes v as JSON with status
func (a *API) Respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Debug("Failed to write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

// Err writes err as an ErrBody. Internal errors are logged and their
// message is replaced by a generic one.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	code := perrors.ErrorCode(err)
	status, ok := statusCodePlatformError[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	msg := perrors.ErrorMessage(err)
	if code == perrors.EInternal {
		a.log.Error("Internal error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("op", perrors.ErrorOp(err)),
			zap.Error(err))
		msg = "An internal error has occurred."
	}

	w.Header().Set(PlatformErrorCodeHeader, code)
	a.Respond(w, r, status, ErrBody{Code: code, Message: msg})
}

// DecodeJSON reads a single JSON object from the request body into v.
// Unknown fields and trailing data are rejected.
func (a *API) DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &perrors.Error{Code: perrors.EInvalid, Msg: "request body cannot be empty"}
		}
		return &perrors.Error{Code: perrors.EInvalid, Msg: fmt.Sprintf("malformed request body: %v", err)}
	}
	if dec.More() {
		return &perrors.Error{Code: perrors.EInvalid, Msg: "request body must hold a single JSON object"}
	}
	return nil
}
