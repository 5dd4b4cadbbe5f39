package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/sessiongate/sessiongate/log"
	"github.com/sessiongate/sessiongate/session"
)

const (
	contentTypeHeader = "content-type"
	jsonContentType   = "application/json"
	maxPayloadSize    = 1 << 20
)

// CacheControl interface to inspect and drain the session cache
type CacheControl interface {
	CacheStats() CacheStats
	DrainCache() error
}

// QueryExecutor interface to run a vendor query with the credentials of the caller
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, tenant, user, password string, payload []byte) ([]byte, error)
}

// CacheEndpoint endpoint for the session cache control
type CacheEndpoint struct {
	control CacheControl
}

// QueryEndpoint endpoint for vendor queries
type QueryEndpoint struct {
	executor QueryExecutor
}

// RegisterEndpoint registers an implementation as HTTP endpoint
func RegisterEndpoint(router chi.Router, t interface{}) {
	if a, ok := t.(CacheControl); ok {
		registerCacheEndpoints(router, a)
	}

	if a, ok := t.(QueryExecutor); ok {
		registerQueryEndpoints(router, a)
	}
}

func registerCacheEndpoints(router chi.Router, control CacheControl) {
	s := &CacheEndpoint{control}

	router.Get(PathCacheStatsPath, s.apiCacheStats)
	router.Post(PathCacheDrainPath, s.apiCacheDrain)
}

func registerQueryEndpoints(router chi.Router, executor QueryExecutor) {
	q := &QueryEndpoint{executor}

	router.Post(PathQueryPath, q.apiQuery)
}

// apiCacheStats is the http endpoint to get the session cache state
func (s *CacheEndpoint) apiCacheStats(rw http.ResponseWriter, req *http.Request) {
	writeJSON(req.Context(), rw, http.StatusOK, s.control.CacheStats())
}

// apiCacheDrain is the http endpoint to close all idle sessions
func (s *CacheEndpoint) apiCacheDrain(rw http.ResponseWriter, req *http.Request) {
	logger := log.FromCtx(req.Context())

	logger.Info("draining session cache")

	if err := s.control.DrainCache(); err != nil {
		logger.Warn("can't close all sessions: ", err)
		writeError(req.Context(), rw, http.StatusInternalServerError, err)

		return
	}

	rw.Header().Set(contentTypeHeader, jsonContentType)
	_, err := rw.Write([]byte("{}"))

	if err != nil {
		logger.Error("can't send an empty answer: ", log.EscapeInput(err.Error()))
	}
}

// apiQuery is the http endpoint to execute a vendor query
func (q *QueryEndpoint) apiQuery(rw http.ResponseWriter, req *http.Request) {
	tenant := chi.URLParam(req, "tenant")

	ctx, _ := log.CtxWithFields(req.Context(), logrus.Fields{"tenant": tenant})

	user, password, ok := req.BasicAuth()
	if !ok || user == "" {
		rw.Header().Set("WWW-Authenticate", `Basic realm="sessiongate"`)
		writeError(ctx, rw, http.StatusUnauthorized, errors.New("basic auth credentials required"))

		return
	}

	payload, err := io.ReadAll(io.LimitReader(req.Body, maxPayloadSize+1))
	if err != nil {
		writeError(ctx, rw, http.StatusBadRequest, err)

		return
	}

	if len(payload) > maxPayloadSize {
		writeError(ctx, rw, http.StatusRequestEntityTooLarge, errors.New("payload too large"))

		return
	}

	resp, err := q.executor.ExecuteQuery(ctx, tenant, user, password, payload)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, session.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}

		log.FromCtx(ctx).Warnf("query for tenant '%s' failed: %s", log.EscapeInput(tenant), err)
		writeError(ctx, rw, status, err)

		return
	}

	rw.Header().Set(contentTypeHeader, "application/octet-stream")

	if _, err := rw.Write(resp); err != nil {
		log.FromCtx(ctx).Error("unable to write response: ", err)
	}
}

func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, v any) {
	rw.Header().Set(contentTypeHeader, jsonContentType)
	rw.WriteHeader(status)

	if err := json.NewEncoder(rw).Encode(v); err != nil {
		log.FromCtx(ctx).Error("unable to write response: ", err)
	}
}

func writeError(ctx context.Context, rw http.ResponseWriter, status int, err error) {
	writeJSON(ctx, rw, status, ErrorResponse{Error: err.Error()})
}
