package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jwtinfra "github.com/nitinder-api/internal/infrastructure/jwt"
	"github.com/nitinder-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/require"
)

func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewEphemeralProvider(time.Hour)
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for userID.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID string, body interface{}) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, userID+"@nitj.ac.in", "sess-"+userID)
	require.NoError(t, err)
	r := jsonReq(t, method, target, body)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func jsonReq(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	if body == nil {
		return httptest.NewRequest(method, target, nil)
	}
	raw, ok := body.(string)
	if !ok {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		raw = string(b)
	}
	r := httptest.NewRequest(method, target, bytes.NewBufferString(raw))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withParam injects a chi URL param into the request context.
func withParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	middleware.Auth(p, nil)(h).ServeHTTP(rr, r)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(v))
}
