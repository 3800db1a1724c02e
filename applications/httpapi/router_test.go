package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMountRoutesEnforcesMethod(t *testing.T) {
	mux := http.NewServeMux()
	called := false
	mountRoutes(mux, route{
		pattern: "/v1/runs",
		method:  http.MethodPost,
		handler: func(w http.ResponseWriter, r *http.Request) { called = true },
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/runs", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	assert.False(t, called)
}

func TestMountRoutesSkipsEmptyRoutes(t *testing.T) {
	mux := http.NewServeMux()
	assert.NotPanics(t, func() {
		mountRoutes(mux, route{}, route{pattern: "/x"})
	})
}

func TestMountRoutesInvokesHandlerOnMatchingMethod(t *testing.T) {
	mux := http.NewServeMux()
	called := false
	mountRoutes(mux, route{
		pattern: "/v1/runs",
		method:  http.MethodPost,
		handler: func(w http.ResponseWriter, r *http.Request) { called = true; w.WriteHeader(http.StatusOK) },
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}
