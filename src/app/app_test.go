package app

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	_ "github.com/ethaccount/dats/docs/swagger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouterApp() *Application {
	origins := []string{"http://localhost:3000"}
	return &Application{
		config:  AppConfig{AllowOrigins: &origins},
		ChainID: big.NewInt(11155111),
	}
}

func TestNewRouter_ServesSwagger(t *testing.T) {
	router := newTestRouterApp().newRouter(context.Background())

	tests := []struct {
		path     string
		contains string
	}{
		{"/swagger/index.html", "swagger-ui"},
		{"/swagger/doc.json", `"/dats/{method}"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestSwaggerDoc_CoversEveryAPIRoute(t *testing.T) {
	router := newTestRouterApp().newRouter(context.Background())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	require.Equal(t, "/api/v1", doc.BasePath)

	param := regexp.MustCompile(`:(\w+)`)
	var documented int
	for _, route := range router.Routes() {
		if !strings.HasPrefix(route.Path, doc.BasePath) {
			continue
		}
		path := param.ReplaceAllString(strings.TrimPrefix(route.Path, doc.BasePath), "{$1}")
		methods, ok := doc.Paths[path]
		if assert.True(t, ok, "undocumented route %s", path) {
			assert.Contains(t, methods, strings.ToLower(route.Method), "undocumented method %s %s", route.Method, path)
		}
		documented++
	}
	assert.Equal(t, len(doc.Paths), documented)
}
