package router

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/library/internal/config"
	"github.com/polkiloo/library/internal/domain/model"
	"github.com/polkiloo/library/internal/server/http/handlers"
	testhelpers "github.com/polkiloo/library/internal/test"
)

func newEngine(identity model.Identity, origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	facade := testhelpers.LibraryFacadeStub{
		AuthFacadeStub: testhelpers.AuthFacadeStub{
			ParseFn: func(string) (model.Identity, error) { return identity, nil },
		},
	}
	cfg := &config.Config{SessionTTL: time.Hour, CORSOrigins: origins}
	return Setup(facade, logger, cfg)
}

func serve(engine *gin.Engine, method, target, token string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestSetupPublicRoutes(t *testing.T) {
	engine := newEngine(model.Identity{}, []string{"*"})

	for _, target := range []string{"/", "/healthz", "/register", "/login"} {
		resp := serve(engine, http.MethodGet, target, "", nil, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d", target, resp.Code)
		}
		if resp.Header().Get("X-Request-ID") == "" {
			t.Fatalf("GET %s: expected request id header", target)
		}
	}

	resp := serve(engine, http.MethodPost, "/register", "", []byte(`{"username":"user","password":"pass"}`), map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/login" {
		t.Fatalf("expected register redirect, got %d %q", resp.Code, resp.Header().Get("Location"))
	}

	resp = serve(engine, http.MethodPost, "/login", "", []byte(`{"username":"user","password":"pass"}`), map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/student" {
		t.Fatalf("expected login redirect, got %d %q", resp.Code, resp.Header().Get("Location"))
	}

	resp = serve(engine, http.MethodGet, "/logout", "", nil, nil)
	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/" {
		t.Fatalf("expected logout redirect, got %d", resp.Code)
	}
}

func TestSetupProtectedRoutesRedirectAnonymous(t *testing.T) {
	engine := newEngine(model.Identity{}, nil)

	for _, target := range []string{"/student", "/mybooks", "/borrow/1", "/admin", "/admin/delete_book/1"} {
		resp := serve(engine, http.MethodGet, target, "", nil, nil)
		if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/login" {
			t.Fatalf("GET %s: expected redirect to login, got %d", target, resp.Code)
		}
	}
	resp := serve(engine, http.MethodPost, "/admin/add_book", "", []byte(`{"title":"Dune"}`), map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected add book redirect, got %d", resp.Code)
	}
}

func TestSetupMemberRoutes(t *testing.T) {
	engine := newEngine(model.MemberIdentity(1), nil)

	cases := []struct {
		target string
		status int
	}{
		{"/student", http.StatusOK},
		{"/mybooks", http.StatusOK},
		{"/borrow/1", http.StatusCreated},
		{"/return/1", http.StatusOK},
		{"/admin", http.StatusSeeOther},
	}
	for _, tc := range cases {
		resp := serve(engine, http.MethodGet, tc.target, "token", nil, nil)
		if resp.Code != tc.status {
			t.Fatalf("GET %s: expected %d, got %d", tc.target, tc.status, resp.Code)
		}
	}
}

func TestSetupAdminRoutes(t *testing.T) {
	engine := newEngine(model.AdminIdentity(), nil)

	resp := serve(engine, http.MethodGet, "/admin", "token", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected admin dashboard, got %d", resp.Code)
	}

	resp = serve(engine, http.MethodPost, "/admin/add_book", "token", []byte(`{"title":"Dune","total_copies":2}`), map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected book created, got %d %s", resp.Code, resp.Body.String())
	}

	resp = serve(engine, http.MethodGet, "/admin/delete_book/1", "token", nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected book deleted, got %d", resp.Code)
	}

	resp = serve(engine, http.MethodGet, "/student", "token", nil, nil)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected fixed administrator to be kept off member pages, got %d", resp.Code)
	}
}

func TestSetupCompressesResponses(t *testing.T) {
	engine := newEngine(model.Identity{}, nil)
	resp := serve(engine, http.MethodGet, "/", "", nil, map[string]string{"Accept-Encoding": "gzip"})
	if resp.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, got headers %v", resp.Header())
	}
}

func TestSetupCORS(t *testing.T) {
	engine := newEngine(model.Identity{}, []string{"*"})
	resp := serve(engine, http.MethodOptions, "/login", "", nil, map[string]string{
		"Origin":                        "http://example.com",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if resp.Code != http.StatusNoContent || resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard preflight, got %d %v", resp.Code, resp.Header())
	}

	engine = newEngine(model.Identity{}, []string{"http://library.local"})
	resp = serve(engine, http.MethodGet, "/", "", nil, map[string]string{"Origin": "http://library.local"})
	if resp.Header().Get("Access-Control-Allow-Origin") != "http://library.local" || resp.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected origin echo with credentials, got %v", resp.Header())
	}

	resp = serve(engine, http.MethodGet, "/", "", nil, map[string]string{"Origin": "http://evil.local"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected foreign origin rejected, got %d", resp.Code)
	}
}

func TestCorsConfig(t *testing.T) {
	if cfg := corsConfig(nil); !cfg.AllowAllOrigins || cfg.AllowCredentials {
		t.Fatalf("expected all origins without credentials, got %+v", cfg)
	}
	cfg := corsConfig([]string{"http://a", "http://b"})
	if cfg.AllowAllOrigins || len(cfg.AllowOrigins) != 2 || !cfg.AllowCredentials {
		t.Fatalf("unexpected restricted config %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid cors config: %v", err)
	}
}

var _ handlers.LibraryFacade = testhelpers.LibraryFacadeStub{}
