package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/handler"
	"github.com/marketdev/internal/middleware"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	gdb    *gorm.DB
	cookie []*http.Cookie
}

func newTestServer(t *testing.T, uploadDir string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open("file:"+name+"?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := db.CreateUser(gdb, "admin", "correct-horse"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	api := handler.NewAPI(gdb, handler.Options{UploadDir: uploadDir, UploadURL: "/static/uploads"})
	r, err := SetupRouter(api, Config{
		SessionSecret:  "test-secret",
		UploadDir:      uploadDir,
		UploadURLPath:  "/static/uploads",
		PreviewLimiter: middleware.NewRateLimiter(100, 100, nil),
	})
	if err != nil {
		t.Fatalf("SetupRouter returned error: %v", err)
	}
	return &testServer{t: t, engine: r, gdb: gdb}
}

func (s *testServer) do(method, target, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range s.cookie {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.engine.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) login() {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/admin/login", `{"username":"admin","password":"correct-horse"}`)
	if rr.Code != http.StatusOK {
		s.t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}
	s.cookie = rr.Result().Cookies()
	if len(s.cookie) == 0 {
		s.t.Fatal("expected session cookie after login")
	}
}

func TestPingAndAssets(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	if rr := s.do(http.MethodGet, "/ping", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected ping 200, got %d", rr.Code)
	}
	rr := s.do(http.MethodGet, "/assets/storefront.css", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected embedded asset, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), ".tier") {
		t.Fatalf("unexpected asset body: %q", rr.Body.String())
	}
}

func TestSetupRouterServesUploads(t *testing.T) {
	uploadDir := t.TempDir()
	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(uploadDir, "logo.txt"), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	s := newTestServer(t, uploadDir)

	rr := s.do(http.MethodGet, "/static/uploads/logo.txt", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestAdminRequiresAuthentication(t *testing.T) {
	s := newTestServer(t, t.TempDir())

	if rr := s.do(http.MethodGet, "/admin/api/sites", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for API, got %d", rr.Code)
	}
	rr := s.do(http.MethodGet, "/admin/sites", "")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/admin/login" {
		t.Fatalf("expected redirect to login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	if rr := s.do(http.MethodPost, "/admin/login", `{"username":"admin","password":"nope"}`); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected bad password to be rejected, got %d", rr.Code)
	}
}

func TestPublishAndServeStorefront(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	s.login()

	rr := s.do(http.MethodPost, "/admin/api/sites", `{"name":"Acme","subdomain":"acme"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create site failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = s.do(http.MethodPost, "/admin/api/sites/1/pages", `{"title":"Home","slug":"home","content":"<h1><SiteName></SiteName></h1>","draft":false}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create page failed: %d %s", rr.Code, rr.Body.String())
	}
	rr = s.do(http.MethodPost, "/admin/api/sites/1/pages", `{"title":"Secret","content":"<p>hidden</p>"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create draft failed: %d %s", rr.Code, rr.Body.String())
	}

	if rr := s.do(http.MethodPut, "/admin/api/sites/1/homepage", `{"pageId":1}`); rr.Code != http.StatusOK {
		t.Fatalf("set homepage failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = s.do(http.MethodGet, "/s/acme", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected storefront 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `class="site-name">Acme</span>`) {
		t.Fatalf("expected rendered site name, got %s", rr.Body.String())
	}

	if rr := s.do(http.MethodGet, "/s/acme/secret", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected draft page to be hidden, got %d", rr.Code)
	}
	if rr := s.do(http.MethodGet, "/s/nobody", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected unknown site 404, got %d", rr.Code)
	}

	rr = s.do(http.MethodGet, "/admin/sites", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/admin/pages/2/edit") {
		t.Fatalf("expected dashboard listing pages, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, t.TempDir())
	s.do(http.MethodGet, "/ping", "")

	rr := s.do(http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "marketdev_") {
		t.Fatalf("expected marketdev metrics in output")
	}
}
