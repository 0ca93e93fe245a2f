package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clinireason-backend/internal/data/repos"
	"github.com/yungbote/clinireason-backend/internal/data/repos/testutil"
	apphttp "github.com/yungbote/clinireason-backend/internal/http"
	"github.com/yungbote/clinireason-backend/internal/modules/generation/generationtest"
	"github.com/yungbote/clinireason-backend/internal/modules/regions"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

func TestNewGeneratorSelectsProvider(t *testing.T) {
	log := testutil.Logger(t)
	ctx := context.Background()

	if _, err := newGenerator(ctx, log, GeneratorConfig{Provider: "llama"}); err == nil {
		t.Fatalf("expected unknown provider to fail")
	}
	if _, err := newGenerator(ctx, log, GeneratorConfig{Provider: "openai"}); err == nil {
		t.Fatalf("expected missing OpenAI key to fail")
	}
	gen, err := newGenerator(ctx, log, GeneratorConfig{OpenAIAPIKey: "sk-test"})
	if err != nil || gen == nil {
		t.Fatalf("default provider: gen=%v err=%v", gen, err)
	}
}

func TestWiredRouterServesHealthAndGuardsAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)
	catalog, err := regions.Load("")
	if err != nil {
		t.Fatalf("regions: %v", err)
	}
	hub := realtime.NewSSEHub(log)
	cfg := Config{JWTSecretKey: "wire-test-secret"}
	r := repos.New(db, log)

	svc := wireServices(db, log, cfg, r, Clients{Generator: generationtest.NewStub(), Emitter: hub}, catalog, nil)
	if svc.Sessions == nil || svc.Reviews == nil || svc.Notifications == nil || svc.Auth == nil {
		t.Fatalf("services not wired: %+v", svc)
	}
	h := wireHandlers(log, db, r, svc, hub)
	engine := apphttp.NewRouter(wireRouterConfig(log, cfg, nil, h))

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/healthcheck", http.StatusOK},
		{"/readyz", http.StatusOK},
		{"/api/me", http.StatusUnauthorized},
		{"/api/regions", http.StatusUnauthorized},
		{"/metrics", http.StatusNotFound},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if w.Code != tc.want {
			t.Fatalf("GET %s: got %d want %d", tc.path, w.Code, tc.want)
		}
	}
}
