package integration

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"taskflow/internal/http/handlers"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func TestReadinessReportsDependencies(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer db.Close()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewHealthHandler(db, nil, "test")
	r.GET("/readyz", h.Readiness)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != 200 {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp handlers.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Status != "healthy" {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Checks["database"] != "healthy" {
		t.Fatalf("database check = %q", resp.Checks["database"])
	}
	// redis is optional; without it the limiter is off but the app is ready
	if resp.Checks["redis"] != "not configured, rate limiting disabled" {
		t.Fatalf("redis check = %q", resp.Checks["redis"])
	}
}
