package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cairnhttp "github.com/aretw0/cairn/internal/adapters/http"
	"github.com/aretw0/cairn/pkg/domain"
)

type stubPipeline struct {
	report  *domain.RunReport
	runErr  error
	results map[string]any
}

func (p *stubPipeline) Run(ctx context.Context) (*domain.RunReport, error) {
	return p.report, p.runErr
}

func (p *stubPipeline) Read(ctx context.Context, name string) (any, error) {
	v, ok := p.results[name]
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	return v, nil
}

func (p *stubPipeline) Manifest(ctx context.Context) (*domain.GraphManifest, error) {
	return &domain.GraphManifest{
		Targets: []domain.Summary{
			{Name: "a", Definition: "a"},
			{Name: "b", Definition: "b", DependsOn: []string{"a"}},
		},
		Edges: []domain.Edge{{From: "a", To: "b"}},
		Order: []string{"a", "b"},
	}, nil
}

func (p *stubPipeline) Report() *domain.RunReport { return p.report }

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_Healthz(t *testing.T) {
	handler := cairnhttp.NewHandler(&stubPipeline{})
	rec := get(t, handler, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Manifest(t *testing.T) {
	handler := cairnhttp.NewHandler(&stubPipeline{})
	rec := get(t, handler, "/manifest")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var manifest domain.GraphManifest
	if err := json.Unmarshal(rec.Body.Bytes(), &manifest); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(manifest.Targets) != 2 || manifest.Order[0] != "a" {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
}

func TestHandler_Mermaid(t *testing.T) {
	pipeline := &stubPipeline{
		report: &domain.RunReport{
			Targets: []domain.TargetReport{
				{Name: "a", Status: domain.StatusOK},
				{Name: "b", Status: domain.StatusError},
			},
		},
	}
	handler := cairnhttp.NewHandler(pipeline)
	rec := get(t, handler, "/graph/mermaid")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"graph TD", "a --> b", "class b error;"} {
		if !strings.Contains(body, want) {
			t.Errorf("mermaid output missing %q:\n%s", want, body)
		}
	}
}

func TestHandler_Results(t *testing.T) {
	handler := cairnhttp.NewHandler(&stubPipeline{
		results: map[string]any{"a": 42},
	})

	rec := get(t, handler, "/results/a")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp["value"] != float64(42) {
		t.Errorf("expected value 42, got %v", resp["value"])
	}

	rec = get(t, handler, "/results/missing")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing result, got %d", rec.Code)
	}
}

func TestHandler_ReportBeforeAnyRun(t *testing.T) {
	handler := cairnhttp.NewHandler(&stubPipeline{})
	rec := get(t, handler, "/report")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before first run, got %d", rec.Code)
	}
}

func TestHandler_Run(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := cairnhttp.NewHandler(&stubPipeline{
			report: &domain.RunReport{Targets: []domain.TargetReport{{Name: "a", Status: domain.StatusOK}}},
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("Conflict", func(t *testing.T) {
		handler := cairnhttp.NewHandler(&stubPipeline{runErr: domain.ErrRunInProgress})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("FailedRunStillReturnsReport", func(t *testing.T) {
		handler := cairnhttp.NewHandler(&stubPipeline{
			report: &domain.RunReport{Targets: []domain.TargetReport{{Name: "a", Status: domain.StatusError}}},
			runErr: errors.New("target a failed: boom"),
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/run", nil))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if _, ok := resp["report"]; !ok {
			t.Error("expected report in failure response")
		}
	})
}
