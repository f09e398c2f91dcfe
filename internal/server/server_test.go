package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/notify"
	"github.com/akoutras/medpress/internal/ratelimit"
	"github.com/akoutras/medpress/internal/repository"
	"github.com/akoutras/medpress/internal/retry"
	"github.com/akoutras/medpress/internal/service"
)

const apiArticle = `# Αρθροσκόπηση Γόνατος

Ο Δρ. Χλωρός εφαρμόζει σύγχρονες τεχνικές με ποσοστά επιτυχίας 75-85%.

## Θεραπεία

Η αποκατάσταση διαρκεί 4-6 εβδομάδες.

---

**Δρ. Γεώργιος Χλωρός**
Χειρουργός Ορθοπαιδικός`

type noopSleeper struct{}

func (noopSleeper) Sleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

type fixedGenerator struct{}

func (fixedGenerator) Generate(ctx context.Context, req domain.GenerationRequest, research *domain.ResearchContext, feedback *domain.RetryFeedback) (*domain.Draft, error) {
	attempt := 1
	if feedback != nil {
		attempt = feedback.Attempt + 1
	}
	return &domain.Draft{Topic: req.Topic, Content: apiArticle, WordCount: 20, Attempt: attempt, CreatedAt: time.Now()}, nil
}

type fixedEvaluator struct{ score int }

func (f fixedEvaluator) Evaluate(content string, target int, topic string, retryCount int) domain.Evaluation {
	ev := domain.Evaluation{TotalScore: f.score, WordCountActual: 20, WordCountTarget: target, RetryCount: retryCount}
	ev.DeterminePassStatus(80, -15.0)
	return ev
}

func (f fixedEvaluator) EvaluateCombined(ctx context.Context, content string, target int, topic string, retryCount int) domain.CombinedEvaluation {
	return domain.CombinedEvaluation{
		AIScore:        f.score,
		CombinedScore:  f.score,
		AIPasses:       f.score >= 80,
		PatternValid:   true,
		Recommendation: domain.RecommendPublish,
	}
}

type emptyResearch struct{}

func (emptyResearch) Research(ctx context.Context, topic string) (*domain.ResearchContext, error) {
	return &domain.ResearchContext{Topic: topic, GatheredAt: time.Now()}, nil
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) (*Server, *repository.MockRunRepository) {
	t.Helper()

	evaluator, err := service.NewEvaluator(service.EvaluatorDeps{Rules: domain.RuleSet{}, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}

	handler, err := retry.New(retry.Config{MaxRetries: 1}, zap.NewNop())
	if err != nil {
		t.Fatalf("retry.New() error = %v", err)
	}
	handler.WithSleeper(noopSleeper{})

	runs := repository.NewMockRunRepository()
	workflow := service.NewWorkflow(service.WorkflowDeps{
		Research:  emptyResearch{},
		Generator: fixedGenerator{},
		Evaluator: fixedEvaluator{score: 90},
		Publisher: service.NewPublisher(service.PublisherDeps{Runs: runs, Notifier: notify.NewMock(), Logger: zap.NewNop()}),
		Retries:   handler,
		Runs:      runs,
		Logger:    zap.NewNop(),
	})

	return New(Deps{
		Evaluator: evaluator,
		Workflow:  workflow,
		Runs:      runs,
		Limiter:   limiter,
		Logger:    zap.NewNop(),
	}), runs
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Evaluate(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body, _ := json.Marshal(evaluateRequest{Content: apiArticle, Topic: "Αρθροσκόπηση γόνατος", WordCountTarget: 20})
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/evaluations", string(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var combined domain.CombinedEvaluation
	if err := json.Unmarshal(rec.Body.Bytes(), &combined); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if combined.CombinedScore < 0 || combined.CombinedScore > 100 {
		t.Errorf("CombinedScore = %d, out of range", combined.CombinedScore)
	}
	if combined.Recommendation == "" {
		t.Error("missing recommendation")
	}
}

func TestServer_Evaluate_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"content":`},
		{"unknown field", `{"content":"x","word_count_target":10,"bogus":1}`},
		{"missing content", `{"word_count_target":10}`},
		{"zero target", `{"content":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doJSON(t, srv, http.MethodPost, "/api/v1/evaluations", tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestServer_Validate(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/validations", `{"content":"Ο Δρ. Χλωρός εφαρμόζει τη θεραπεία."}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result domain.ValidationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestServer_QuickCheck(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	body, _ := json.Marshal(quickCheckRequest{Content: apiArticle, WordCountTarget: 20})
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/quick-checks", string(body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var qc domain.QuickCheck
	if err := json.Unmarshal(rec.Body.Bytes(), &qc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if qc.WordCount == 0 {
		t.Error("WordCount = 0, want > 0")
	}
}

func TestServer_CreateArticle(t *testing.T) {
	srv, runs := newTestServer(t, nil)

	body, _ := json.Marshal(createArticleRequest{Topic: "Αρθροσκόπηση γόνατος", WordCountTarget: 20})
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/articles", string(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var result service.RunResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Run.Status != domain.RunPublished {
		t.Errorf("Status = %s, want published", result.Run.Status)
	}
	if n, _ := runs.CountByStatus(context.Background(), domain.RunPublished); n != 1 {
		t.Errorf("archived runs = %d, want 1", n)
	}
}

func TestServer_CreateArticle_InvalidTopic(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/articles", `{"topic":"","word_count_target":20}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestServer_Runs(t *testing.T) {
	srv, runs := newTestServer(t, nil)

	now := time.Now()
	for i, status := range []domain.RunStatus{domain.RunPublished, domain.RunNeedsReview} {
		run := &domain.ArticleRun{
			ID:          fmt.Sprintf("run-%d", i+1),
			Topic:       "Αρθροσκόπηση γόνατος",
			Status:      status,
			FinalScore:  80 + i,
			Attempts:    1,
			StartedAt:   now.Add(time.Duration(i) * time.Minute),
			CompletedAt: now.Add(time.Duration(i)*time.Minute + 30*time.Second),
		}
		if err := runs.Create(context.Background(), run); err != nil {
			t.Fatalf("seed run: %v", err)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/v1/runs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var listing struct {
		Runs  []domain.ArticleRun `json:"runs"`
		Count int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if listing.Count != 2 {
		t.Errorf("count = %d, want 2", listing.Count)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/runs?status=published", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if listing.Count != 1 || listing.Runs[0].Status != domain.RunPublished {
		t.Errorf("filtered listing = %+v, want 1 published run", listing)
	}

	if rec = doJSON(t, srv, http.MethodGet, "/api/v1/runs?status=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", rec.Code)
	}

	if rec = doJSON(t, srv, http.MethodGet, "/api/v1/runs/run-1", ""); rec.Code != http.StatusOK {
		t.Errorf("get run = %d, want 200", rec.Code)
	}
	if rec = doJSON(t, srv, http.MethodGet, "/api/v1/runs/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing run = %d, want 404", rec.Code)
	}
}

func TestServer_Healthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var health service.Health
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("health = %q, want ok", health.Status)
	}
}

func TestServer_RateLimit(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{RequestsPerMinute: 2})
	srv, _ := newTestServer(t, limiter)

	body := `{"content":"Ο Δρ. Χλωρός εφαρμόζει τη θεραπεία."}`
	for i := 0; i < 2; i++ {
		if rec := doJSON(t, srv, http.MethodPost, "/api/v1/validations", body); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/validations", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	// health endpoint is not rate limited
	if rec := doJSON(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}
