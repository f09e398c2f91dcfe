package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/llm"
	llmmock "github.com/akoutras/medpress/internal/llm/mock"
)

// Scores around the gate threshold with proper structure and signature.
const evaluatedArticle = `# Αρθροσκόπηση Γόνατος: Πλήρης Οδηγός

Ο Δρ. Χλωρός (VCU Medical Center USA) εφαρμόζει σύγχρονες αρθροσκοπικές τεχνικές.
Η θεραπεία περιλαμβάνει ελάχιστα επεμβατική προσέγγιση με ποσοστά επιτυχίας 75-85%.

## Ανατομία του Γόνατος

Ο μηνίσκος (δίσκος χόνδρου που απορροφά τους κραδασμούς) προστατεύει την άρθρωση.
Τα αποτελέσματα ποικίλλουν ανάλογα με τον ασθενή.

## Θεραπεία και Αποκατάσταση

Η αποκατάσταση διαρκεί συνήθως 4-6 εβδομάδες με φυσικοθεραπεία.
Ο Δρ. Χλωρός σχεδιάζει εξατομικευμένο πρόγραμμα για κάθε περίπτωση.

---

**Δρ. Γεώργιος Χλωρός**
Χειρουργός Ορθοπαιδικός`

func newTestEvaluator(t *testing.T, client llm.Client) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(EvaluatorDeps{
		Rules:  domain.RuleSet{},
		LLM:    client,
		Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	return ev
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name         string
		aiPasses     bool
		patternValid bool
		aiScore      int
		want         domain.Recommendation
	}{
		{"both gates pass", true, true, 85, domain.RecommendPublish},
		{"gate pass overrides score floor", true, true, 60, domain.RecommendPublish},
		{"good score, clean patterns", false, true, 70, domain.RecommendReview},
		{"good score, pattern violations", false, false, 82, domain.RecommendRetry},
		{"gate pass but dirty patterns", true, false, 85, domain.RecommendRetry},
		{"mid score", false, true, 69, domain.RecommendRetry},
		{"retry floor", false, false, 60, domain.RecommendRetry},
		{"below retry floor", false, true, 59, domain.RecommendMajorRevision},
		{"hopeless", false, false, 0, domain.RecommendMajorRevision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := recommend(tt.aiPasses, tt.patternValid, tt.aiScore); got != tt.want {
				t.Errorf("recommend(%v, %v, %d) = %q, want %q", tt.aiPasses, tt.patternValid, tt.aiScore, got, tt.want)
			}
		})
	}
}

func TestEvaluator_EvaluateCombined_PatternInvalidNeverReview(t *testing.T) {
	ev := newTestEvaluator(t, nil)

	rules := domain.RuleSet{
		AntiPatterns: []domain.AntiPattern{
			{
				ID:            "AP001",
				Name:          "Marketing language",
				Type:          domain.TypeVoice,
				Examples:      []string{"εξατομικευμένο πρόγραμμα"},
				PenaltyPoints: 60,
			},
		},
	}
	if err := ev.SetRules(rules); err != nil {
		t.Fatalf("SetRules() error = %v", err)
	}

	combined := ev.EvaluateCombined(context.Background(), evaluatedArticle, 60, "Αρθροσκόπηση γόνατος", 0)

	if combined.PatternValid {
		t.Fatal("expected pattern validation to fail")
	}
	if combined.Recommendation == domain.RecommendReview || combined.Recommendation == domain.RecommendPublish {
		t.Errorf("Recommendation = %q for pattern-invalid article, want RETRY or MAJOR_REVISION", combined.Recommendation)
	}
}

func TestEvaluator_EvaluateCombined_NoLLM(t *testing.T) {
	ev := newTestEvaluator(t, nil)

	combined := ev.EvaluateCombined(context.Background(), evaluatedArticle, 60, "Αρθροσκόπηση γόνατος", 0)

	if combined.AIScore != combined.Evaluation.TotalScore {
		t.Errorf("AIScore = %d, want engine score %d", combined.AIScore, combined.Evaluation.TotalScore)
	}
	if combined.CombinedScore < 0 || combined.CombinedScore > 100 {
		t.Errorf("CombinedScore = %d, out of range", combined.CombinedScore)
	}
	if combined.Recommendation != recommend(combined.AIPasses, combined.PatternValid, combined.AIScore) {
		t.Errorf("Recommendation = %q inconsistent with gates (ai_passes=%v pattern_valid=%v ai_score=%d)",
			combined.Recommendation, combined.AIPasses, combined.PatternValid, combined.AIScore)
	}
}

func TestEvaluator_EvaluateCombined_JudgeScore(t *testing.T) {
	client := llmmock.New().WithResponse(`Here is my verdict:
{"total_score": 90, "critical_issues": [], "improvements_needed": ["tighten intro"]}`)
	ev := newTestEvaluator(t, client)

	combined := ev.EvaluateCombined(context.Background(), evaluatedArticle, 60, "Αρθροσκόπηση γόνατος", 0)

	if combined.AIScore != 90 {
		t.Errorf("AIScore = %d, want 90 from judge", combined.AIScore)
	}
	if client.CallCount != 1 {
		t.Errorf("judge CallCount = %d, want 1", client.CallCount)
	}
	if client.LastParams != llm.JudgeParams {
		t.Errorf("sampling params = %+v, want judge params", client.LastParams)
	}

	want := int(0.7*90 + 0.3*float64(combined.ValidationScore))
	if !combined.PatternValid {
		want -= patternInvalidPenalty
	}
	want = min(max(want, 0), 100)
	if combined.CombinedScore != want {
		t.Errorf("CombinedScore = %d, want %d", combined.CombinedScore, want)
	}

	found := false
	for _, imp := range combined.Evaluation.Improvements {
		if imp == "tighten intro" {
			found = true
		}
	}
	if !found {
		t.Error("judge improvements not merged into evaluation")
	}
}

func TestEvaluator_EvaluateCombined_JudgeFallback(t *testing.T) {
	tests := []struct {
		name   string
		client *llmmock.Client
	}{
		{"llm error", llmmock.New().WithError(llm.ErrRequestFailed)},
		{"unparseable response", llmmock.New().WithResponse("the article looks great")},
		{"score out of range", llmmock.New().WithResponse(`{"total_score": 150}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := newTestEvaluator(t, tt.client)
			combined := ev.EvaluateCombined(context.Background(), evaluatedArticle, 60, "Αρθροσκόπηση γόνατος", 0)
			if combined.AIScore != combined.Evaluation.TotalScore {
				t.Errorf("AIScore = %d, want engine fallback %d", combined.AIScore, combined.Evaluation.TotalScore)
			}
		})
	}
}

func TestEvaluator_SetRules(t *testing.T) {
	ev := newTestEvaluator(t, nil)

	rules := domain.RuleSet{
		AntiPatterns: []domain.AntiPattern{
			{
				ID:            "AP001",
				Name:          "Marketing language",
				Type:          domain.TypeVoice,
				Examples:      []string{"εγγυημένη επιτυχία"},
				PenaltyPoints: 20,
			},
		},
	}
	if err := ev.SetRules(rules); err != nil {
		t.Fatalf("SetRules() error = %v", err)
	}

	result := ev.Validate("Η θεραπεία προσφέρει εγγυημένη επιτυχία σε όλους.")
	if len(result.ViolatedAntiPatterns) == 0 {
		t.Error("reloaded anti-pattern not applied")
	}

	bad := domain.RuleSet{Patterns: []domain.Pattern{{ID: "", Name: "x", Type: domain.TypeVoice}}}
	if err := ev.SetRules(bad); err == nil {
		t.Error("SetRules() with invalid rules should fail")
	}

	// Failed reload keeps the previous set.
	result = ev.Validate("Η θεραπεία προσφέρει εγγυημένη επιτυχία σε όλους.")
	if len(result.ViolatedAntiPatterns) == 0 {
		t.Error("previous rule set lost after failed reload")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose around", `verdict: {"a":1} done`, `{"a":1}`},
		{"nested", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"no object", `no json here`, `no json here`},
		{"unterminated", `{"a":1`, `{"a":1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
