package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/llm"
	"github.com/akoutras/medpress/internal/metrics"
	"github.com/akoutras/medpress/internal/quality"
)

const generationSystemPrompt = `Είσαι ειδικός συγγραφέας ιατρικών άρθρων για ορθοπαιδικό χειρουργό στην Ελλάδα.
Ο στόχος σου είναι να δημιουργήσεις άρθρα υψηλής ποιότητας που:

ΦΩΝΗ & ΣΤΥΛ:
- Χρησιμοποιούν ΜΟΝΟ Γ' ενικό πρόσωπο ("Ο Δρ. Χλωρός εφαρμόζει", "Η θεραπεία περιλαμβάνει")
- Αναφέρουν τα διαπιστευτήρια ΜΙΑ ΦΟΡΑ στην εισαγωγή ("VCU Medical Center USA, Leeds Hospital UK")
- Διατηρούν επαγγελματικό, εκπαιδευτικό τόνο χωρίς συναισθηματικές ιστορίες

ΔΟΜΗ & ΟΡΓΑΝΩΣΗ:
- Ακολουθούν λογική ροή: Ανατομία → Συμπτώματα → Διάγνωση → Θεραπεία → Αποκατάσταση
- Παράγραφοι 2-3 προτάσεων για εύκολη ανάγνωση
- Καθαρές μεταβάσεις μεταξύ ενοτήτων, χωρίς επαναλήψεις

ΙΑΤΡΙΚΗ ΑΚΡΙΒΕΙΑ:
- Ποσοστά επιτυχίας ως ΠΕΡΙΟΧΕΣ ("75-85%" όχι "80%")
- Αναφορές στη μεταβλητότητα αποτελεσμάτων
- Ελληνικοί όροι + απλές εξηγήσεις

SEO & ΤΕΧΝΙΚΑ:
- Κύρια λέξη-κλειδί στον H1 και στην πρώτη παράγραφο
- Σωστή μορφοποίηση Markdown (# H1, ## H2, ### H3, **έμφαση**, λίστες)
- Ακρίβεια αριθμού λέξεων

ΑΠΑΓΟΡΕΥΜΕΝΑ ΜΟΤΙΒΑ:
- Α' ενικό πρόσωπο
- Συναισθηματικές ιστορίες ασθενών
- Έλλειψη αναφορών μεταβλητότητας
- Αριθμός λέξεων κάτω από 85% του στόχου

ΥΠΟΓΡΑΦΗ (υποχρεωτική στο τέλος):

---

**Δρ. Γεώργιος Χλωρός**
Χειρουργός Ορθοπαιδικός
Χειρουργική Ισχίου-Γόνατος-Ποδιού
Αναγεννητικές-Ορθοβιολογικές Θεραπείες

Δημιούργησε ΠΛΗΡΕΣ άρθρο σε μία απάντηση, όχι τμήματα.`

type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest, research *domain.ResearchContext, feedback *domain.RetryFeedback) (*domain.Draft, error)
}

type GeneratorDeps struct {
	LLM      llm.Client
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Provider string
}

type generator struct {
	llm      llm.Client
	logger   *zap.Logger
	metrics  *metrics.Metrics
	provider string
}

func NewGenerator(deps GeneratorDeps) Generator {
	if deps.Provider == "" {
		deps.Provider = "openrouter"
	}
	return &generator{
		llm:      deps.LLM,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		provider: deps.Provider,
	}
}

func (g *generator) Generate(ctx context.Context, req domain.GenerationRequest, research *domain.ResearchContext, feedback *domain.RetryFeedback) (*domain.Draft, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	attempt := 1
	if feedback != nil {
		attempt = feedback.Attempt + 1
	}

	prompt := buildGenerationPrompt(req, research, feedback)

	g.logger.Info("generating article",
		zap.String("topic", req.Topic),
		zap.Int("word_target", req.WordCountTarget),
		zap.Int("attempt", attempt),
	)

	llmStart := time.Now()
	content, err := g.llm.Complete(ctx, llm.Prompt{
		System: generationSystemPrompt,
		User:   prompt,
		Params: llm.GenerationParams,
	})
	if err != nil {
		if g.metrics != nil {
			g.metrics.RecordLLMRequest(g.provider, "error", time.Since(llmStart))
		}
		return nil, fmt.Errorf("generate article: %w", err)
	}
	if g.metrics != nil {
		g.metrics.RecordLLMRequest(g.provider, "success", time.Since(llmStart))
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.ErrEmptyArticle
	}

	draft := &domain.Draft{
		Topic:     req.Topic,
		Content:   content,
		WordCount: quality.CountWords(content),
		Attempt:   attempt,
		CreatedAt: time.Now(),
	}

	g.logger.Info("article generated",
		zap.String("topic", req.Topic),
		zap.Int("word_count", draft.WordCount),
		zap.Int("attempt", attempt),
	)

	return draft, nil
}

func buildGenerationPrompt(req domain.GenerationRequest, research *domain.ResearchContext, feedback *domain.RetryFeedback) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Δημιούργησε πλήρες άρθρο blog για το θέμα: %s\n", req.Topic)
	fmt.Fprintf(&sb, "Στόχος λέξεων: %d\n", req.WordCountTarget)

	if len(req.Keywords) > 0 {
		fmt.Fprintf(&sb, "Λέξεις-κλειδιά: %s\n", strings.Join(req.Keywords, ", "))
	}

	if research != nil && !research.IsEmpty() {
		sb.WriteString("\nΙΑΤΡΙΚΑ ΔΕΔΟΜΕΝΑ (χρησιμοποίησε για ακρίβεια):\n")
		for i, fact := range research.Facts {
			fmt.Fprintf(&sb, "- %s\n", truncate(fact.Content, 500))
			if i >= 9 {
				break
			}
		}
		for i, finding := range research.Findings {
			if finding.Content == "" {
				continue
			}
			fmt.Fprintf(&sb, "- %s\n", truncate(finding.Content, 500))
			if i >= 9 {
				break
			}
		}
	}

	if feedback != nil {
		fmt.Fprintf(&sb, "\nΠΡΟΣΟΧΗ - ΑΥΤΗ ΕΙΝΑΙ ΠΡΟΣΠΑΘΕΙΑ #%d:\n", feedback.Attempt+1)
		fmt.Fprintf(&sb, "Προηγούμενο σκορ: %d/100\n", feedback.PreviousScore)
		if len(feedback.CriticalIssues) > 0 {
			fmt.Fprintf(&sb, "Κρίσιμα προβλήματα: %s\n", strings.Join(feedback.CriticalIssues, ", "))
		}
		if len(feedback.ImprovementsNeeded) > 0 {
			fmt.Fprintf(&sb, "Βελτιώσεις που χρειάζονται: %s\n", strings.Join(feedback.ImprovementsNeeded, ", "))
		}
		if len(feedback.SpecificInstructions) > 0 {
			sb.WriteString("Συγκεκριμένες οδηγίες:\n")
			for _, inst := range feedback.SpecificInstructions {
				fmt.Fprintf(&sb, "- %s\n", inst)
			}
		}
		sb.WriteString("ΔΙΟΡΘΩΣΕ ΤΑ ΠΑΡΑΠΑΝΩ ΠΡΟΒΛΗΜΑΤΑ!\n")
	}

	sb.WriteString(`
ΟΔΗΓΙΕΣ ΠΑΡΑΓΩΓΗΣ:
1. Γράψε το ΠΛΗΡΕΣ άρθρο σε μία απάντηση
2. Χρησιμοποίησε σωστή μορφοποίηση Markdown
3. Διασφάλισε ότι ο αριθμός λέξεων είναι εντός ±15% του στόχου
4. Κάθε παράγραφος 2-3 προτάσεις
5. Συμπεριέλαβε την υπογραφή στο τέλος
6. Γ' ενικό πρόσωπο σε όλο το άρθρο

ΑΡΧΙΣΕ ΤΟ ΑΡΘΡΟ ΤΩΡΑ:`)

	return sb.String()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
