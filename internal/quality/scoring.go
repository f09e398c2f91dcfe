package quality

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
)

// Default gate thresholds. A total score at or above the pass threshold
// passes unless the word count deviation falls at or below the fail
// threshold (too-short articles fail regardless of score).
const (
	DefaultPassThreshold          = 80
	DefaultWordCountFailThreshold = -15.0
)

var (
	markdownSyntaxRe = regexp.MustCompile("[#*_`\\[\\]()]")
	successRangeRe   = regexp.MustCompile(`\d{1,2}-\d{1,2}%`)
	absoluteClaimRe  = regexp.MustCompile(`\d{1,2}% επιτυχία`)

	h1HeaderRe = regexp.MustCompile(`(?m)^#[^#]`)
	h2HeaderRe = regexp.MustCompile(`(?m)^##[^#]`)
	boldTextRe = regexp.MustCompile(`\*\*[^*]+\*\*`)
	listItemRe = regexp.MustCompile(`(?m)^[-*+]\s`)
)

type EngineConfig struct {
	// PassThreshold is taken literally; zero admits any score. Use
	// DefaultEngineConfig for the standard gate.
	PassThreshold          int
	WordCountFailThreshold float64
	Lexicon                *Lexicon
}

// DefaultEngineConfig returns the standard gate: pass at 80, fail
// below -15% word count deviation.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PassThreshold:          DefaultPassThreshold,
		WordCountFailThreshold: DefaultWordCountFailThreshold,
	}
}

// Engine scores article quality across four categories and applies
// flat penalties for critical violations. It is deterministic: the
// same content and target always produce the same evaluation.
type Engine struct {
	passThreshold          int
	wordCountFailThreshold float64
	lex                    *Lexicon
	explainRes             []*regexp.Regexp
	logger                 *zap.Logger
}

func NewEngine(cfg EngineConfig, logger *zap.Logger) *Engine {
	if cfg.Lexicon == nil {
		cfg.Lexicon = GreekMedical()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	explainRes := make([]*regexp.Regexp, len(cfg.Lexicon.ExplainableTerms))
	for i, term := range cfg.Lexicon.ExplainableTerms {
		explainRes[i] = regexp.MustCompile(regexp.QuoteMeta(term) + `.*?\([^)]+\)`)
	}

	return &Engine{
		passThreshold:          cfg.PassThreshold,
		wordCountFailThreshold: cfg.WordCountFailThreshold,
		lex:                    cfg.Lexicon,
		explainRes:             explainRes,
		logger:                 logger,
	}
}

// EvaluateArticle scores one article attempt against its word target.
func (e *Engine) EvaluateArticle(content string, targetWordCount int, topic string, retryCount int) domain.Evaluation {
	actual := CountWords(content)
	deviation := WordCountDeviation(actual, targetWordCount)

	breakdown := domain.ScoreBreakdown{
		VoiceConsistency: e.scoreVoice(content),
		StructureQuality: e.scoreStructure(content),
		MedicalAccuracy:  e.scoreMedical(content),
		SEOTechnical:     e.scoreSEO(content, targetWordCount),
	}

	critical := e.detectCriticalIssues(content, deviation)
	total := applyCriticalPenalties(breakdown.Total(), critical)

	ev := domain.Evaluation{
		TotalScore:         total,
		Breakdown:          breakdown,
		WordCountActual:    actual,
		WordCountTarget:    targetWordCount,
		WordCountDeviation: deviation,
		CriticalIssues:     critical,
		Improvements:       improvements(breakdown, critical),
		RetryCount:         retryCount,
	}
	ev.DeterminePassStatus(e.passThreshold, e.wordCountFailThreshold)

	e.logger.Info("article evaluated",
		zap.String("topic", topic),
		zap.Int("score", total),
		zap.Bool("passes", ev.PassesQualityGate),
		zap.Int("words", actual),
		zap.Int("retry", retryCount))

	return ev
}

// CountWords counts words after stripping markdown syntax characters.
func CountWords(content string) int {
	text := markdownSyntaxRe.ReplaceAllString(content, "")
	return len(strings.Fields(text))
}

// WordCountDeviation returns the deviation from target in percent.
// Negative means the article is short.
func WordCountDeviation(actual, target int) float64 {
	if target == 0 {
		return 0.0
	}
	return float64(actual-target) / float64(target) * 100
}

// scoreVoice checks voice consistency (0-25).
func (e *Engine) scoreVoice(content string) int {
	score := 25
	lower := strings.ToLower(content)

	if countOccurrences(lower, e.lex.ThirdPerson) < 3 {
		score -= 5
	}
	if countOccurrences(lower, e.lex.FirstPerson) > 0 {
		score = max(0, score-10)
	}
	if countOccurrences(lower, e.lex.Professional) < 2 {
		score = max(0, score-4)
	}
	switch mentions := countOccurrences(lower, e.lex.Credentials); {
	case mentions == 0:
		score = max(0, score-4)
	case mentions > 2:
		score = max(0, score-2)
	}
	if countOccurrences(lower, e.lex.Emotional) > 0 {
		score = max(0, score-3)
	}

	return clampScore(score, domain.MaxVoiceScore)
}

// scoreStructure checks structure quality (0-25).
func (e *Engine) scoreStructure(content string) int {
	score := 25

	flowScore := checkLogicalFlow(extractSections(content), e.lex.SectionFlow)
	score = max(0, score-(10-flowScore))
	score = max(0, score-repetitionPenalty(content))
	score = max(0, score-paragraphLengthPenalty(content))
	score = max(0, score-transitionPenalty(content))

	return clampScore(score, domain.MaxStructureScore)
}

// scoreMedical checks medical accuracy conventions (0-30).
func (e *Engine) scoreMedical(content string) int {
	score := 30
	lower := strings.ToLower(content)

	if !successRangeRe.MatchString(content) {
		score = max(0, score-5)
	}
	if absoluteClaimRe.MatchString(lower) {
		score = max(0, score-3)
	}
	if countOccurrences(lower, e.lex.Variability) < 2 {
		score = max(0, score-4)
	}
	score = max(0, score-e.contradictionPenalty(lower))
	score = max(0, score-e.explanationPenalty(lower))

	return clampScore(score, domain.MaxMedicalScore)
}

// scoreSEO checks SEO and formatting mechanics (0-20).
func (e *Engine) scoreSEO(content string, targetWordCount int) int {
	score := 20

	score = max(0, score-h1Penalty(content)-firstParagraphPenalty(content))
	score = max(0, score-keywordDistributionPenalty(content))
	score = max(0, score-markdownPenalty(content))
	score = max(0, score-wordCountPenalty(CountWords(content), targetWordCount))

	return clampScore(score, domain.MaxSEOScore)
}

// extractSections returns lowercased H2 titles, skipping H3 and deeper.
func extractSections(content string) []string {
	var sections []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "##") && !strings.HasPrefix(line, "###") {
			title := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(line, "##", "")))
			sections = append(sections, title)
		}
	}
	return sections
}

// checkLogicalFlow scores section ordering (0-10). Each expected
// keyword found out of order costs 2 points.
func checkLogicalFlow(sections, expected []string) int {
	score := 10
	indices := make(map[string]int)

	for i, section := range sections {
		for _, exp := range expected {
			if strings.Contains(section, exp) {
				indices[exp] = i
				break
			}
		}
	}

	prev := -1
	for _, exp := range expected {
		idx, ok := indices[exp]
		if !ok {
			continue
		}
		if idx < prev {
			score -= 2
		}
		prev = idx
	}

	return max(0, score)
}

// repetitionPenalty penalizes duplicated sentences (0-8).
func repetitionPenalty(content string) int {
	sentences := strings.Split(content, ".")
	unique := make(map[string]struct{})
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		unique[strings.ToLower(s)] = struct{}{}
	}

	ratio := 1 - float64(len(unique))/float64(len(sentences))
	if ratio > 0.1 {
		return min(8, int(ratio*40))
	}
	return 0
}

// paragraphLengthPenalty flags paragraphs outside the 2-5 sentence
// range (0-4).
func paragraphLengthPenalty(content string) int {
	penalty := 0
	for _, p := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		count := 0
		for _, s := range strings.Split(p, ".") {
			if strings.TrimSpace(s) != "" {
				count++
			}
		}
		if count > 5 || count < 2 {
			penalty++
		}
	}
	return min(4, penalty)
}

// transitionPenalty flags sections whose heading text sits on the
// marker line instead of opening with a line break (0-3).
func transitionPenalty(content string) int {
	penalty := 0
	for _, section := range strings.Split(content, "##")[1:] {
		if !strings.HasPrefix(section, "\n") {
			penalty++
		}
	}
	return min(3, penalty)
}

// contradictionPenalty charges 2 points per contradicting claim pair
// present in the same article (0-8).
func (e *Engine) contradictionPenalty(lower string) int {
	penalty := 0
	for _, pair := range e.lex.Contradictions {
		if strings.Contains(lower, pair[0]) && strings.Contains(lower, pair[1]) {
			penalty += 2
		}
	}
	return min(8, penalty)
}

// explanationPenalty checks that at least half of the medical terms
// present carry a parenthesized explanation (0-4).
func (e *Engine) explanationPenalty(lower string) int {
	explained, present := 0, 0
	for i, term := range e.lex.ExplainableTerms {
		if !strings.Contains(lower, term) {
			continue
		}
		present++
		if e.explainRes[i].MatchString(lower) {
			explained++
		}
	}
	if present == 0 {
		return 0
	}

	ratio := float64(explained) / float64(present)
	if ratio < 0.5 {
		return min(4, int((0.5-ratio)*8))
	}
	return 0
}

// h1Penalty charges 3 points when the H1 is missing or too short to
// hold a keyword.
func h1Penalty(content string) int {
	var h1 string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "##") {
			h1 = line
			break
		}
	}
	if h1 == "" || utf8.RuneCountInString(strings.TrimSpace(h1)) < 10 {
		return 3
	}
	return 0
}

// firstParagraphPenalty charges 3 points when the lead paragraph is
// missing or too short to hold a keyword.
func firstParagraphPenalty(content string) int {
	for _, p := range strings.Split(content, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) < 50 {
			return 3
		}
		return 0
	}
	return 3
}

// keywordDistributionPenalty charges 2 points when there are too few
// sections to distribute keywords over.
func keywordDistributionPenalty(content string) int {
	if len(strings.Split(content, "##"))-1 < 3 {
		return 2
	}
	return 0
}

// markdownPenalty charges 1 point per missing formatting element:
// H1, H2, bold text, lists (0-4).
func markdownPenalty(content string) int {
	penalty := 0
	if !h1HeaderRe.MatchString(content) {
		penalty++
	}
	if !h2HeaderRe.MatchString(content) {
		penalty++
	}
	if !boldTextRe.MatchString(content) {
		penalty++
	}
	if !listItemRe.MatchString(content) {
		penalty++
	}
	return penalty
}

// wordCountPenalty maps absolute deviation bands to penalties (0-6).
func wordCountPenalty(actual, target int) int {
	if target == 0 {
		return 0
	}

	deviation := math.Abs(float64(actual-target)) / float64(target)
	switch {
	case deviation <= 0.05:
		return 0
	case deviation <= 0.10:
		return 1
	case deviation <= 0.15:
		return 2
	case deviation <= 0.20:
		return 4
	default:
		return 6
	}
}

// detectCriticalIssues finds violations that carry flat penalties on
// top of category deductions or force an automatic fail.
func (e *Engine) detectCriticalIssues(content string, deviation float64) []string {
	var issues []string
	lower := strings.ToLower(content)

	if containsAny(lower, e.lex.FirstPerson) {
		issues = append(issues, "Α' ενικό usage detected (forbidden voice)")
	}
	if containsAny(lower, e.lex.EmotionalStories) {
		issues = append(issues, "Emotional stories detected (forbidden pattern)")
	}
	if !containsAny(lower, e.lex.VariabilityCore) {
		issues = append(issues, "Missing variability disclaimers")
	}
	if deviation < e.wordCountFailThreshold {
		issues = append(issues, fmt.Sprintf("Word count critically low (%.1f%% below target)", deviation))
	}

	return issues
}

// applyCriticalPenalties deducts flat penalties per critical issue,
// on top of any category points already lost for the same text.
func applyCriticalPenalties(score int, issues []string) int {
	for _, issue := range issues {
		switch {
		case strings.Contains(issue, "Α' ενικό"):
			score -= 10
		case strings.Contains(issue, "Emotional stories"):
			score -= 8
		case strings.Contains(issue, "variability disclaimers"):
			score -= 8
		}
	}
	return max(0, score)
}

func improvements(b domain.ScoreBreakdown, critical []string) []string {
	var out []string

	if b.VoiceConsistency < 20 {
		out = append(out,
			"Ensure consistent use of Γ' ενικό (third person) throughout",
			"Remove any first person references (εγώ, μου, etc.)")
	}
	if b.StructureQuality < 20 {
		out = append(out,
			"Improve logical flow: Ανατομία → Συμπτώματα → Θεραπεία",
			"Keep paragraphs to 2-3 sentences for better readability")
	}
	if b.MedicalAccuracy < 24 {
		out = append(out,
			"Use success rate ranges (75-85%) instead of exact percentages",
			"Add more variability disclaimers and individual differences")
	}
	if b.SEOTechnical < 16 {
		out = append(out,
			"Ensure main keyword appears in H1 and first paragraph",
			"Improve markdown formatting with proper headers and bold text")
	}

	for _, issue := range critical {
		if strings.Contains(issue, "Word count") {
			out = append(out, "Significantly expand content to meet minimum word count requirements")
		}
	}

	return out
}

func clampScore(v, ceiling int) int {
	return max(0, min(ceiling, v))
}
