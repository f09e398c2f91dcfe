package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akoutras/medpress/internal/domain"
	"github.com/akoutras/medpress/internal/markdown"
	"github.com/akoutras/medpress/internal/quality"
	"github.com/akoutras/medpress/internal/rules"
	"github.com/akoutras/medpress/internal/service"
)

var (
	reviewTarget    int
	reviewRulesPath string
)

var reviewCmd = &cobra.Command{
	Use:   "review FILE",
	Short: "Evaluate a local markdown article offline",
	Long: `review runs the deterministic quality gate and the editorial rule
validator against a markdown file without any network access.

Examples:
  medpress review article.md
  medpress review --target 2000 --rules rules.yaml article.md`,
	Args:         cobra.ExactArgs(1),
	RunE:         runReview,
	SilenceUsage: true,
}

func init() {
	reviewCmd.Flags().IntVar(&reviewTarget, "target", 0, "Word count target (default: the article's own count)")
	reviewCmd.Flags().StringVar(&reviewRulesPath, "rules", "", "Editorial rules YAML file")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read article: %w", err)
	}
	content := string(raw)

	var ruleSet domain.RuleSet
	if reviewRulesPath != "" {
		ruleSet, err = rules.NewFileSource(reviewRulesPath).Load()
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
	}

	evaluator, err := service.NewEvaluator(service.EvaluatorDeps{
		Rules:  ruleSet,
		Logger: zap.NewNop(),
	})
	if err != nil {
		return fmt.Errorf("build evaluator: %w", err)
	}

	outline := markdown.Parse(content)
	topic := outline.Title
	if topic == "" {
		topic = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}

	target := reviewTarget
	if target <= 0 {
		target = max(quality.CountWords(content), 1)
	}

	combined := evaluator.EvaluateCombined(cmd.Context(), content, target, topic, 0)
	printReport(topic, target, combined)

	if !combined.AIPasses {
		return fmt.Errorf("quality gate failed with score %d", combined.Evaluation.TotalScore)
	}
	return nil
}

func printReport(topic string, target int, c domain.CombinedEvaluation) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	bold.Printf("%s\n\n", topic)

	scoreColor := red
	switch {
	case c.CombinedScore >= 85:
		scoreColor = green
	case c.CombinedScore >= 70:
		scoreColor = yellow
	}
	fmt.Print("Combined score:  ")
	scoreColor.Printf("%d/100\n", c.CombinedScore)
	fmt.Printf("Engine score:    %d/100\n", c.Evaluation.TotalScore)
	fmt.Printf("Pattern score:   %d/100\n", c.ValidationScore)
	fmt.Printf("Recommendation:  %s\n\n", c.Recommendation.Describe())

	b := c.Evaluation.Breakdown
	fmt.Printf("  Voice       %2d/%d\n", b.VoiceConsistency, domain.MaxVoiceScore)
	fmt.Printf("  Structure   %2d/%d\n", b.StructureQuality, domain.MaxStructureScore)
	fmt.Printf("  Medical     %2d/%d\n", b.MedicalAccuracy, domain.MaxMedicalScore)
	fmt.Printf("  SEO         %2d/%d\n", b.SEOTechnical, domain.MaxSEOScore)

	fmt.Printf("\nWords: %d (target %d, %+.1f%%)\n",
		c.Evaluation.WordCountActual, target, c.Evaluation.WordCountDeviation)

	if len(c.Evaluation.CriticalIssues) > 0 {
		red.Println("\nCritical issues:")
		for _, issue := range c.Evaluation.CriticalIssues {
			fmt.Printf("  - %s\n", issue)
		}
	}
	if len(c.Evaluation.Improvements) > 0 {
		yellow.Println("\nImprovements:")
		for _, imp := range c.Evaluation.Improvements {
			fmt.Printf("  - %s\n", imp)
		}
	}
	if len(c.Validation.ViolatedAntiPatterns) > 0 {
		red.Println("\nRule violations:")
		for _, v := range c.Validation.ViolatedAntiPatterns {
			fmt.Printf("  - %s\n", v)
		}
		for _, fix := range c.Validation.SuggestedFixes {
			yellow.Printf("    fix: %s\n", fix)
		}
	}

	fmt.Println()
	if c.AIPasses && c.PatternValid {
		green.Println("PASS")
	} else {
		red.Println("FAIL")
	}
}
