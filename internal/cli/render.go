package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/centime-app/centime/internal/model"
)

// confidenceStyle picks the style matching a confidence level.
func confidenceStyle(confidence float64) func(...string) string {
	switch {
	case confidence >= 0.8:
		return SuccessStyle.Render
	case confidence >= 0.5:
		return WarningStyle.Render
	default:
		return ErrorStyle.Render
	}
}

// confidenceBar renders a ten-segment bar like "████████░░ 80%".
func confidenceBar(confidence float64) string {
	filled := int(confidence*10 + 0.5)
	if filled > 10 {
		filled = 10
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	return fmt.Sprintf("%s %3.0f%%", bar, confidence*100)
}

// RenderClassification renders one classification decision.
func RenderClassification(label string, result model.ClassificationResult) string {
	var b strings.Builder

	styled := confidenceStyle(result.Confidence)

	b.WriteString(BoldStyle.Render(label) + "\n")
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "type:", string(result.ExpenseType)))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "tag:", result.SuggestedTag))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "confidence:", styled(confidenceBar(result.Confidence))))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "reason:", string(result.PrimaryReason)))

	if result.AutoApply {
		b.WriteString("  " + FormatSuccess("auto-apply") + "\n")
	} else {
		b.WriteString("  " + SubtleStyle.Render("needs review") + "\n")
	}

	if len(result.AlternativeTags) > 0 {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", "also:", strings.Join(result.AlternativeTags, ", ")))
	}
	if result.Explanation != "" {
		b.WriteString("  " + SubtleStyle.Render(result.Explanation) + "\n")
	}

	return b.String()
}

// RenderFactors renders the contributing factors as an indented list.
func RenderFactors(result model.ClassificationResult) string {
	if len(result.ContributingFactors) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(SubtleStyle.Render("contributing factors:") + "\n")
	for _, factor := range result.ContributingFactors {
		b.WriteString("  - " + factor + "\n")
	}
	return b.String()
}

// RenderPatterns renders the learned patterns as a table, strongest first.
func RenderPatterns(patterns []model.FeedbackPattern) string {
	if len(patterns) == 0 {
		return SubtleStyle.Render("No learned patterns yet. Corrections teach the classifier.") + "\n"
	}

	sorted := make([]model.FeedbackPattern, len(patterns))
	copy(sorted, patterns)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].MerchantKey < sorted[j].MerchantKey
	})

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-30s %-16s %-9s %11s %6s", "merchant", "tag", "type", "confidence", "uses")))
	b.WriteString("\n")
	for _, p := range sorted {
		styled := confidenceStyle(p.Confidence)
		b.WriteString(fmt.Sprintf("%-30s %-16s %-9s %11s %6d\n",
			truncate(p.MerchantKey, 30),
			truncate(p.Tag, 16),
			string(p.ExpenseType),
			styled(fmt.Sprintf("%.2f", p.Confidence)),
			p.UseCount,
		))
	}
	return b.String()
}

// RenderStats renders the learning statistics summary.
func RenderStats(stats model.LearningStats) string {
	content := fmt.Sprintf(
		"learned patterns:        %d\nhigh confidence (>0.85): %d\naverage confidence:      %.2f\npenalized outputs:       %d",
		stats.TotalPatterns,
		stats.HighConfidencePatterns,
		stats.AverageConfidence,
		stats.CorrectionPenaltyCount,
	)
	return RenderBox("Learning statistics", content)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
