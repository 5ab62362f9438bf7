// Package export renders analyses to markdown files and Excel workbooks.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jperrin/job-set-match/internal/models"
)

// Markdown renders a full analysis document: frontmatter, the offer text,
// the analysis summary and the cover letter when one exists.
func Markdown(a *models.Analysis, now time.Time) string {
	today := now.Format("2006-01-02")

	frontmatter := fmt.Sprintf(`---
link: -
sourcing: -
status: applied
applied: %s
updated: %s
---
`, today, today)

	coverLetter := ""
	if a.CoverLetter != nil {
		coverLetter = a.CoverLetter.Content
	}

	return fmt.Sprintf("%s\n%s\n\n# Analyse\n%s\n\n# Lettre de motivation\n%s",
		frontmatter, a.OfferContent, Summary(a), coverLetter)
}

// Summary renders the analysis sections as markdown, in French, in the
// order they are reviewed: offer summary, career fit, profile match,
// success probability, strategic recommendations.
func Summary(a *models.Analysis) string {
	var b strings.Builder

	b.WriteString("### Résumé de l'offre\n")
	fmt.Fprintf(&b, "**Poste**: %s\n", a.JobSummary.JobTitle)
	fmt.Fprintf(&b, "**Entreprise**: %s\n", a.JobSummary.JobCompany)
	fmt.Fprintf(&b, "**Localisation**: %s\n", a.JobSummary.JobLocation)
	fmt.Fprintf(&b, "**Aperçu**: %s\n", a.JobSummary.JobOverview)
	b.WriteString(bulletSection("Facteurs de risque pour le recrutement", a.JobSummary.FailureFactors()))
	b.WriteString(bulletSection("Analyses des pain points", a.JobSummary.PainPoints()))

	b.WriteString("\n### Intérêt pour votre carrière\n")
	b.WriteString(bulletSection("Analyse", a.CareerFitAnalysis.CareerAnalysis))
	fmt.Fprintf(&b, "**Note**: %g\n", a.CareerFitAnalysis.CareerDevelopmentRating)

	b.WriteString("\n### Adéquation du profil\n")
	b.WriteString(bulletSection("Analyse", a.ProfileMatchAssessment.ProfileMatchAnalysis))
	fmt.Fprintf(&b, "**Note**: %g\n", a.ProfileMatchAssessment.MatchCompatibilityRating)

	b.WriteString("\n### Probabilité de succès\n")
	b.WriteString(bulletSection("Analyse", a.CompetitiveProfile.CompetitiveAnalysis))
	fmt.Fprintf(&b, "**Note**: %g\n", a.CompetitiveProfile.SuccessProbabilityRating)

	b.WriteString("\n### Recommandations stratégiques\n")
	b.WriteString("**Dois-je candidater à cette offre?**\n")
	decision := "❌ non"
	if a.StrategicRecommendations.ShouldApply.Decision {
		decision = "✅ oui"
	}
	fmt.Fprintf(&b, "%s - %g/10\n", decision, a.StrategicRecommendations.ShouldApply.ChanceRating)
	fmt.Fprintf(&b, "%s\n", a.StrategicRecommendations.ShouldApply.Explanation)
	b.WriteString(bulletSection("Points clés de l'offre", a.StrategicRecommendations.KeyPoints()))
	b.WriteString(bulletSection("Points clés de mon profil", a.StrategicRecommendations.MatchingPoints()))
	b.WriteString(bulletSection("Mots-clés à utiliser", a.StrategicRecommendations.KeyWords()))
	b.WriteString("**Étapes de préparation**\n")
	fmt.Fprintf(&b, "%s\n", a.StrategicRecommendations.PreparationSteps)
	fmt.Fprintf(&b, "%s\n", a.StrategicRecommendations.InterviewFocusAreas)

	return b.String()
}

func bulletSection(title string, items []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#### %s\n", title)
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}
