package models

import (
	"encoding/json"
	"fmt"
)

// JobSummary describes the offer itself
type JobSummary struct {
	JobTitle              string   `json:"jobTitle"`
	JobCompany            string   `json:"jobCompany"`
	JobLocation           string   `json:"jobLocation"`
	JobOverview           string   `json:"jobOverview"`
	JobFailureFactors     []string `json:"jobFailureFactors"`
	JobPainPointsAnalysis []string `json:"jobPainPointsAnalysis"`
}

// CareerFitAnalysis evaluates the offer against the candidate's trajectory
type CareerFitAnalysis struct {
	CareerAnalysis          []string `json:"careerAnalysis"`
	CareerDevelopmentRating float64  `json:"careerDevelopmentRating"`
}

// ProfileMatchAssessment compares qualifications to requirements
type ProfileMatchAssessment struct {
	ProfileMatchAnalysis     []string `json:"profileMatchAnalysis"`
	MatchCompatibilityRating float64  `json:"matchCompatibilityRating"`
}

// CompetitiveProfile assesses how the candidate can stand out
type CompetitiveProfile struct {
	CompetitiveAnalysis      []string `json:"competitiveAnalysis"`
	SuccessProbabilityRating float64  `json:"successProbabilityRating"`
}

// ShouldApply is the model's application recommendation
type ShouldApply struct {
	Decision     bool    `json:"decision"`
	Explanation  string  `json:"explanation"`
	ChanceRating float64 `json:"chanceRating"`
}

// StrategicRecommendations holds application strategy guidance
type StrategicRecommendations struct {
	ShouldApply               ShouldApply `json:"shouldApply"`
	KeyPointsInJobOffer       []string    `json:"keyPointsInJobOffer"`
	MatchingPointsWithProfile []string    `json:"matchingPointsWithProfile"`
	KeyWordsToUse             []string    `json:"keyWordsToUse"`
	PreparationSteps          string      `json:"preparationSteps"`
	InterviewFocusAreas       string      `json:"interviewFocusAreas"`
}

// CoverLetter is a generated cover letter with its cost metadata
type CoverLetter struct {
	Content        string  `json:"content"`
	GeneratedAt    string  `json:"generated_at"`
	GenerationCost float64 `json:"generation_cost"`
}

// Analysis is one analyzed offer: the structured LLM payload plus the
// envelope fields this application maintains.
type Analysis struct {
	JobSummary               JobSummary               `json:"jobSummary"`
	CareerFitAnalysis        CareerFitAnalysis        `json:"careerFitAnalysis"`
	ProfileMatchAssessment   ProfileMatchAssessment   `json:"profileMatchAssessment"`
	CompetitiveProfile       CompetitiveProfile       `json:"competitiveProfile"`
	StrategicRecommendations StrategicRecommendations `json:"strategicRecommendations"`
	OfferContent             string                   `json:"offerContent"`

	FileName     string       `json:"file_name"`
	NoteTotal    float64      `json:"note_total"`
	AnalysisCost float64      `json:"analysis_cost"`
	Forget       bool         `json:"forget"`
	CoverLetter  *CoverLetter `json:"cover_letter"`
}

// requiredSections are the top-level keys every LLM response must carry.
var requiredSections = []string{
	"jobSummary",
	"careerFitAnalysis",
	"profileMatchAssessment",
	"competitiveProfile",
	"strategicRecommendations",
}

// ParseAnalysis decodes an LLM JSON response and verifies the five required
// top-level sections are present. Missing optional fields decode to zero
// values and are covered by the accessor defaults below.
func ParseAnalysis(data []byte) (*Analysis, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis JSON: %w", err)
	}

	for _, key := range requiredSections {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("analysis response missing required section %q", key)
		}
	}

	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis JSON: %w", err)
	}
	return &a, nil
}

// ComputeNoteTotal sums the four component ratings: career development,
// match compatibility, success probability and the should-apply chance
// rating.
func (a *Analysis) ComputeNoteTotal() float64 {
	return a.CareerFitAnalysis.CareerDevelopmentRating +
		a.ProfileMatchAssessment.MatchCompatibilityRating +
		a.CompetitiveProfile.SuccessProbabilityRating +
		a.StrategicRecommendations.ShouldApply.ChanceRating
}

// FailureFactors returns the hiring risk factors, with a placeholder when
// the model omitted them.
func (s JobSummary) FailureFactors() []string {
	if len(s.JobFailureFactors) == 0 {
		return []string{"Aucun facteur identifié"}
	}
	return s.JobFailureFactors
}

// PainPoints returns the pain-point analysis, with a placeholder when the
// model omitted it.
func (s JobSummary) PainPoints() []string {
	if len(s.JobPainPointsAnalysis) == 0 {
		return []string{"//"}
	}
	return s.JobPainPointsAnalysis
}

// KeyPoints returns the key offer points, never empty.
func (r StrategicRecommendations) KeyPoints() []string {
	if len(r.KeyPointsInJobOffer) == 0 {
		return []string{"Aucun"}
	}
	return r.KeyPointsInJobOffer
}

// MatchingPoints returns the profile matching points, never empty.
func (r StrategicRecommendations) MatchingPoints() []string {
	if len(r.MatchingPointsWithProfile) == 0 {
		return []string{"Aucun"}
	}
	return r.MatchingPointsWithProfile
}

// KeyWords returns the cover-letter keywords, never empty.
func (r StrategicRecommendations) KeyWords() []string {
	if len(r.KeyWordsToUse) == 0 {
		return []string{"Aucun"}
	}
	return r.KeyWordsToUse
}
