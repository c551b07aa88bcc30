// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Closed class sets used by the tag-extraction and opportunity stages.
// The completion service is instructed to choose from these; unknown values
// are passed through rather than rejected so a degraded artifact stays
// inspectable.
const (
	FrequencyCommon     = "common"
	FrequencyOccasional = "occasional"
	FrequencyRare       = "rare"

	ConfidenceLow    = "low"
	ConfidenceMedium = "medium"
	ConfidenceHigh   = "high"

	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SubredditSummary is the per-source synthesis produced by the first
// analysis stage. It is consumed by later stages only and never persisted
// on its own.
type SubredditSummary struct {
	Subreddit string `json:"subreddit"`
	Summary   string `json:"summary"`
	PostCount int    `json:"postCount"`
}

// PainPoint is one recurring user problem extracted from source text.
type PainPoint struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Quote       string `json:"quote,omitempty"`
	Permalink   string `json:"permalink,omitempty"`
	// Frequency is one of common, occasional, rare.
	Frequency string `json:"frequency"`
}

// Persona describes a user archetype referenced by extracted pain points.
type Persona struct {
	Role        string   `json:"role"`
	Description string   `json:"description"`
	PainPoints  []string `json:"painPoints"`
}

// Competitor is a product or tool mentioned in the harvested threads.
type Competitor struct {
	Name string `json:"name"`
	// Sentiment is one of positive, neutral, negative.
	Sentiment string `json:"sentiment"`
	Mentions  int    `json:"mentions"`
}

// WillingnessToPay aggregates signals that users would pay for a solution.
type WillingnessToPay struct {
	Signals []string `json:"signals"`
	// Confidence is one of low, medium, high.
	Confidence string `json:"confidence"`
}

// TagSet is the structured extraction produced by the second analysis stage.
// When the completion response fails to parse as JSON, the pipeline
// substitutes a zero TagSet with ParseError carrying the raw response so the
// run can complete with a visibly degraded artifact.
type TagSet struct {
	PainPoints       []PainPoint      `json:"painPoints"`
	Personas         []Persona        `json:"personas"`
	Urgency          string           `json:"urgency"`
	UrgencyRationale string           `json:"urgencyRationale"`
	Competitors      []Competitor     `json:"competitors"`
	WillingnessToPay WillingnessToPay `json:"willingnessToPay"`
	ParseError       string           `json:"parseError,omitempty"`
}

// SupportingQuote ties an opportunity claim back to a harvested thread.
// Permalink is null when the quote could not be attributed.
type SupportingQuote struct {
	Text      string  `json:"text"`
	Permalink *string `json:"permalink"`
}

// Opportunity is a structured, evidence-linked product idea produced by the
// third analysis stage.
type Opportunity struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	TargetUser          string            `json:"targetUser"`
	ProblemStatement    string            `json:"problemStatement"`
	CurrentWorkaround   string            `json:"currentWorkaround"`
	ProposedSolution    string            `json:"proposedSolution"`
	Confidence          string            `json:"confidence"`
	ConfidenceRationale string            `json:"confidenceRationale"`
	SupportingQuotes    []SupportingQuote `json:"supportingQuotes"`
	Risks               []string          `json:"risks"`
	MVPExperiment       string            `json:"mvpExperiment"`
}
