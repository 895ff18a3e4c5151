package interpreter

import "regexp"

// classificationRule tests one (domain, record_type) target against the
// event text. Base confidences are hand-tuned; the boost constants are
// pinned by tests, so treat any change here as a behavior change.
type classificationRule struct {
	Domain           string
	RecordType       string
	BaseConfidence   float64
	Keywords         *regexp.Regexp
	LocationKeywords *regexp.Regexp
	PersonPattern    *regexp.Regexp
}

const (
	// InclusionThreshold keeps a classification result.
	InclusionThreshold = 0.5
	// AutoCreateThreshold additionally triggers the domain adapter.
	AutoCreateThreshold = 0.7
	// maxResults caps classifications per calendar event.
	maxResults = 3

	locationBoost = 0.1
	personBoost   = 0.15
)

func keywordPattern(alternation string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + alternation + `)\b`)
}

// personPattern extracts a capitalized name following a contact word. It
// runs against the raw title only, never the lowercased blob.
var personPattern = regexp.MustCompile(`(?:with|meeting|call|visit)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)

// classificationRules is the static rule table, in evaluation order.
var classificationRules = []classificationRule{
	{
		Domain:           "health",
		RecordType:       "workout",
		BaseConfidence:   0.8,
		Keywords:         keywordPattern(`gym|workout|training|exercise|run|running|jog|yoga|swim|swimming|lift|lifting|cardio|pilates|spin|crossfit`),
		LocationKeywords: keywordPattern(`gym|fitness|studio|court|pool|track|crossfit`),
	},
	{
		Domain:           "health",
		RecordType:       "meal",
		BaseConfidence:   0.7,
		Keywords:         keywordPattern(`breakfast|brunch|lunch|dinner|meal|restaurant|eat|eating|snack`),
		LocationKeywords: keywordPattern(`restaurant|cafe|diner|bistro|grill|kitchen`),
	},
	{
		Domain:           "skills",
		RecordType:       "practice",
		BaseConfidence:   0.7,
		Keywords:         keywordPattern(`practice|practise|lesson|class|course|study|studying|tutorial|rehearsal|drill`),
		LocationKeywords: keywordPattern(`school|academy|studio|conservatory`),
	},
	{
		Domain:         "relationships",
		RecordType:     "interaction",
		BaseConfidence: 0.65,
		Keywords:       keywordPattern(`coffee|dinner|lunch|drinks|meeting|meet|call|visit|date|hangout|party|birthday`),
		PersonPattern:  personPattern,
	},
	{
		Domain:         "projects",
		RecordType:     "work_session",
		BaseConfidence: 0.65,
		Keywords:       keywordPattern(`sprint|project|coding|deploy|hackathon|standup|retro|planning|review`),
	},
	{
		Domain:           "finance",
		RecordType:       "transaction",
		BaseConfidence:   0.6,
		Keywords:         keywordPattern(`pay|payment|bill|bills|invoice|rent|purchase|buy|shopping|bank|tax|taxes`),
		LocationKeywords: keywordPattern(`store|mall|market|bank`),
	},
	{
		Domain:         "habits",
		RecordType:     "habit_log",
		BaseConfidence: 0.6,
		Keywords:       keywordPattern(`meditate|meditation|journal|journaling|read|reading|stretch|stretching|routine|habit|walk|walking`),
	},
}
