package interpreter

import (
	"sort"
	"strings"

	"lifeos/internal/domain/calendar"
)

// Result is one candidate (domain, record_type) classification for a
// calendar event.
type Result struct {
	Domain        string
	RecordType    string
	Confidence    float64
	ExtractedData map[string]any
}

// Classifier applies the static rule table to free-text calendar events.
type Classifier struct {
	rules []classificationRule
}

func NewClassifier() *Classifier {
	return &Classifier{rules: classificationRules}
}

// ClassifyEvent scores the event against every rule and returns at most
// the top 3 results with confidence >= 0.5, highest first.
func (c *Classifier) ClassifyEvent(e calendar.Event) []Result {
	blob := strings.ToLower(strings.Join([]string{e.Title, e.Description, e.Location}, " "))
	location := strings.ToLower(e.Location)
	duration, hasDuration := e.DurationMinutes()

	var results []Result
	for _, rule := range c.rules {
		keyword := rule.Keywords.FindString(blob)
		if keyword == "" {
			continue
		}

		confidence := rule.BaseConfidence
		extracted := map[string]any{
			"matched_keyword": keyword,
		}

		if rule.LocationKeywords != nil && location != "" && rule.LocationKeywords.MatchString(location) {
			confidence += locationBoost
		}

		if rule.PersonPattern != nil {
			if m := rule.PersonPattern.FindStringSubmatch(e.Title); m != nil {
				extracted["person_name"] = m[1]
				confidence += personBoost
			}
		}

		if confidence > 1.0 {
			confidence = 1.0
		}

		if hasDuration {
			extracted["duration_minutes"] = duration
		}
		if e.Location != "" {
			extracted["location"] = e.Location
		}

		if confidence < InclusionThreshold {
			continue
		}
		results = append(results, Result{
			Domain:        rule.Domain,
			RecordType:    rule.RecordType,
			Confidence:    confidence,
			ExtractedData: extracted,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
