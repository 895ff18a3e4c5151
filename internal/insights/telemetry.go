package insights

import (
	"sync"
	"time"
)

const recentEventLimit = 50

// Telemetry holds process-wide counters for the insight pipeline and the
// inference feedback loop. It is initialized at process start, mutated in
// place, and reset only by an explicit call (tests, ops). Nothing here is
// persisted.
type Telemetry struct {
	mu sync.Mutex

	eventsProcessed    int64
	eventsWithInsights int64
	ruleStats          map[string]*ruleStats

	falsePositives int64
	falseNegatives int64
	perDomainFP    map[string]int64
	perDomainFN    map[string]int64
	perModelFP     map[string]int64
	perModelFN     map[string]int64

	recent []RecentEvent
}

type ruleStats struct {
	count        int64
	produced     int64
	totalLatency time.Duration
}

// RecentEvent is one entry of the bounded recent-event ring buffer.
type RecentEvent struct {
	EventType    string    `json:"event_type"`
	InsightCount int       `json:"insight_count"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// RuleSnapshot is the exported view of one rule's counters.
type RuleSnapshot struct {
	Count          int64   `json:"count"`
	Produced       int64   `json:"produced"`
	TotalLatencyMs float64 `json:"total_latency_ms"`
}

// Snapshot is a point-in-time copy of all counters, shaped for the debug
// endpoint's JSON dump.
type Snapshot struct {
	EventsProcessed         int64                   `json:"events_processed"`
	EventsWithInsights      int64                   `json:"events_with_insights"`
	Rules                   map[string]RuleSnapshot `json:"rules"`
	FalsePositives          int64                   `json:"false_positives"`
	FalseNegatives          int64                   `json:"false_negatives"`
	PerDomainFalsePositives map[string]int64        `json:"per_domain_false_positives"`
	PerDomainFalseNegatives map[string]int64        `json:"per_domain_false_negatives"`
	PerModelFalsePositives  map[string]int64        `json:"per_model_false_positives"`
	PerModelFalseNegatives  map[string]int64        `json:"per_model_false_negatives"`
	RecentEvents            []RecentEvent           `json:"recent_events"`
}

func NewTelemetry() *Telemetry {
	t := &Telemetry{}
	t.reset()
	return t
}

func (t *Telemetry) reset() {
	t.eventsProcessed = 0
	t.eventsWithInsights = 0
	t.ruleStats = make(map[string]*ruleStats)
	t.falsePositives = 0
	t.falseNegatives = 0
	t.perDomainFP = make(map[string]int64)
	t.perDomainFN = make(map[string]int64)
	t.perModelFP = make(map[string]int64)
	t.perModelFN = make(map[string]int64)
	t.recent = nil
}

// Reset clears every counter. Explicit callers only.
func (t *Telemetry) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
}

// RecordEvent counts one delivered event and appends it to the recent-event
// ring buffer.
func (t *Telemetry) RecordEvent(eventType string, insightCount int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.eventsProcessed++
	if insightCount > 0 {
		t.eventsWithInsights++
	}
	t.recent = append(t.recent, RecentEvent{
		EventType:    eventType,
		InsightCount: insightCount,
		ProcessedAt:  time.Now(),
	})
	if len(t.recent) > recentEventLimit {
		t.recent = t.recent[len(t.recent)-recentEventLimit:]
	}
}

// RecordRule counts one rule invocation and its latency.
func (t *Telemetry) RecordRule(name string, produced int, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats, ok := t.ruleStats[name]
	if !ok {
		stats = &ruleStats{}
		t.ruleStats[name] = stats
	}
	stats.count++
	stats.produced += int64(produced)
	stats.totalLatency += latency
}

// RecordInference books false-positive/false-negative flags for one emitted
// inference event, bucketed by domain and model version.
func (t *Telemetry) RecordInference(domain, modelVersion string, falsePositive, falseNegative bool) {
	if !falsePositive && !falseNegative {
		return
	}
	if modelVersion == "" {
		modelVersion = "unknown"
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if falsePositive {
		t.falsePositives++
		t.perDomainFP[domain]++
		t.perModelFP[modelVersion]++
	}
	if falseNegative {
		t.falseNegatives++
		t.perDomainFN[domain]++
		t.perModelFN[modelVersion]++
	}
}

func (t *Telemetry) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		EventsProcessed:         t.eventsProcessed,
		EventsWithInsights:      t.eventsWithInsights,
		Rules:                   make(map[string]RuleSnapshot, len(t.ruleStats)),
		FalsePositives:          t.falsePositives,
		FalseNegatives:          t.falseNegatives,
		PerDomainFalsePositives: copyCounts(t.perDomainFP),
		PerDomainFalseNegatives: copyCounts(t.perDomainFN),
		PerModelFalsePositives:  copyCounts(t.perModelFP),
		PerModelFalseNegatives:  copyCounts(t.perModelFN),
		RecentEvents:            append([]RecentEvent(nil), t.recent...),
	}
	for name, stats := range t.ruleStats {
		snap.Rules[name] = RuleSnapshot{
			Count:          stats.count,
			Produced:       stats.produced,
			TotalLatencyMs: float64(stats.totalLatency) / float64(time.Millisecond),
		}
	}
	return snap
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
