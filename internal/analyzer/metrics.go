package analyzer

import (
	"sort"
	"sync"
	"time"
)

// MetricsCollector aggregates latency and tool-call metrics across runs.
// Safe for concurrent use.
type MetricsCollector struct {
	mu             sync.RWMutex
	analysesTotal  int
	stageLatencies map[string][]float64
	toolCalls      map[string][]float64
}

// LatencyStats summarizes a latency distribution in milliseconds.
type LatencyStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Total  float64 `json:"total"`
	Median float64 `json:"median"`
}

// ToolStats summarizes calls to one tool.
type ToolStats struct {
	CallCount       int     `json:"call_count"`
	TotalDurationMS float64 `json:"total_duration_ms"`
	AvgDurationMS   float64 `json:"avg_duration_ms"`
}

// MetricsSnapshot is a point-in-time view of collected metrics.
type MetricsSnapshot struct {
	Timestamp      time.Time               `json:"timestamp"`
	AnalysesTotal  int                     `json:"analyses_total"`
	StageLatencies map[string]LatencyStats `json:"stage_latencies"`
	ToolCalls      map[string]ToolStats    `json:"tool_calls"`
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		stageLatencies: make(map[string][]float64),
		toolCalls:      make(map[string][]float64),
	}
}

// RecordAnalysis records the metrics of one completed (or failed) run.
// Zero latencies mean the stage never ran and are not recorded.
func (m *MetricsCollector) RecordAnalysis(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.analysesTotal++

	record := func(stage string, latency float64) {
		if latency > 0 {
			m.stageLatencies[stage] = append(m.stageLatencies[stage], latency)
		}
	}
	record(StageParser, s.ParserLatency)
	record(StageRisk, s.RiskLatency)
	record(StageAutomation, s.AutomationLatency)
	record(StageSummarizer, s.SummaryLatency)

	for _, call := range s.ToolCalls() {
		m.toolCalls[call.ToolName] = append(m.toolCalls[call.ToolName], call.DurationMS)
	}
}

// Snapshot returns the aggregated metrics.
func (m *MetricsCollector) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		Timestamp:      time.Now().UTC(),
		AnalysesTotal:  m.analysesTotal,
		StageLatencies: make(map[string]LatencyStats, len(m.stageLatencies)),
		ToolCalls:      make(map[string]ToolStats, len(m.toolCalls)),
	}

	for stage, values := range m.stageLatencies {
		snap.StageLatencies[stage] = computeStats(values)
	}
	for tool, durations := range m.toolCalls {
		total := 0.0
		for _, d := range durations {
			total += d
		}
		stats := ToolStats{CallCount: len(durations), TotalDurationMS: total}
		if len(durations) > 0 {
			stats.AvgDurationMS = total / float64(len(durations))
		}
		snap.ToolCalls[tool] = stats
	}

	return snap
}

// Reset clears all collected metrics.
func (m *MetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analysesTotal = 0
	m.stageLatencies = make(map[string][]float64)
	m.toolCalls = make(map[string][]float64)
}

func computeStats(values []float64) LatencyStats {
	if len(values) == 0 {
		return LatencyStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	total := 0.0
	for _, v := range sorted {
		total += v
	}

	return LatencyStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Avg:    total / float64(len(sorted)),
		Total:  total,
		Median: sorted[len(sorted)/2],
	}
}
