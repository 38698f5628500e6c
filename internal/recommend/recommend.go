package recommend

import (
	"fmt"
	"strings"

	"chainsight/internal/bottleneck"
)

// Priority ranks how urgently a recommendation should be acted on.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Type is the recommendation category.
type Type string

const (
	TypeDemandForecasting   Type = "demand_forecasting"
	TypeInventoryManagement Type = "inventory_management"
	TypeResilience          Type = "resilience"
	TypeInventoryTurnover   Type = "inventory_turnover"
	TypeFulfillment         Type = "fulfillment"
	TypeVelocity            Type = "velocity"
	TypeGeneral             Type = "general"
)

// Recommendation is one prioritized, human-readable action.
type Recommendation struct {
	Type        Type     `json:"type"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
}

// Signals carries the computed evidence the tabular rules evaluate.
type Signals struct {
	DemandVolatility    map[string]float64
	BottleneckLocations []string
	AnomalyCount        int
	TotalRows           int
}

// ForDataset applies the tabular rule table. Rules fire independently and
// in table order, so the output is deterministic for identical signals.
// When no rule fires a single low-priority general entry is returned; the
// list is never empty.
func ForDataset(s Signals) []Recommendation {
	var recs []Recommendation

	if maxV, meanV := maxAndMean(s.DemandVolatility); maxV > 2*meanV {
		recs = append(recs, Recommendation{
			Type:        TypeDemandForecasting,
			Description: "Demand volatility is concentrated in a few products; tighten forecasting for the most volatile products.",
			Priority:    PriorityHigh,
		})
	}

	if len(s.BottleneckLocations) > 0 {
		recs = append(recs, Recommendation{
			Type:        TypeInventoryManagement,
			Description: fmt.Sprintf("Locations %s handle disproportionate volume; rebalance inventory across the network.", strings.Join(s.BottleneckLocations, ", ")),
			Priority:    PriorityMedium,
		})
	}

	if s.TotalRows > 0 && float64(s.AnomalyCount) > 0.05*float64(s.TotalRows) {
		recs = append(recs, Recommendation{
			Type:        TypeResilience,
			Description: fmt.Sprintf("%d of %d records are statistical outliers; review data quality and add buffer capacity at affected stages.", s.AnomalyCount, s.TotalRows),
			Priority:    PriorityHigh,
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Type:        TypeGeneral,
			Description: "Supply chain indicators are within normal ranges; continue monitoring.",
			Priority:    PriorityLow,
		})
	}
	return recs
}

// Advice is a process-path recommendation. This surface carries no priority.
type Advice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ForProcess maps the bottleneck ranking and the set of anomalous steps to
// advice entries. An empty input yields an empty list.
func ForProcess(bottlenecks []bottleneck.Record, anomalousSteps []string) []Advice {
	var advice []Advice

	if len(bottlenecks) > 0 {
		top := bottlenecks[0]
		advice = append(advice, Advice{
			Title:       "Optimize bottleneck step",
			Description: fmt.Sprintf("Step %q has the highest delay impact (%.2f) with a delay of %.1f hours; reduce its delay first.", top.Step, top.Impact, top.Delay),
		})
	}

	if len(anomalousSteps) > 0 {
		advice = append(advice, Advice{
			Title:       "Investigate anomalous steps",
			Description: fmt.Sprintf("Steps %s show unusual delay patterns; investigate their root causes.", strings.Join(anomalousSteps, ", ")),
		})
	}

	if len(bottlenecks) >= 2 {
		advice = append(advice, Advice{
			Title:       "Reconsider process ordering",
			Description: "Multiple steps rank as bottlenecks; consider resequencing or parallelizing adjacent steps.",
		})
	}

	return advice
}

func maxAndMean(m map[string]float64) (float64, float64) {
	if len(m) == 0 {
		return 0, 0
	}

	maxV := 0.0
	sum := 0.0
	first := true
	for _, v := range m {
		if first || v > maxV {
			maxV = v
			first = false
		}
		sum += v
	}
	return maxV, sum / float64(len(m))
}
