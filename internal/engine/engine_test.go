package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"chainsight/internal/bottleneck"
	"chainsight/internal/dataset"
	"chainsight/internal/recommend"
	"chainsight/internal/schema"
)

func newTestOrchestrator() *Orchestrator {
	return New(DefaultConfig(), nil)
}

// Three rows with identical quantity and a single product: no volatility,
// no bottleneck locations, and exactly one general recommendation.
func TestAnalyzeDataset_QuietDataset(t *testing.T) {
	table := Table{
		Columns: []string{"date", "product", "quantity"},
		Rows: []dataset.Row{
			{"date": "2024-01-01", "product": "A", "quantity": 10},
			{"date": "2024-01-02", "product": "A", "quantity": 10},
			{"date": "2024-01-03", "product": "A", "quantity": 10},
		},
	}

	result, err := newTestOrchestrator().AnalyzeDataset(table)
	if err != nil {
		t.Fatalf("AnalyzeDataset() error = %v", err)
	}

	if result.Metrics.TotalProducts != 1 {
		t.Errorf("TotalProducts = %d, want 1", result.Metrics.TotalProducts)
	}
	if got := result.DemandAnalysis.Volatility["A"]; got != 0 {
		t.Errorf("volatility[A] = %v, want 0", got)
	}
	if len(result.DemandAnalysis.Bottlenecks) != 0 {
		t.Errorf("bottleneck locations = %v, want none", result.DemandAnalysis.Bottlenecks)
	}
	if result.Anomalies.Count != 0 {
		t.Errorf("anomaly count = %d, want 0 for a zero-variance series", result.Anomalies.Count)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0].Type != recommend.TypeGeneral {
		t.Errorf("recommendations = %v, want exactly one general entry", result.Recommendations)
	}
	if result.Recommendations[0].Priority != recommend.PriorityLow {
		t.Errorf("general priority = %q, want low", result.Recommendations[0].Priority)
	}
	if result.RunID == "" {
		t.Error("RunID must be set")
	}
}

func TestAnalyzeDataset_SchemaError(t *testing.T) {
	table := Table{
		Columns: []string{"product", "quantity"},
		Rows:    []dataset.Row{{"product": "A", "quantity": 1}},
	}

	_, err := newTestOrchestrator().AnalyzeDataset(table)
	var missErr *schema.MissingRoleError
	if !errors.As(err, &missErr) {
		t.Fatalf("AnalyzeDataset() error = %v, want MissingRoleError", err)
	}
	if missErr.Role != schema.RoleTimestamp {
		t.Errorf("missing role = %q, want timestamp", missErr.Role)
	}
}

func TestAnalyzeDataset_EmptyDataset(t *testing.T) {
	_, err := newTestOrchestrator().AnalyzeDataset(Table{Columns: []string{"date", "product", "quantity"}})
	var dataErr *dataset.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("AnalyzeDataset() error = %v, want DataError", err)
	}
}

func TestAnalyzeDataset_ColumnsInferredFromRow(t *testing.T) {
	table := Table{
		Rows: []dataset.Row{
			{"date": "2024-01-01", "product": "A", "quantity": 1},
			{"date": "2024-01-02", "product": "B", "quantity": 2},
		},
	}

	result, err := newTestOrchestrator().AnalyzeDataset(table)
	if err != nil {
		t.Fatalf("AnalyzeDataset() error = %v", err)
	}
	if result.Metrics.TotalProducts != 2 {
		t.Errorf("TotalProducts = %d, want 2", result.Metrics.TotalProducts)
	}
}

func TestAnalyzeDataset_Deterministic(t *testing.T) {
	var rows []dataset.Row
	for i := 0; i < 120; i++ {
		rows = append(rows, dataset.Row{
			"date":     fmt.Sprintf("2024-01-%02d", i%28+1),
			"product":  fmt.Sprintf("P%d", i%5),
			"quantity": (i * 37) % 101,
			"location": fmt.Sprintf("WH-%d", i%3),
		})
	}
	table := Table{Columns: []string{"date", "product", "quantity", "location"}, Rows: rows}

	orch := newTestOrchestrator()
	first, err := orch.AnalyzeDataset(table)
	if err != nil {
		t.Fatalf("AnalyzeDataset() error = %v", err)
	}
	second, err := orch.AnalyzeDataset(table)
	if err != nil {
		t.Fatalf("AnalyzeDataset() error = %v", err)
	}

	// The run id identifies the invocation; every analytical field must match.
	first.RunID, second.RunID = "", ""
	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical input produced different analyses:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzeEvents_ImpactRanking(t *testing.T) {
	raw := []bottleneck.RawEvent{
		{Timestamp: "2024-01-01T10:00:00Z", Step: "A", Delay: 1},
		{Timestamp: "2024-01-01T11:00:00Z", Step: "B", Delay: 5},
		{Timestamp: "2024-01-01T14:00:00Z", Step: "C", Delay: 2},
	}

	result, err := newTestOrchestrator().AnalyzeEvents(raw)
	if err != nil {
		t.Fatalf("AnalyzeEvents() error = %v", err)
	}

	if len(result.Bottlenecks) != 2 || result.Bottlenecks[0].Step != "B" || result.Bottlenecks[1].Step != "C" {
		t.Errorf("bottlenecks = %v, want [B, C]", result.Bottlenecks)
	}
	if len(result.Recommendations) == 0 {
		t.Error("expected process advice for a ranked bottleneck")
	}
}

func TestAnalyzeEvents_ValidationAbortsWholeCall(t *testing.T) {
	raw := []bottleneck.RawEvent{
		{Timestamp: "2024-01-01T10:00:00Z", Step: "A", Delay: 1},
		{Timestamp: "2024-01-01T11:00:00Z", Step: "B"}, // missing delay
	}

	result, err := newTestOrchestrator().AnalyzeEvents(raw)
	if result != nil {
		t.Errorf("partial result returned on validation failure: %+v", result)
	}
	var vErr *bottleneck.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("AnalyzeEvents() error = %v, want ValidationError", err)
	}
	if vErr.Field != "delay" || vErr.Index != 1 {
		t.Errorf("ValidationError = %+v, want field delay on event 1", vErr)
	}
}

func TestAnalyzeEvents_Empty(t *testing.T) {
	_, err := newTestOrchestrator().AnalyzeEvents(nil)
	var dataErr *dataset.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("AnalyzeEvents(nil) error = %v, want DataError", err)
	}
}

func TestAnalyzeKPIs(t *testing.T) {
	result := newTestOrchestrator().AnalyzeKPIs(recommend.KPIInput{
		CostOfGoods:      1000,
		AverageInventory: 500, // turnover 2, below target
		FulfilledOrders:  99,
		TotalOrders:      100,
		TotalLeadTime:    300,
	})

	if result.KPIs.InventoryTurnover != 2 {
		t.Errorf("turnover = %v, want 2", result.KPIs.InventoryTurnover)
	}
	if len(result.Recommendations) != 1 || result.Recommendations[0].Type != recommend.TypeInventoryTurnover {
		t.Errorf("recommendations = %v, want single inventory_turnover entry", result.Recommendations)
	}
}

type stubEmbedder struct {
	vectors [][]float64
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([][]float64, error) {
	return s.vectors, s.err
}

func TestAnalyzeText(t *testing.T) {
	ctx := context.Background()

	t.Run("NilEmbedderDegrades", func(t *testing.T) {
		result, err := New(DefaultConfig(), nil).AnalyzeText(ctx, "shipment delayed at customs")
		if err != nil {
			t.Fatalf("AnalyzeText() error = %v", err)
		}
		if len(result.Degraded) != 1 || result.Degraded[0] != "embedding" {
			t.Errorf("degraded = %v, want [embedding]", result.Degraded)
		}
		if result.Mean != nil {
			t.Error("degraded result must not fabricate statistics")
		}
	})

	t.Run("FailingEmbedderDegrades", func(t *testing.T) {
		orch := New(DefaultConfig(), &stubEmbedder{err: errors.New("model not loaded")})
		result, err := orch.AnalyzeText(ctx, "text")
		if err != nil {
			t.Fatalf("AnalyzeText() error = %v", err)
		}
		if len(result.Degraded) != 1 {
			t.Errorf("degraded = %v, want [embedding]", result.Degraded)
		}
	})

	t.Run("ComputesPerDimensionStats", func(t *testing.T) {
		orch := New(DefaultConfig(), &stubEmbedder{vectors: [][]float64{{1, 4}, {3, 4}}})
		result, err := orch.AnalyzeText(ctx, "text")
		if err != nil {
			t.Fatalf("AnalyzeText() error = %v", err)
		}
		if result.Vectors != 2 || result.Dimensions != 2 {
			t.Fatalf("shape = (%d, %d), want (2, 2)", result.Vectors, result.Dimensions)
		}
		if result.Mean[0] != 2 || result.Mean[1] != 4 {
			t.Errorf("mean = %v, want [2 4]", result.Mean)
		}
		if result.StdDev[0] != 1 || result.StdDev[1] != 0 {
			t.Errorf("std = %v, want [1 0]", result.StdDev)
		}
	})

	t.Run("EmptyTextIsTerminal", func(t *testing.T) {
		_, err := New(DefaultConfig(), nil).AnalyzeText(ctx, "   ")
		var dataErr *dataset.DataError
		if !errors.As(err, &dataErr) {
			t.Fatalf("AnalyzeText() error = %v, want DataError", err)
		}
	})
}
