package engine

import (
	"fmt"
	"sort"
	"time"

	"chainsight/internal/anomaly"
	"chainsight/internal/bottleneck"
	"chainsight/internal/dataset"
	"chainsight/internal/metrics"
	"chainsight/internal/recommend"
	"chainsight/internal/schema"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config holds the per-invocation tunables of the analytics pipeline. Every
// randomized step derives its randomness from Seed, so identical input and
// config produce identical analytical output.
type Config struct {
	Seed                 int64
	MetricSampleCap      int
	AnomalyTrees         int
	AnomalyContamination float64
	AnomalyFitCap        int
}

// DefaultConfig returns the standard pipeline parameters.
func DefaultConfig() Config {
	return Config{
		Seed:                 1,
		MetricSampleCap:      metrics.DefaultSampleCap,
		AnomalyTrees:         anomaly.DefaultTrees,
		AnomalyContamination: anomaly.DefaultContamination,
		AnomalyFitCap:        anomaly.DefaultFitCap,
	}
}

// Orchestrator sequences the analytics components over one input and
// assembles the final result. It holds no state between calls and is safe
// for concurrent use. Collaborators are injected at construction; there are
// no package-level defaults.
type Orchestrator struct {
	cfg      Config
	embedder Embedder
}

// New builds an orchestrator. The embedder collaborator is optional; pass
// nil when text analysis is not needed.
func New(cfg Config, embedder Embedder) *Orchestrator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.MetricSampleCap <= 0 {
		cfg.MetricSampleCap = def.MetricSampleCap
	}
	if cfg.AnomalyTrees <= 0 {
		cfg.AnomalyTrees = def.AnomalyTrees
	}
	if cfg.AnomalyContamination <= 0 {
		cfg.AnomalyContamination = def.AnomalyContamination
	}
	if cfg.AnomalyFitCap <= 0 {
		cfg.AnomalyFitCap = def.AnomalyFitCap
	}
	return &Orchestrator{cfg: cfg, embedder: embedder}
}

// Table is the caller-supplied tabular input. Columns preserves the source
// column order, which role inference depends on; when absent, the sorted
// keys of the first row are used instead.
type Table struct {
	Columns []string      `json:"columns,omitempty"`
	Rows    []dataset.Row `json:"rows"`
}

// DateRange is the observed timestamp span of a dataset.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// DatasetMetrics is the metrics block of the tabular result.
type DatasetMetrics struct {
	TotalProducts  int       `json:"total_products"`
	TotalLocations int       `json:"total_locations"`
	DateRange      DateRange `json:"date_range"`
}

// DemandAnalysis carries per-product volatility and flagged locations with
// their volumes.
type DemandAnalysis struct {
	Volatility  map[string]float64 `json:"volatility"`
	Bottlenecks map[string]float64 `json:"bottlenecks"`
}

// AnomalySummary reports outlier counts. When the series exceeded the fit
// cap the count is a rescaled estimate rather than an exact tally.
type AnomalySummary struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DatasetResult is the assembled tabular analysis. Degraded names the
// optional signals that could not be computed; every analytical field is a
// pure function of input and config, with RunID alone identifying the
// invocation.
type DatasetResult struct {
	RunID           string                     `json:"run_id"`
	Metrics         DatasetMetrics             `json:"metrics"`
	DemandAnalysis  DemandAnalysis             `json:"demand_analysis"`
	Anomalies       AnomalySummary             `json:"anomalies"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Degraded        []string                   `json:"degraded,omitempty"`
}

// AnalyzeDataset runs the tabular pipeline: role inference, descriptive
// metrics, anomaly scoring over the quantity series, and the rule engine.
// Schema and data errors abort the call; a failing anomaly step degrades to
// an empty signal instead.
func (o *Orchestrator) AnalyzeDataset(table Table) (*DatasetResult, error) {
	columns := table.Columns
	if len(columns) == 0 && len(table.Rows) > 0 {
		columns = sortedKeys(table.Rows[0])
	}

	roles, err := schema.Infer(columns)
	if err != nil {
		return nil, err
	}

	snap, err := metrics.Compute(table.Rows, roles, metrics.Options{
		SampleCap: o.cfg.MetricSampleCap,
		Seed:      o.cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	result := &DatasetResult{
		RunID: uuid.NewString(),
		Metrics: DatasetMetrics{
			TotalProducts:  snap.TotalProducts,
			TotalLocations: snap.TotalLocations,
			DateRange:      DateRange{Start: snap.RangeStart, End: snap.RangeEnd},
		},
		DemandAnalysis: DemandAnalysis{
			Volatility:  snap.DemandVolatility,
			Bottlenecks: flaggedVolumes(snap.LocationVolume),
		},
	}

	count, ok := o.quantityAnomalyCount(table.Rows, roles)
	if !ok {
		result.Degraded = append(result.Degraded, "anomaly_detection")
	}
	result.Anomalies = AnomalySummary{
		Count:      count,
		Percentage: percentage(count, len(table.Rows)),
	}

	result.Recommendations = recommend.ForDataset(recommend.Signals{
		DemandVolatility:    snap.DemandVolatility,
		BottleneckLocations: metrics.BottleneckLocations(snap.LocationVolume),
		AnomalyCount:        count,
		TotalRows:           len(table.Rows),
	})

	return result, nil
}

// StepAnomaly names a process step whose delay was flagged as an outlier.
type StepAnomaly struct {
	Step        string `json:"step"`
	Description string `json:"description"`
}

// EventsResult is the assembled time-series analysis.
type EventsResult struct {
	RunID           string              `json:"run_id"`
	Bottlenecks     []bottleneck.Record `json:"bottlenecks"`
	Anomalies       []StepAnomaly       `json:"anomalies"`
	Recommendations []recommend.Advice  `json:"recommendations"`
	Degraded        []string            `json:"degraded,omitempty"`
}

// AnalyzeEvents runs the time-series pipeline. Validation failures abort
// the call with the offending field and event named; bottleneck ranking and
// anomaly scoring then run independently.
func (o *Orchestrator) AnalyzeEvents(raw []bottleneck.RawEvent) (*EventsResult, error) {
	events, err := bottleneck.Validate(raw)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, &dataset.DataError{Reason: "event list has no events"}
	}

	sorted := bottleneck.Sort(events)

	var (
		records []bottleneck.Record
		flagged []int
	)
	anomalyOK := true

	var g errgroup.Group
	g.Go(func() error {
		records = bottleneck.Detect(sorted)
		return nil
	})
	g.Go(func() error {
		flagged, anomalyOK = o.flagDelays(bottleneck.Delays(sorted))
		return nil
	})
	_ = g.Wait()

	result := &EventsResult{
		RunID:       uuid.NewString(),
		Bottlenecks: records,
	}
	if !anomalyOK {
		result.Degraded = append(result.Degraded, "anomaly_detection")
	}

	var anomalousSteps []string
	for _, i := range flagged {
		ev := sorted[i]
		anomalousSteps = append(anomalousSteps, ev.Step)
		result.Anomalies = append(result.Anomalies, StepAnomaly{
			Step:        ev.Step,
			Description: fmt.Sprintf("delay of %.1f hours deviates from the run's typical pattern", ev.Delay),
		})
	}

	result.Recommendations = recommend.ForProcess(records, anomalousSteps)
	return result, nil
}

// KPIResult is the assembled realtime KPI analysis.
type KPIResult struct {
	RunID           string                     `json:"run_id"`
	KPIs            recommend.KPISnapshot      `json:"kpis"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// AnalyzeKPIs evaluates the realtime operational ratios against their
// thresholds. This path is purely arithmetic and cannot fail.
func (o *Orchestrator) AnalyzeKPIs(in recommend.KPIInput) *KPIResult {
	snap := recommend.ComputeKPIs(in)
	return &KPIResult{
		RunID:           uuid.NewString(),
		KPIs:            snap,
		Recommendations: recommend.ForKPIs(snap),
	}
}

// quantityAnomalyCount scores the quantity series for outliers. Oversized
// series are scored on a fixed-seed sample and the count rescaled; the
// result is then an estimate. ok is false when the step failed and was
// replaced by an empty signal.
func (o *Orchestrator) quantityAnomalyCount(rows []dataset.Row, roles schema.ColumnRoles) (count int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("Anomaly scoring failed; reporting no anomalies")
			count, ok = 0, false
		}
	}()

	series := make([]float64, 0, len(rows))
	for _, row := range rows {
		if qty, isNum := dataset.Float(row[roles.Quantity]); isNum {
			series = append(series, qty)
		}
	}

	det := anomaly.New(o.anomalyConfig())
	if len(series) <= o.cfg.AnomalyFitCap {
		return len(det.Flag(series)), true
	}

	sample := anomaly.SampleSeries(series, o.cfg.AnomalyFitCap, o.cfg.Seed)
	flagged := len(det.Flag(sample))
	return anomaly.EstimateTotal(flagged, len(sample), len(series)), true
}

// flagDelays scores the per-event delay series. Failures degrade to an
// empty flagged set rather than aborting the analysis.
func (o *Orchestrator) flagDelays(delays []float64) (flagged []int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Interface("panic", r).Msg("Delay anomaly scoring failed; reporting no anomalies")
			flagged, ok = nil, false
		}
	}()

	return anomaly.New(o.anomalyConfig()).Flag(delays), true
}

func (o *Orchestrator) anomalyConfig() anomaly.Config {
	cfg := anomaly.DefaultConfig()
	cfg.Trees = o.cfg.AnomalyTrees
	cfg.Contamination = o.cfg.AnomalyContamination
	cfg.FitCap = o.cfg.AnomalyFitCap
	cfg.Seed = o.cfg.Seed
	return cfg
}

// flaggedVolumes restricts the volume map to the flagged locations.
func flaggedVolumes(volume map[string]float64) map[string]float64 {
	flagged := metrics.BottleneckLocations(volume)
	out := make(map[string]float64, len(flagged))
	for _, loc := range flagged {
		out[loc] = volume[loc]
	}
	return out
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(count) / float64(total)
}

func sortedKeys(row dataset.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
