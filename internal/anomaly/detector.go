package anomaly

import (
	"math"
	"math/rand"
	"sort"
)

// Default estimator parameters. The subsample size and score formula follow
// the standard isolation-forest construction; the contamination rate is the
// assumed anomalous fraction of any series.
const (
	DefaultTrees         = 100
	DefaultSubsampleSize = 256
	DefaultContamination = 0.10
	DefaultFitCap        = 50_000
)

// Config tunes the ensemble estimator. The zero value is completed with the
// defaults by New.
type Config struct {
	Trees         int     // number of partition trees in the ensemble
	SubsampleSize int     // points fed to each tree
	Contamination float64 // fraction of points flagged as anomalous
	FitCap        int     // max points used to fit the ensemble
	Seed          int64   // drives subsampling and split selection
}

// DefaultConfig returns the standard estimator parameters with seed 1.
func DefaultConfig() Config {
	return Config{
		Trees:         DefaultTrees,
		SubsampleSize: DefaultSubsampleSize,
		Contamination: DefaultContamination,
		FitCap:        DefaultFitCap,
		Seed:          1,
	}
}

// Detector scores a one-dimensional series for statistical outliers using a
// randomized ensemble of binary partition trees. A Detector holds no state
// between calls and is safe for concurrent use.
type Detector struct {
	cfg Config
}

// New builds a detector, filling unset config fields with defaults.
func New(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.Trees <= 0 {
		cfg.Trees = def.Trees
	}
	if cfg.SubsampleSize <= 0 {
		cfg.SubsampleSize = def.SubsampleSize
	}
	if cfg.Contamination <= 0 {
		cfg.Contamination = def.Contamination
	}
	if cfg.FitCap <= 0 {
		cfg.FitCap = def.FitCap
	}
	return &Detector{cfg: cfg}
}

// Score returns per-point anomaly scores in (0, 1); higher means easier to
// isolate, i.e. more anomalous. Returns nil when the series is empty or has
// zero variance, in which case no point can be an outlier.
//
// Series longer than FitCap fit the ensemble on a fixed-seed subsample but
// every point is still scored.
func (d *Detector) Score(values []float64) []float64 {
	norm, ok := normalize(values)
	if !ok {
		return nil
	}

	rng := rand.New(rand.NewSource(d.cfg.Seed))

	fit := norm
	if len(norm) > d.cfg.FitCap {
		fit = sampleFloats(norm, d.cfg.FitCap, rng)
	}

	forest := growForest(fit, d.cfg.Trees, d.cfg.SubsampleSize, rng)

	subsample := d.cfg.SubsampleSize
	if subsample > len(fit) {
		subsample = len(fit)
	}
	denom := avgPathLength(subsample)
	if denom == 0 {
		denom = 1
	}

	scores := make([]float64, len(norm))
	for i, v := range norm {
		total := 0.0
		for _, tree := range forest {
			total += tree.pathLength(v)
		}
		mean := total / float64(len(forest))
		scores[i] = math.Exp2(-mean / denom)
	}
	return scores
}

// Flag returns the indices of the points whose scores fall in the top
// contamination fraction, in ascending index order. Identical input and
// seed always yield the identical flagged set; score ties break by index.
func (d *Detector) Flag(values []float64) []int {
	scores := d.Score(values)
	if scores == nil {
		return nil
	}

	k := int(float64(len(values)) * d.cfg.Contamination)
	if k <= 0 {
		return nil
	}

	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	flagged := append([]int(nil), idx[:k]...)
	sort.Ints(flagged)
	return flagged
}

// EstimateTotal rescales a flagged count observed on a sample to the full
// series size, rounded to the nearest integer and clamped to [0, fullSize].
// The result is an estimate, not an exact count.
func EstimateTotal(flagged, sampleSize, fullSize int) int {
	if flagged <= 0 || sampleSize <= 0 {
		return 0
	}
	est := int(math.Round(float64(flagged) * float64(fullSize) / float64(sampleSize)))
	if est > fullSize {
		est = fullSize
	}
	return est
}

// SampleSeries draws a fixed-seed uniform subsample for count-only scoring
// of oversized series.
func SampleSeries(values []float64, n int, seed int64) []float64 {
	return sampleFloats(values, n, rand.New(rand.NewSource(seed)))
}

// normalize converts values to standard scores. ok is false when the series
// is empty or has no variance.
func normalize(values []float64) ([]float64, bool) {
	if len(values) == 0 {
		return nil, false
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(len(values)))
	if sd == 0 {
		return nil, false
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / sd
	}
	return out, true
}
