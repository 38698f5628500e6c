package metrics

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"chainsight/internal/dataset"
	"chainsight/internal/schema"
)

// DefaultSampleCap bounds how many rows feed the volatility computation.
// Larger datasets are reduced to a fixed-seed uniform sample of this size so
// repeated runs stay reproducible.
const DefaultSampleCap = 100_000

// Options controls sampling behavior for large datasets.
type Options struct {
	SampleCap int
	Seed      int64
}

// DefaultOptions returns the standard sampling parameters.
func DefaultOptions() Options {
	return Options{SampleCap: DefaultSampleCap, Seed: 1}
}

// Snapshot holds the descriptive statistics for one dataset.
type Snapshot struct {
	TotalProducts    int                `json:"total_products"`
	TotalLocations   int                `json:"total_locations"`
	RangeStart       time.Time          `json:"range_start"`
	RangeEnd         time.Time          `json:"range_end"`
	DemandVolatility map[string]float64 `json:"demand_volatility"`
	LocationVolume   map[string]float64 `json:"location_volume"`
}

// Compute derives the descriptive statistics for a dataset. Demand
// volatility runs on a bounded sample; cardinalities, the date range and
// location volume always use the full dataset.
func Compute(rows []dataset.Row, roles schema.ColumnRoles, opts Options) (*Snapshot, error) {
	if len(rows) == 0 {
		return nil, &dataset.DataError{Reason: "dataset has no rows"}
	}
	if opts.SampleCap <= 0 {
		opts.SampleCap = DefaultSampleCap
	}

	snap := &Snapshot{
		LocationVolume: make(map[string]float64),
	}

	products := make(map[string]bool)
	locations := make(map[string]bool)

	for i, row := range rows {
		products[dataset.String(row[roles.Product])] = true
		if roles.Location != "" {
			locations[dataset.String(row[roles.Location])] = true
		}

		ts, ok := dataset.Time(row[roles.Timestamp])
		if !ok {
			return nil, &dataset.DataError{
				Reason: fmt.Sprintf("row %d has an unparsable timestamp", i),
				Column: roles.Timestamp,
				Value:  row[roles.Timestamp],
			}
		}
		if i == 0 || ts.Before(snap.RangeStart) {
			snap.RangeStart = ts
		}
		if i == 0 || ts.After(snap.RangeEnd) {
			snap.RangeEnd = ts
		}
	}

	snap.TotalProducts = len(products)
	snap.TotalLocations = len(locations)

	sampled := rows
	if len(rows) > opts.SampleCap {
		sampled = sampleRows(rows, opts.SampleCap, opts.Seed)
	}
	snap.DemandVolatility = demandVolatility(sampled, roles)

	if roles.Location != "" {
		for _, row := range rows {
			// Non-numeric quantities contribute nothing rather than
			// aborting the aggregate.
			qty, ok := dataset.Float(row[roles.Quantity])
			if !ok {
				continue
			}
			snap.LocationVolume[dataset.String(row[roles.Location])] += qty
		}
	}

	return snap, nil
}

// demandVolatility groups rows by (calendar day, product), sums quantity per
// group and reports the per-product standard deviation of those daily sums.
// A product observed on a single day has volatility 0.
func demandVolatility(rows []dataset.Row, roles schema.ColumnRoles) map[string]float64 {
	type groupKey struct {
		day     string
		product string
	}

	daily := make(map[groupKey]float64)
	for _, row := range rows {
		ts, ok := dataset.Time(row[roles.Timestamp])
		if !ok {
			continue
		}
		qty, _ := dataset.Float(row[roles.Quantity])
		key := groupKey{ts.Format("2006-01-02"), dataset.String(row[roles.Product])}
		daily[key] += qty
	}

	// Summation order must not depend on map iteration: StdDev's
	// floating-point accumulation is order-sensitive and identical runs
	// have to produce bit-identical volatility.
	keys := make([]groupKey, 0, len(daily))
	for key := range daily {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].product != keys[j].product {
			return keys[i].product < keys[j].product
		}
		return keys[i].day < keys[j].day
	})

	perProduct := make(map[string][]float64)
	for _, key := range keys {
		perProduct[key.product] = append(perProduct[key.product], daily[key])
	}

	volatility := make(map[string]float64, len(perProduct))
	for product, sums := range perProduct {
		volatility[product] = StdDev(sums)
	}
	return volatility
}

// BottleneckLocations flags locations whose volume exceeds the mean by more
// than one standard deviation. The result is sorted for reproducibility; an
// all-equal volume profile flags nothing.
func BottleneckLocations(volume map[string]float64) []string {
	if len(volume) == 0 {
		return nil
	}

	values := make([]float64, 0, len(volume))
	for _, v := range volume {
		values = append(values, v)
	}
	threshold := Mean(values) + StdDev(values)

	var flagged []string
	for loc, v := range volume {
		if v > threshold {
			flagged = append(flagged, loc)
		}
	}
	sort.Strings(flagged)
	return flagged
}

// sampleRows draws a uniform sample of n rows without replacement. The
// sample preserves the original row order so downstream grouping sees rows
// in chronological position.
func sampleRows(rows []dataset.Row, n int, seed int64) []dataset.Row {
	rng := rand.New(rand.NewSource(seed))

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	picked := idx[:n]
	sort.Ints(picked)

	out := make([]dataset.Row, n)
	for i, j := range picked {
		out[i] = rows[j]
	}
	return out
}
