package anomaly

import (
	"math"
	"math/rand"
)

// node is one split in a randomized binary partition tree. Leaves keep the
// number of points that reached them so path lengths can be corrected for
// early termination.
type node struct {
	split float64
	left  *node
	right *node
	size  int
}

// growForest builds the tree ensemble over fixed-size subsamples of the fit
// set. Tree height is capped at ceil(log2(subsample)), the depth at which an
// average point is expected to isolate.
func growForest(fit []float64, trees, subsample int, rng *rand.Rand) []*node {
	if subsample > len(fit) {
		subsample = len(fit)
	}

	maxDepth := 0
	if subsample > 1 {
		maxDepth = int(math.Ceil(math.Log2(float64(subsample))))
	}

	forest := make([]*node, trees)
	for t := 0; t < trees; t++ {
		sub := sampleFloats(fit, subsample, rng)
		forest[t] = grow(sub, 0, maxDepth, rng)
	}
	return forest
}

func grow(points []float64, depth, maxDepth int, rng *rand.Rand) *node {
	if depth >= maxDepth || len(points) <= 1 {
		return &node{size: len(points)}
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if lo == hi {
		return &node{size: len(points)}
	}

	split := lo + rng.Float64()*(hi-lo)

	var left, right []float64
	for _, p := range points {
		if p < split {
			left = append(left, p)
		} else {
			right = append(right, p)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{size: len(points)}
	}

	return &node{
		split: split,
		left:  grow(left, depth+1, maxDepth, rng),
		right: grow(right, depth+1, maxDepth, rng),
	}
}

// pathLength walks v down the tree. Multi-point leaves contribute the
// expected remaining path for their size.
func (n *node) pathLength(v float64) float64 {
	depth := 0.0
	cur := n
	for cur.left != nil {
		if v < cur.split {
			cur = cur.left
		} else {
			cur = cur.right
		}
		depth++
	}
	return depth + avgPathLength(cur.size)
}

// eulerGamma is the Euler-Mascheroni constant used in the harmonic number
// approximation.
const eulerGamma = 0.5772156649015329

// avgPathLength is c(n): the expected path length of an unsuccessful binary
// search over n points. n == 2 uses the exact harmonic number H(1) = 1; the
// logarithmic approximation understates it badly at that size.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	h := math.Log(float64(n-1)) + eulerGamma
	return 2*h - 2*float64(n-1)/float64(n)
}

// sampleFloats draws n values uniformly without replacement.
func sampleFloats(values []float64, n int, rng *rand.Rand) []float64 {
	if n >= len(values) {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = values[idx[i]]
	}
	return out
}
