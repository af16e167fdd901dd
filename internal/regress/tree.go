package regress

import (
	"math"
	"math/rand"
	"sort"
)

// Node is one decision or leaf node in a flattened tree. Leaf nodes carry
// only Value; decision nodes route on Feature against Threshold.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
	Leaf      bool    `json:"leaf"`
}

// Tree is a CART regression tree stored as a flat node array with the root
// at index zero.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks the tree for one feature vector.
func (t *Tree) Predict(x []float64) float64 {
	idx := 0
	for {
		n := &t.Nodes[idx]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

type treeBuilder struct {
	x           [][]float64
	y           []float64
	params      TreeParams
	rng         *rand.Rand
	maxFeatures int
	nodes       []Node

	order []int
}

// growTree fits a regression tree on the rows named by indices, minimizing
// squared error at each split. A non-nil rng with maxFeatures below the
// feature count samples a fresh candidate subset at every node.
func growTree(x [][]float64, y []float64, indices []int, params TreeParams, rng *rand.Rand, maxFeatures int) *Tree {
	b := &treeBuilder{
		x:           x,
		y:           y,
		params:      params.normalized(),
		rng:         rng,
		maxFeatures: maxFeatures,
		order:       make([]int, len(indices)),
	}
	b.grow(indices, 0)
	return &Tree{Nodes: b.nodes}
}

func (b *treeBuilder) grow(indices []int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{})

	sum := 0.0
	for _, i := range indices {
		sum += b.y[i]
	}
	leafValue := sum / float64(len(indices))

	if depth >= b.params.MaxDepth || len(indices) < b.params.MinSamplesSplit || pureTargets(b.y, indices) {
		b.nodes[idx] = Node{Leaf: true, Value: leafValue}
		return idx
	}

	feature, threshold, ok := b.bestSplit(indices, sum)
	if !ok {
		b.nodes[idx] = Node{Leaf: true, Value: leafValue}
		return idx
	}

	left := make([]int, 0, len(indices))
	right := make([]int, 0, len(indices))
	for _, i := range indices {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	leftIdx := b.grow(left, depth+1)
	rightIdx := b.grow(right, depth+1)
	b.nodes[idx] = Node{Feature: feature, Threshold: threshold, Left: leftIdx, Right: rightIdx}
	return idx
}

// bestSplit scans candidate features for the threshold maximizing the
// squared-error reduction. Sorting each feature once lets a single pass over
// prefix sums score every split position.
func (b *treeBuilder) bestSplit(indices []int, totalSum float64) (int, float64, bool) {
	n := len(indices)
	nFeatures := len(b.x[indices[0]])

	bestScore := math.Inf(-1)
	bestFeature := 0
	bestThreshold := 0.0
	found := false

	order := b.order[:n]
	minLeaf := b.params.MinSamplesLeaf

	for _, f := range b.candidateFeatures(nFeatures) {
		copy(order, indices)
		sort.Slice(order, func(i, j int) bool {
			return b.x[order[i]][f] < b.x[order[j]][f]
		})

		leftSum := 0.0
		for k := 1; k < n; k++ {
			leftSum += b.y[order[k-1]]
			lo := b.x[order[k-1]][f]
			hi := b.x[order[k]][f]
			if lo == hi {
				continue
			}
			if k < minLeaf || n-k < minLeaf {
				continue
			}
			rightSum := totalSum - leftSum
			score := leftSum*leftSum/float64(k) + rightSum*rightSum/float64(n-k)
			if score > bestScore {
				bestScore = score
				bestFeature = f
				// Adjacent float64 values round the midpoint up to hi,
				// which would leave the right partition empty.
				threshold := (lo + hi) / 2
				if threshold >= hi {
					threshold = lo
				}
				bestThreshold = threshold
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func (b *treeBuilder) candidateFeatures(nFeatures int) []int {
	all := b.maxFeatures <= 0 || b.maxFeatures >= nFeatures || b.rng == nil
	if all {
		feats := make([]int, nFeatures)
		for i := range feats {
			feats[i] = i
		}
		return feats
	}
	return b.rng.Perm(nFeatures)[:b.maxFeatures]
}

func pureTargets(y []float64, indices []int) bool {
	first := y[indices[0]]
	for _, i := range indices[1:] {
		if y[i] != first {
			return false
		}
	}
	return true
}
