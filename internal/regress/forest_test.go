package regress

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearDataset(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = []float64{rng.Float64() * 100, rng.Float64() * 10}
		y[i] = x[i][0]
	}
	return x, y
}

func TestForestFitValidatesInput(t *testing.T) {
	f := NewForest(ForestConfig{Trees: 5, Seed: 1})

	assert.Error(t, f.Fit(nil, nil))
	assert.Error(t, f.Fit([][]float64{{1}, {2}}, []float64{1}))
}

func TestForestLearnsLinearSignal(t *testing.T) {
	x, y := linearDataset(150, 3)

	f := NewForest(ForestConfig{
		Trees:      50,
		Seed:       42,
		TreeParams: TreeParams{MaxDepth: 12, MinSamplesSplit: 2, MinSamplesLeaf: 1},
	})
	require.NoError(t, f.Fit(x, y))
	require.Len(t, f.Trees, 50)

	total := 0.0
	for i, row := range x {
		total += math.Abs(f.Predict(row) - y[i])
	}
	mae := total / float64(len(x))
	// A mean predictor scores around 25 on this data.
	assert.Less(t, mae, 5.0)
}

func TestForestDeterministicForSeed(t *testing.T) {
	x, y := linearDataset(80, 9)
	cfg := ForestConfig{
		Trees:      20,
		Seed:       42,
		Workers:    4,
		TreeParams: TreeParams{MaxDepth: 8, MinSamplesSplit: 3, MinSamplesLeaf: 1},
	}

	a := NewForest(cfg)
	b := NewForest(cfg)
	require.NoError(t, a.Fit(x, y))
	require.NoError(t, b.Fit(x, y))

	for _, row := range x[:20] {
		assert.Equal(t, a.Predict(row), b.Predict(row))
	}
}

func TestForestSeedChangesModel(t *testing.T) {
	x, y := linearDataset(80, 9)
	base := ForestConfig{Trees: 20, TreeParams: TreeParams{MaxDepth: 8, MinSamplesSplit: 3, MinSamplesLeaf: 1}}

	a := NewForest(base)
	a.Config.Seed = 1
	b := NewForest(base)
	b.Config.Seed = 2
	require.NoError(t, a.Fit(x, y))
	require.NoError(t, b.Fit(x, y))

	same := true
	for _, row := range x {
		if a.Predict(row) != b.Predict(row) {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestMultiForestPredictsEachTarget(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	x := make([][]float64, 120)
	targets := make([][]float64, 120)
	for i := range x {
		a := rng.Float64() * 50
		b := rng.Float64() * 50
		x[i] = []float64{a, b}
		targets[i] = []float64{a, 100 - b}
	}

	m := NewMultiForest(ForestConfig{
		Trees:      40,
		Seed:       42,
		TreeParams: TreeParams{MaxDepth: 12, MinSamplesSplit: 2, MinSamplesLeaf: 1},
	})
	assert.False(t, m.Fitted())
	require.NoError(t, m.Fit(x, targets))
	assert.True(t, m.Fitted())
	require.Len(t, m.Outputs, 2)

	out := m.Predict(x[0])
	require.Len(t, out, 2)
	assert.InDelta(t, targets[0][0], out[0], 10.0)
	assert.InDelta(t, targets[0][1], out[1], 10.0)
}

func TestMultiForestJSONRoundTripPredictsIdentically(t *testing.T) {
	x, y := linearDataset(60, 11)
	targets := make([][]float64, len(y))
	for i, v := range y {
		targets[i] = []float64{v, -v}
	}

	m := NewMultiForest(ForestConfig{
		Trees:      10,
		Seed:       42,
		TreeParams: TreeParams{MaxDepth: 6, MinSamplesSplit: 4, MinSamplesLeaf: 2},
	})
	require.NoError(t, m.Fit(x, targets))

	raw, err := json.Marshal(m)
	require.NoError(t, err)

	var restored MultiForest
	require.NoError(t, json.Unmarshal(raw, &restored))
	require.True(t, restored.Fitted())

	for _, row := range x {
		assert.Equal(t, m.Predict(row), restored.Predict(row))
	}
}
