package regress

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadraticDataset(n int) ([][]float64, []float64) {
	x := make([][]float64, n)
	y := make([]float64, n)
	for i := range x {
		v := float64(i)
		x[i] = []float64{v}
		y[i] = v * v
	}
	return x, y
}

func trainMAE(predict func([]float64) float64, x [][]float64, y []float64) float64 {
	total := 0.0
	for i, row := range x {
		total += math.Abs(predict(row) - y[i])
	}
	return total / float64(len(x))
}

func TestBoostingFitValidatesInput(t *testing.T) {
	b := NewBoosting(BoostingConfig{Rounds: 5})

	assert.Error(t, b.Fit(nil, nil))
	assert.Error(t, b.Fit([][]float64{{1}}, []float64{1, 2}))
}

func TestBoostingConstantTargetIsExact(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}}
	y := []float64{2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5, 2.5}

	b := NewBoosting(BoostingConfig{Rounds: 10, LearningRate: 0.1, TreeParams: TreeParams{MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1}})
	require.NoError(t, b.Fit(x, y))

	assert.Equal(t, 2.5, b.Init)
	assert.Equal(t, 2.5, b.Predict([]float64{99}))
}

func TestBoostingErrorShrinksWithRounds(t *testing.T) {
	x, y := quadraticDataset(40)
	params := TreeParams{MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1}

	short := NewBoosting(BoostingConfig{Rounds: 5, LearningRate: 0.1, TreeParams: params})
	long := NewBoosting(BoostingConfig{Rounds: 80, LearningRate: 0.1, TreeParams: params})
	require.NoError(t, short.Fit(x, y))
	require.NoError(t, long.Fit(x, y))

	assert.Less(t, trainMAE(long.Predict, x, y), trainMAE(short.Predict, x, y))
}

func TestBoostingDeterministic(t *testing.T) {
	x, y := quadraticDataset(30)
	cfg := BoostingConfig{Rounds: 20, LearningRate: 0.1, TreeParams: TreeParams{MaxDepth: 4, MinSamplesSplit: 2, MinSamplesLeaf: 1}}

	a := NewBoosting(cfg)
	b := NewBoosting(cfg)
	require.NoError(t, a.Fit(x, y))
	require.NoError(t, b.Fit(x, y))

	for _, row := range x {
		assert.Equal(t, a.Predict(row), b.Predict(row))
	}
}

func TestBoostingDefaultsApplyBeforePredict(t *testing.T) {
	x, y := quadraticDataset(20)

	b := NewBoosting(BoostingConfig{})
	require.NoError(t, b.Fit(x, y))

	assert.Equal(t, 100, b.Config.Rounds)
	assert.Equal(t, 0.1, b.Config.LearningRate)
	assert.Less(t, trainMAE(b.Predict, x, y), 15.0)
}

func TestMultiBoostingPredictsEachTarget(t *testing.T) {
	x := make([][]float64, 50)
	targets := make([][]float64, 50)
	for i := range x {
		v := float64(i)
		x[i] = []float64{v, 50 - v}
		targets[i] = []float64{3 + v, 50 - v}
	}

	m := NewMultiBoosting(BoostingConfig{Rounds: 60, LearningRate: 0.1, TreeParams: TreeParams{MaxDepth: 4, MinSamplesSplit: 2, MinSamplesLeaf: 1}})
	assert.False(t, m.Fitted())
	require.NoError(t, m.Fit(x, targets))
	assert.True(t, m.Fitted())

	out := m.Predict(x[10])
	require.Len(t, out, 2)
	assert.InDelta(t, targets[10][0], out[0], 1.0)
	assert.InDelta(t, targets[10][1], out[1], 1.0)
}

func TestBoostingJSONRoundTripPredictsIdentically(t *testing.T) {
	x, y := quadraticDataset(25)

	b := NewBoosting(BoostingConfig{Rounds: 15, LearningRate: 0.1, TreeParams: TreeParams{MaxDepth: 3, MinSamplesSplit: 2, MinSamplesLeaf: 1}})
	require.NoError(t, b.Fit(x, y))

	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var restored Boosting
	require.NoError(t, json.Unmarshal(raw, &restored))

	for _, row := range x {
		assert.Equal(t, b.Predict(row), restored.Predict(row))
	}
}
