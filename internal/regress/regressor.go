// Package regress implements the tree regressors behind the score models:
// CART regression trees, bootstrap-aggregated random forests, and
// least-squares gradient boosting. Fitted models serialize to JSON without
// loss, so a reloaded artifact reproduces identical predictions.
package regress

// MultiRegressor is a jointly fitted multi-target regressor.
type MultiRegressor interface {
	Fit(x [][]float64, targets [][]float64) error
	Predict(x []float64) []float64
	Fitted() bool
}

// TreeParams bound the growth of a single regression tree.
type TreeParams struct {
	MaxDepth        int `json:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split"`
	MinSamplesLeaf  int `json:"min_samples_leaf"`
}

func (p TreeParams) normalized() TreeParams {
	if p.MaxDepth <= 0 {
		p.MaxDepth = 10
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	if p.MinSamplesLeaf < 1 {
		p.MinSamplesLeaf = 1
	}
	return p
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func targetColumn(targets [][]float64, col int) []float64 {
	column := make([]float64, len(targets))
	for i := range targets {
		column[i] = targets[i][col]
	}
	return column
}
