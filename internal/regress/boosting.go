package regress

import "fmt"

// BoostingConfig configures gradient-boosted regression trees with a squared
// error loss.
type BoostingConfig struct {
	Rounds       int     `json:"rounds"`
	LearningRate float64 `json:"learning_rate"`
	TreeParams
}

func (c BoostingConfig) normalized() BoostingConfig {
	if c.Rounds <= 0 {
		c.Rounds = 100
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.1
	}
	c.TreeParams = c.TreeParams.normalized()
	return c
}

// Boosting is a single-output gradient boosting regressor. Each round fits a
// tree to the residuals of the running prediction and adds it scaled by the
// learning rate.
type Boosting struct {
	Config BoostingConfig `json:"config"`
	Init   float64        `json:"init"`
	Trees  []*Tree        `json:"trees"`
}

// NewBoosting creates an unfitted booster. The configuration is normalized
// here so Fit and Predict agree on the effective learning rate.
func NewBoosting(cfg BoostingConfig) *Boosting {
	return &Boosting{Config: cfg.normalized()}
}

// Fit runs the boosting rounds. Training is deterministic: trees always scan
// every feature and every row.
func (b *Boosting) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("boosting fit: empty training set")
	}
	if len(x) != len(y) {
		return fmt.Errorf("boosting fit: %d rows against %d targets", len(x), len(y))
	}
	b.Config = b.Config.normalized()

	b.Init = meanOf(y)
	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = b.Init
	}

	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}

	residual := make([]float64, len(y))
	trees := make([]*Tree, 0, b.Config.Rounds)
	for round := 0; round < b.Config.Rounds; round++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}
		tree := growTree(x, residual, indices, b.Config.TreeParams, nil, 0)
		trees = append(trees, tree)
		for i, row := range x {
			pred[i] += b.Config.LearningRate * tree.Predict(row)
		}
	}

	b.Trees = trees
	return nil
}

// Predict evaluates the additive ensemble for one feature vector.
func (b *Boosting) Predict(x []float64) float64 {
	out := b.Init
	for _, t := range b.Trees {
		out += b.Config.LearningRate * t.Predict(x)
	}
	return out
}

// MultiBoosting predicts several targets with one booster per target column.
type MultiBoosting struct {
	Config  BoostingConfig `json:"config"`
	Outputs []*Boosting    `json:"outputs"`
}

// NewMultiBoosting creates an unfitted multi-target booster.
func NewMultiBoosting(cfg BoostingConfig) *MultiBoosting {
	return &MultiBoosting{Config: cfg.normalized()}
}

// Fit trains one booster per target column.
func (m *MultiBoosting) Fit(x [][]float64, targets [][]float64) error {
	if len(targets) == 0 || len(targets) != len(x) {
		return fmt.Errorf("multi boosting fit: %d rows against %d target rows", len(x), len(targets))
	}

	width := len(targets[0])
	outputs := make([]*Boosting, width)
	for col := 0; col < width; col++ {
		booster := NewBoosting(m.Config)
		if err := booster.Fit(x, targetColumn(targets, col)); err != nil {
			return fmt.Errorf("failed to fit booster for target %d: %w", col, err)
		}
		outputs[col] = booster
	}

	m.Outputs = outputs
	return nil
}

// Predict returns one value per fitted target.
func (m *MultiBoosting) Predict(x []float64) []float64 {
	out := make([]float64, len(m.Outputs))
	for i, b := range m.Outputs {
		out[i] = b.Predict(x)
	}
	return out
}

// Fitted reports whether Fit has completed.
func (m *MultiBoosting) Fitted() bool {
	return len(m.Outputs) > 0
}
