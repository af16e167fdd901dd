package regress

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
)

// ForestConfig configures a bootstrap-aggregated random forest.
type ForestConfig struct {
	Trees       int   `json:"trees"`
	Seed        int64 `json:"seed"`
	MaxFeatures int   `json:"max_features,omitempty"` // 0 scans all features
	Workers     int   `json:"-"`                      // 0 uses all CPUs
	TreeParams
}

func (c ForestConfig) normalized() ForestConfig {
	if c.Trees <= 0 {
		c.Trees = 100
	}
	c.TreeParams = c.TreeParams.normalized()
	return c
}

// Forest is a single-output random forest regressor.
type Forest struct {
	Config ForestConfig `json:"config"`
	Trees  []*Tree      `json:"trees"`
}

// NewForest creates an unfitted forest.
func NewForest(cfg ForestConfig) *Forest {
	return &Forest{Config: cfg.normalized()}
}

// Fit grows the configured number of trees on bootstrap resamples. Each tree
// derives a private seed from the base seed, so the result is independent of
// goroutine scheduling.
func (f *Forest) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("forest fit: empty training set")
	}
	if len(x) != len(y) {
		return fmt.Errorf("forest fit: %d rows against %d targets", len(x), len(y))
	}
	f.Config = f.Config.normalized()

	workers := f.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	trees := make([]*Tree, f.Config.Trees)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for t := range trees {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rng := rand.New(rand.NewSource(f.Config.Seed + int64(t)))
			sample := make([]int, len(x))
			for i := range sample {
				sample[i] = rng.Intn(len(x))
			}
			trees[t] = growTree(x, y, sample, f.Config.TreeParams, rng, f.Config.MaxFeatures)
		}(t)
	}
	wg.Wait()

	f.Trees = trees
	return nil
}

// Predict averages the fitted trees for one feature vector.
func (f *Forest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(f.Trees))
}

// MultiForest predicts several targets with one independently fitted forest
// per target column, all sharing the same configuration.
type MultiForest struct {
	Config  ForestConfig `json:"config"`
	Outputs []*Forest    `json:"outputs"`
}

// NewMultiForest creates an unfitted multi-target forest.
func NewMultiForest(cfg ForestConfig) *MultiForest {
	return &MultiForest{Config: cfg.normalized()}
}

// Fit trains one forest per target column.
func (m *MultiForest) Fit(x [][]float64, targets [][]float64) error {
	if len(targets) == 0 || len(targets) != len(x) {
		return fmt.Errorf("multi forest fit: %d rows against %d target rows", len(x), len(targets))
	}

	width := len(targets[0])
	outputs := make([]*Forest, width)
	for col := 0; col < width; col++ {
		forest := NewForest(m.Config)
		if err := forest.Fit(x, targetColumn(targets, col)); err != nil {
			return fmt.Errorf("failed to fit forest for target %d: %w", col, err)
		}
		outputs[col] = forest
	}

	m.Outputs = outputs
	return nil
}

// Predict returns one value per fitted target.
func (m *MultiForest) Predict(x []float64) []float64 {
	out := make([]float64, len(m.Outputs))
	for i, f := range m.Outputs {
		out[i] = f.Predict(x)
	}
	return out
}

// Fitted reports whether Fit has completed.
func (m *MultiForest) Fitted() bool {
	return len(m.Outputs) > 0
}
