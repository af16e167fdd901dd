// Package trainer fits, evaluates and persists the score prediction models.
package trainer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/footy-forecast/internal/datagen"
	"github.com/yourusername/footy-forecast/internal/features"
	"github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/regress"
)

const (
	// DefaultSamples is the synthetic dataset size used when none is configured.
	DefaultSamples = 5000

	testFraction = 0.2
	splitSeed    = 42
	modelSeed    = 42
)

// TrainConfig controls dataset generation and model selection.
type TrainConfig struct {
	ModelType string `json:"model_type"`
	Samples   int    `json:"samples"`
	Seed      int64  `json:"seed"`
}

// Split holds the train/test partition of an engineered dataset.
type Split struct {
	XTrain [][]float64
	YTrain [][]float64
	XTest  [][]float64
	YTest  [][]float64
}

// Trainer prepares datasets and fits prediction models.
type Trainer struct {
	cfg      TrainConfig
	engineer *features.Engineer
	log      *logger.TrainingLogger
}

// NewTrainer creates a trainer for the configured model family.
func NewTrainer(cfg TrainConfig, baseLogger *logrus.Logger) (*Trainer, error) {
	if cfg.ModelType == "" {
		cfg.ModelType = models.ModelTypeEnsemble
	}
	switch cfg.ModelType {
	case models.ModelTypeRF, models.ModelTypeGBT, models.ModelTypeEnsemble:
	default:
		return nil, fmt.Errorf("unknown model type %q, want rf, gbt or ensemble", cfg.ModelType)
	}
	if cfg.Samples <= 0 {
		cfg.Samples = DefaultSamples
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
	}

	return &Trainer{
		cfg:      cfg,
		engineer: features.New(),
		log:      logger.NewTrainingLogger(baseLogger),
	}, nil
}

// Config returns the trainer configuration.
func (t *Trainer) Config() TrainConfig {
	return t.cfg
}

// Engineer returns the feature engineer the trainer fits against.
func (t *Trainer) Engineer() *features.Engineer {
	return t.engineer
}

// PrepareData generates a synthetic dataset and splits it for training.
func (t *Trainer) PrepareData() (*Split, error) {
	gen := datagen.New(t.cfg.Seed)
	records := gen.Dataset(t.cfg.Samples)
	t.log.LogDatasetGenerated(len(records), t.cfg.Seed)
	return t.SplitRecords(records)
}

// SplitRecords engineers features for the records and performs the 80/20
// train/test split. The split permutation is fixed so repeated runs on the
// same dataset train on the same rows.
func (t *Trainer) SplitRecords(records []models.MatchRecord) (*Split, error) {
	if len(records) == 0 {
		return nil, models.ErrEmptyDataset
	}

	x, y := t.engineer.Matrix(records)
	return splitData(x, y, testFraction, splitSeed)
}

// Train fits the configured models on the train partition and evaluates them
// on the test partition.
func (t *Trainer) Train(split *Split) (*TrainedModel, error) {
	if split == nil || len(split.XTrain) == 0 {
		return nil, models.ErrEmptyDataset
	}

	model := &TrainedModel{
		Info: models.ModelInfo{
			ID:              uuid.New(),
			ModelType:       t.cfg.ModelType,
			FeatureNames:    t.engineer.FeatureNames(),
			TrainingSamples: len(split.XTrain),
			TrainedAt:       time.Now().UTC(),
		},
	}

	start := time.Now()
	switch t.cfg.ModelType {
	case models.ModelTypeRF:
		forest := regress.NewMultiForest(singleForestConfig())
		if err := forest.Fit(split.XTrain, split.YTrain); err != nil {
			return nil, fmt.Errorf("failed to train random forest: %w", err)
		}
		model.Forest = forest
	case models.ModelTypeGBT:
		booster := regress.NewMultiBoosting(boostingConfig())
		if err := booster.Fit(split.XTrain, split.YTrain); err != nil {
			return nil, fmt.Errorf("failed to train gradient boosting: %w", err)
		}
		model.Booster = booster
	case models.ModelTypeEnsemble:
		forest := regress.NewMultiForest(ensembleForestConfig())
		if err := forest.Fit(split.XTrain, split.YTrain); err != nil {
			return nil, fmt.Errorf("failed to train random forest: %w", err)
		}
		booster := regress.NewMultiBoosting(boostingConfig())
		if err := booster.Fit(split.XTrain, split.YTrain); err != nil {
			return nil, fmt.Errorf("failed to train gradient boosting: %w", err)
		}
		model.Forest = forest
		model.Booster = booster
	}

	t.log.LogTrainingCompleted(model.Info.ID.String(), t.cfg.ModelType, len(split.XTrain),
		float64(time.Since(start).Milliseconds()))

	metrics, err := Evaluate(model, split)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate model: %w", err)
	}
	model.Info.Metrics = metrics

	t.log.LogEvaluationCompleted(t.cfg.ModelType, map[string]float64{
		"mae":             metrics.MAE,
		"rmse":            metrics.RMSE,
		"winner_accuracy": metrics.WinnerAccuracy,
	})

	return model, nil
}

// Run generates data, trains and evaluates in one pass.
func (t *Trainer) Run() (*TrainedModel, error) {
	split, err := t.PrepareData()
	if err != nil {
		return nil, err
	}
	return t.Train(split)
}

func ensembleForestConfig() regress.ForestConfig {
	return regress.ForestConfig{
		Trees: 200,
		Seed:  modelSeed,
		TreeParams: regress.TreeParams{
			MaxDepth:        15,
			MinSamplesSplit: 5,
			MinSamplesLeaf:  1,
		},
	}
}

// singleForestConfig matches ensembleForestConfig except for a larger leaf
// size, which smooths predictions when the forest runs without a partner.
func singleForestConfig() regress.ForestConfig {
	cfg := ensembleForestConfig()
	cfg.MinSamplesLeaf = 2
	return cfg
}

func boostingConfig() regress.BoostingConfig {
	return regress.BoostingConfig{
		Rounds:       200,
		LearningRate: 0.1,
		TreeParams: regress.TreeParams{
			MaxDepth:        8,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
		},
	}
}

func splitData(x, y [][]float64, fraction float64, seed int64) (*Split, error) {
	n := len(x)
	if n < 2 {
		return nil, fmt.Errorf("need at least 2 samples to split, got %d", n)
	}

	testSize := int(float64(n) * fraction)
	if testSize < 1 {
		testSize = 1
	}
	trainSize := n - testSize

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	split := &Split{
		XTrain: make([][]float64, 0, trainSize),
		YTrain: make([][]float64, 0, trainSize),
		XTest:  make([][]float64, 0, testSize),
		YTest:  make([][]float64, 0, testSize),
	}
	for pos, idx := range indices {
		if pos < trainSize {
			split.XTrain = append(split.XTrain, x[idx])
			split.YTrain = append(split.YTrain, y[idx])
		} else {
			split.XTest = append(split.XTest, x[idx])
			split.YTest = append(split.YTest, y[idx])
		}
	}
	return split, nil
}
