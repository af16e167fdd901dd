package trainer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yourusername/footy-forecast/internal/models"
)

// artifactSchemaVersion guards against loading artifacts written by an
// incompatible build.
const artifactSchemaVersion = 1

type artifactEnvelope struct {
	SchemaVersion int           `json:"schema_version"`
	Model         *TrainedModel `json:"model"`
}

// SaveModel persists the trained model as a JSON artifact. The file is
// written to a temporary name first and renamed into place, so readers never
// observe a half-written artifact.
func SaveModel(model *TrainedModel, path string) error {
	if !model.Fitted() {
		return models.ErrUntrainedModel
	}
	if path == "" {
		return fmt.Errorf("artifact path is required")
	}

	data, err := json.Marshal(artifactEnvelope{
		SchemaVersion: artifactSchemaVersion,
		Model:         model,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal model artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close model artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move model artifact into place: %w", err)
	}
	return nil
}

// LoadModel reads a JSON artifact back into a ready-to-serve model. Loaded
// models reproduce the exact predictions of the model that was saved: the
// tree parameters survive the JSON round trip bit for bit.
func LoadModel(path string) (*TrainedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var envelope artifactEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if envelope.SchemaVersion != artifactSchemaVersion {
		return nil, fmt.Errorf("unsupported artifact schema version %d, want %d",
			envelope.SchemaVersion, artifactSchemaVersion)
	}
	if !envelope.Model.Fitted() {
		return nil, models.ErrUntrainedModel
	}
	return envelope.Model, nil
}
