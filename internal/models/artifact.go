package models

import (
	"fmt"
	"time"
)

// ArtifactFormat identifies the encoding of a model artifact payload.
type ArtifactFormat string

const (
	ArtifactFormatJSON ArtifactFormat = "json"
	ArtifactFormatYAML ArtifactFormat = "yaml"
)

// IsValid checks if the artifact format is supported.
func (f ArtifactFormat) IsValid() bool {
	return f == ArtifactFormatJSON || f == ArtifactFormatYAML
}

// ModelArtifact is a versioned model artifact stored in the registry.
type ModelArtifact struct {
	ID          int64          `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Version     string         `json:"version" db:"version"`
	ModelType   string         `json:"model_type" db:"model_type"`
	Format      ArtifactFormat `json:"format" db:"format"`
	Payload     []byte         `json:"-" db:"payload"`
	Checksum    string         `json:"checksum" db:"checksum"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	Description string         `json:"description,omitempty" db:"description"`
}

// ModelArtifactCreate represents the data needed to publish an artifact.
type ModelArtifactCreate struct {
	Name        string
	Version     string
	ModelType   string
	Format      ArtifactFormat
	Payload     []byte
	Description string
}

// Validate checks the fields required to publish an artifact.
func (c *ModelArtifactCreate) Validate() error {
	if c.Name == "" || c.Version == "" {
		return fmt.Errorf("%w: name and version are required", ErrInvalidArtifact)
	}
	if !c.Format.IsValid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidArtifact, c.Format)
	}
	if len(c.Payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidArtifact)
	}
	return nil
}
