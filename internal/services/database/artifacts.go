package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"churn-prediction-engine/internal/models"
)

const artifactSchema = `
	CREATE TABLE IF NOT EXISTS model_artifacts (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		version     TEXT NOT NULL,
		model_type  TEXT NOT NULL,
		format      TEXT NOT NULL,
		payload     BYTEA NOT NULL,
		checksum    TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (name, version)
	);
	CREATE INDEX IF NOT EXISTS idx_model_artifacts_name_created
		ON model_artifacts (name, created_at DESC);`

// ArtifactRepository handles versioned model artifacts.
type ArtifactRepository struct {
	db *DB
}

// NewArtifactRepository creates a new artifact repository.
func NewArtifactRepository(db *DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Checksum returns the hex sha256 of an artifact payload.
func Checksum(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// EnsureSchema creates the artifacts table if it does not exist.
func (r *ArtifactRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, artifactSchema); err != nil {
		return fmt.Errorf("failed to create model_artifacts schema: %w", err)
	}
	return nil
}

// Create publishes a new artifact version. Versions are immutable: publishing
// an existing name and version returns models.ErrArtifactExists.
func (r *ArtifactRepository) Create(ctx context.Context, in *models.ModelArtifactCreate) (*models.ModelArtifact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO model_artifacts (name, version, model_type, format, payload, checksum, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name, version) DO NOTHING
		RETURNING id, created_at`

	out := &models.ModelArtifact{
		Name:        in.Name,
		Version:     in.Version,
		ModelType:   in.ModelType,
		Format:      in.Format,
		Payload:     in.Payload,
		Checksum:    Checksum(in.Payload),
		Description: in.Description,
	}

	err := r.db.QueryRowContext(ctx, query,
		out.Name,
		out.Version,
		out.ModelType,
		string(out.Format),
		out.Payload,
		out.Checksum,
		out.Description,
		time.Now().UTC(),
	).Scan(&out.ID, &out.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s@%s", models.ErrArtifactExists, in.Name, in.Version)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create model artifact: %w", err)
	}

	return out, nil
}

// GetArtifact fetches an artifact by name and version. An empty version
// returns the most recently published one.
func (r *ArtifactRepository) GetArtifact(ctx context.Context, name, version string) (*models.ModelArtifact, error) {
	var row pgx.Row
	if version == "" {
		row = r.db.QueryRowContext(ctx, `
			SELECT id, name, version, model_type, format, payload, checksum, description, created_at
			FROM model_artifacts
			WHERE name = $1
			ORDER BY created_at DESC, id DESC
			LIMIT 1`, name)
	} else {
		row = r.db.QueryRowContext(ctx, `
			SELECT id, name, version, model_type, format, payload, checksum, description, created_at
			FROM model_artifacts
			WHERE name = $1 AND version = $2`, name, version)
	}

	a, err := scanArtifact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrArtifactNotFound, artifactRef(name, version))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model artifact: %w", err)
	}

	if err := verifyChecksum(a); err != nil {
		return nil, err
	}

	return a, nil
}

// List returns the published versions of name, newest first, without payloads.
func (r *ArtifactRepository) List(ctx context.Context, name string) ([]*models.ModelArtifact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, version, model_type, format, checksum, description, created_at
		FROM model_artifacts
		WHERE name = $1
		ORDER BY created_at DESC, id DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to list model artifacts: %w", err)
	}
	defer rows.Close()

	var out []*models.ModelArtifact
	for rows.Next() {
		a := &models.ModelArtifact{}
		var format string
		if err := rows.Scan(&a.ID, &a.Name, &a.Version, &a.ModelType, &format, &a.Checksum, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model artifact: %w", err)
		}
		a.Format = models.ArtifactFormat(format)
		out = append(out, a)
	}

	return out, rows.Err()
}

func scanArtifact(row pgx.Row) (*models.ModelArtifact, error) {
	a := &models.ModelArtifact{}
	var format string
	err := row.Scan(&a.ID, &a.Name, &a.Version, &a.ModelType, &format, &a.Payload, &a.Checksum, &a.Description, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Format = models.ArtifactFormat(format)
	return a, nil
}

func verifyChecksum(a *models.ModelArtifact) error {
	if got := Checksum(a.Payload); got != a.Checksum {
		return fmt.Errorf("%w: checksum mismatch for %s@%s", models.ErrInvalidArtifact, a.Name, a.Version)
	}
	return nil
}

func artifactRef(name, version string) string {
	if version == "" {
		return name + "@latest"
	}
	return name + "@" + version
}
