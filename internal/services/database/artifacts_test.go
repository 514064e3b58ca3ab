package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/models"
)

func TestChecksum(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Checksum(nil))
	assert.NotEqual(t, Checksum([]byte("a")), Checksum([]byte("b")))
}

func TestVerifyChecksum(t *testing.T) {
	a := &models.ModelArtifact{Name: "bank-churn", Version: "1", Payload: []byte("{}")}
	a.Checksum = Checksum(a.Payload)
	assert.NoError(t, verifyChecksum(a))

	a.Payload = []byte(`{"tampered":true}`)
	assert.ErrorIs(t, verifyChecksum(a), models.ErrInvalidArtifact)
}

func TestArtifactRef(t *testing.T) {
	assert.Equal(t, "bank-churn@latest", artifactRef("bank-churn", ""))
	assert.Equal(t, "bank-churn@1.3.0", artifactRef("bank-churn", "1.3.0"))
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   models.ModelArtifactCreate
	}{
		{"missing version", models.ModelArtifactCreate{Name: "x", Format: models.ArtifactFormatJSON, Payload: []byte("{}")}},
		{"bad format", models.ModelArtifactCreate{Name: "x", Version: "1", Format: "toml", Payload: []byte("{}")}},
		{"empty payload", models.ModelArtifactCreate{Name: "x", Version: "1", Format: models.ArtifactFormatYAML}},
	}

	repo := NewArtifactRepository(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(context.Background(), &tt.in)
			assert.ErrorIs(t, err, models.ErrInvalidArtifact)
		})
	}
}

// TestArtifactRepository_Postgres runs against a real database when
// CHURN_INTEGRATION_DB=1 and the DB_* variables point at it.
func TestArtifactRepository_Postgres(t *testing.T) {
	if os.Getenv("CHURN_INTEGRATION_DB") != "1" {
		t.Skip("Database not configured")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := NewArtifactRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))

	name := fmt.Sprintf("churn-test-%s", uuid.NewString())
	payload := []byte(`{"name":"` + name + `"}`)

	for _, v := range []string{"1", "2"} {
		_, err := repo.Create(ctx, &models.ModelArtifactCreate{
			Name: name, Version: v, ModelType: "logistic_regression",
			Format: models.ArtifactFormatJSON, Payload: payload,
		})
		require.NoError(t, err)
	}

	_, err = repo.Create(ctx, &models.ModelArtifactCreate{
		Name: name, Version: "2", ModelType: "logistic_regression",
		Format: models.ArtifactFormatJSON, Payload: payload,
	})
	assert.ErrorIs(t, err, models.ErrArtifactExists)

	latest, err := repo.GetArtifact(ctx, name, "")
	require.NoError(t, err)
	assert.Equal(t, "2", latest.Version)
	assert.Equal(t, payload, latest.Payload)

	first, err := repo.GetArtifact(ctx, name, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", first.Version)

	_, err = repo.GetArtifact(ctx, name, "9")
	assert.ErrorIs(t, err, models.ErrArtifactNotFound)

	list, err := repo.List(ctx, name)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].Payload)

	_, err = db.ExecContext(ctx, "DELETE FROM model_artifacts WHERE name = $1", name)
	require.NoError(t, err)
}
