package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/database"
	s3service "churn-prediction-engine/internal/services/s3"
)

var publishCmd = &cobra.Command{
	Use:   "publish <artifact>",
	Short: "Validate a model artifact and publish it to S3 or the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		af, err := readArtifact(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		to, _ := cmd.Flags().GetString("to")
		w := cmd.OutOrStdout()

		switch to {
		case config.ModelSourceS3:
			key, _ := cmd.Flags().GetString("key")
			if key == "" {
				key = cfg.ModelS3Key
			}
			force, _ := cmd.Flags().GetBool("force")

			store, err := s3service.NewService(ctx, cfg)
			if err != nil {
				return err
			}
			exists, err := store.FileExists(ctx, key)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%w: s3://%s/%s (use --force to overwrite)", models.ErrArtifactExists, store.Bucket(), key)
			}
			if err := store.UploadFile(ctx, key, af.Data, contentType(af.Format)); err != nil {
				return err
			}
			fmt.Fprintf(w, "Published %s@%s to s3://%s/%s\n", af.Bundle.Name, af.Bundle.Version, store.Bucket(), key)

		case config.ModelSourcePostgres:
			description, _ := cmd.Flags().GetString("description")

			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := database.NewArtifactRepository(db)
			if err := repo.EnsureSchema(ctx); err != nil {
				return err
			}
			created, err := repo.Create(ctx, &models.ModelArtifactCreate{
				Name:        af.Bundle.Name,
				Version:     af.Bundle.Version,
				ModelType:   af.Bundle.ModelType,
				Format:      af.Format,
				Payload:     af.Data,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Published %s@%s to the registry (id %d, sha256 %s)\n", created.Name, created.Version, created.ID, created.Checksum)

		default:
			return fmt.Errorf("unknown publish target %q: use s3 or postgres", to)
		}

		return nil
	},
}

func init() {
	publishCmd.Flags().String("to", config.ModelSourceS3, "Publish target: s3 or postgres")
	publishCmd.Flags().String("key", "", "S3 object key (default MODEL_S3_KEY)")
	publishCmd.Flags().Bool("force", false, "Overwrite an existing S3 object")
	publishCmd.Flags().String("description", "", "Registry description")
}

func contentType(f models.ArtifactFormat) string {
	if f == models.ArtifactFormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

