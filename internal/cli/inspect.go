package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"churn-prediction-engine/internal/models"
	"churn-prediction-engine/internal/services/classifier"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact>",
	Short: "Validate a model artifact and print what it contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		af, err := readArtifact(args[0])
		if err != nil {
			return err
		}

		b := af.Bundle
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Name:     %s\n", b.Name)
		fmt.Fprintf(w, "Version:  %s\n", b.Version)
		fmt.Fprintf(w, "Type:     %s\n", b.ModelType)
		fmt.Fprintf(w, "Format:   %s\n", af.Format)
		fmt.Fprintf(w, "Classes:  %v (churn column %d)\n", b.Classifier.Classes(), classifier.ChurnIndex(b.Classifier.Classes()))
		fmt.Fprintf(w, "Genders:  %s\n", strings.Join(b.Gender.Classes(), ", "))
		fmt.Fprintf(w, "Features: %s\n", strings.Join(af.Artifact.FeatureNames, ", "))
		return nil
	},
}

// artifactFile is a model artifact read from disk and fully built.
type artifactFile struct {
	Data     []byte
	Format   models.ArtifactFormat
	Artifact *classifier.Artifact
	Bundle   *classifier.Bundle
}

func readArtifact(path string) (*artifactFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	format := classifier.FormatFromPath(path)
	art, err := classifier.Decode(data, format)
	if err != nil {
		return nil, err
	}
	bundle, err := art.Build()
	if err != nil {
		return nil, err
	}

	return &artifactFile{Data: data, Format: format, Artifact: art, Bundle: bundle}, nil
}
