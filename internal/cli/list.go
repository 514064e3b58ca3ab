package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"churn-prediction-engine/internal/config"
	"churn-prediction-engine/internal/services/database"
	s3service "churn-prediction-engine/internal/services/s3"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List published model artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		from, _ := cmd.Flags().GetString("from")
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer tw.Flush()

		switch from {
		case config.ModelSourceS3:
			prefix, _ := cmd.Flags().GetString("prefix")
			store, err := s3service.NewService(ctx, cfg)
			if err != nil {
				return err
			}
			objects, err := store.ListFiles(ctx, prefix, 100)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "KEY\tSIZE\tLAST MODIFIED")
			for _, o := range objects {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format("2006-01-02 15:04:05"))
			}

		case config.ModelSourcePostgres:
			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			artifacts, err := database.NewArtifactRepository(db).List(ctx, cfg.ModelName)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "ID\tNAME\tVERSION\tTYPE\tFORMAT\tCREATED\tDESCRIPTION")
			for _, a := range artifacts {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Name, a.Version, a.ModelType, a.Format, a.CreatedAt.Format("2006-01-02 15:04:05"), a.Description)
			}

		default:
			return fmt.Errorf("unknown artifact store %q: use s3 or postgres", from)
		}

		return nil
	},
}

func init() {
	listCmd.Flags().String("from", config.ModelSourcePostgres, "Artifact store: s3 or postgres")
	listCmd.Flags().String("prefix", "models/", "S3 key prefix")
}
