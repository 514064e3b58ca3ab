package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"churn-prediction-engine/internal/services/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch <customers.csv>",
	Short: "Score every row of a customer CSV file",
	Long:  "Scores each data row of a CSV file and writes one JSON line per row. A run summary is printed to stderr.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		rt, err := loadRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		var out io.Writer = cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			defer f.Close()
			bw := bufio.NewWriter(f)
			defer bw.Flush()
			out = bw
		}

		batchID, _ := cmd.Flags().GetString("batch-id")
		if batchID == "" {
			batchID = defaultBatchID(args[0])
		}

		summary, err := batch.NewScorer(rt.Service).Run(cmd.Context(), batchID, string(content), out)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.ErrOrStderr())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	batchCmd.Flags().StringP("out", "o", "", "Write JSON lines to this file instead of stdout")
	batchCmd.Flags().String("batch-id", "", "Batch id used as request id prefix (default: file name plus random suffix)")
}

func defaultBatchID(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
}
