package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"churn-prediction-engine/internal/models"
)

var scoreCmd = &cobra.Command{
	Use:   "score Field=value...",
	Short: "Score a single customer",
	Example: `  churnctl score CreditScore=619 Age=42 Tenure=2 Balance=0 NumOfProducts=1 \
    EstimatedSalary=101348.88 HasCrCard=1 IsActiveMember=1 Gender=Female`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := parseAssignments(args)
		if err != nil {
			return err
		}

		rt, err := loadRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		result := rt.Service.Predict(cmd.Context(), fields)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	scoreCmd.Flags().Bool("json", false, "Print the raw JSON result")
}

// parseAssignments turns Key=value arguments into prediction fields.
func parseAssignments(args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected Field=value", arg)
		}
		fields[key] = value
	}
	return fields, nil
}

func printResult(w io.Writer, res *models.ChurnResult) {
	fmt.Fprintln(w, res.ResultText)
	if res.Error {
		return
	}

	fmt.Fprintf(w, "Churn probability: %s (%d%%), threshold %.2f\n", *res.Prob, res.ProbPercent, res.Threshold)

	fmt.Fprintln(w, "\nReasons:")
	for _, r := range res.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	fmt.Fprintln(w, "\nAdvice:")
	for _, a := range res.Advice {
		fmt.Fprintf(w, "  %s\n", a)
	}
}
