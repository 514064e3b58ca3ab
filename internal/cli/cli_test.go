package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-prediction-engine/internal/models"
)

const testArtifact = "../../artifacts/churn_model.json"

// run executes the root command and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestParseAssignments(t *testing.T) {
	fields, err := parseAssignments([]string{"Age=40", "Gender=Male", "Balance="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Age": "40", "Gender": "Male", "Balance": ""}, fields)

	_, err = parseAssignments([]string{"Age"})
	assert.Error(t, err)
	_, err = parseAssignments([]string{"=40"})
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "churnctl (devel)\n", out)
}

func TestInspectCommand(t *testing.T) {
	out, _, err := run(t, "inspect", testArtifact)
	require.NoError(t, err)
	assert.Contains(t, out, "Name:     bank-churn")
	assert.Contains(t, out, "Genders:  Female, Male")
	assert.Contains(t, out, "CreditScore")
}

func TestInspectCommand_InvalidArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x"}`), 0o600))

	_, _, err := run(t, "inspect", path)
	assert.ErrorIs(t, err, models.ErrInvalidArtifact)
}

func TestScoreCommand(t *testing.T) {
	args := []string{"score", "--model", testArtifact, "--json=false",
		"CreditScore=300", "Age=40", "Tenure=1", "Balance=10000", "NumOfProducts=1",
		"EstimatedSalary=50000", "HasCrCard=0", "IsActiveMember=0", "Gender=male"}

	out, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Churn probability:")
	assert.Contains(t, out, "Reasons:")
	assert.Contains(t, out, "threshold 0.40")
	assert.Contains(t, out, "Advice:")
}

func TestScoreCommand_JSONErrorResult(t *testing.T) {
	out, _, err := run(t, "score", "--model", testArtifact, "--json", "Gender=robot")
	require.NoError(t, err)

	var res models.ChurnResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Error)
	assert.Nil(t, res.Prob)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "customers.csv")
	out := filepath.Join(dir, "scored.jsonl")
	csv := "CustomerId,CreditScore,Geography,Gender,Age,Tenure,Balance,NumOfProducts,HasCrCard,IsActiveMember,EstimatedSalary\n" +
		"15634602,619,France,Female,42,2,0.00,1,1,1,101348.88\n" +
		"15647311,608,Spain,Female,41,1,83807.86,1,0,1,112542.58\n"
	require.NoError(t, os.WriteFile(in, []byte(csv), 0o600))

	_, stderr, err := run(t, "batch", in, "--model", testArtifact, "-o", out, "--batch-id", "cli-test")
	require.NoError(t, err)

	var summary struct {
		BatchID string `json:"batch_id"`
		Rows    int    `json:"rows"`
		Scored  int    `json:"scored"`
	}
	require.NoError(t, json.Unmarshal([]byte(stderr), &summary))
	assert.Equal(t, "cli-test", summary.BatchID)
	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 2, summary.Scored)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"customer_id":"15634602"`)
}

func TestDefaultBatchID(t *testing.T) {
	id := defaultBatchID("/data/march customers.csv")
	assert.True(t, strings.HasPrefix(id, "march customers-"), id)
	assert.Len(t, id, len("march customers-")+8)
}

func TestPublishCommand_UnknownTarget(t *testing.T) {
	_, _, err := run(t, "publish", testArtifact, "--to", "ftp")
	assert.ErrorContains(t, err, "unknown publish target")
}
