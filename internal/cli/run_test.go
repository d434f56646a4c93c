package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/testrig/internal/store"
)

func TestRunCommand_AllPassed(t *testing.T) {
	out, _, err := executeCommand(t, newTestRegistry(t), "run", "--filter", "pass")
	require.NoError(t, err)

	assert.Equal(t, "success : adds numbers\nreport : success: 1 failure: 0\n", out)
}

func TestRunCommand_Failures(t *testing.T) {
	out, _, err := executeCommand(t, newTestRegistry(t), "run", "--timeout", "10ms", "--timeout-message", "late")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 of 3 tests failed")

	assert.Equal(t, "success : adds numbers\n"+
		"report : success: 1 failure: 0\n"+
		"failure : fails check : \"X\"\n"+
		"report : success: 1 failure: 1\n"+
		"failure : never resumes : \"late\"\n"+
		"report : success: 1 failure: 2\n", out)
}

func TestRunCommand_Quiet(t *testing.T) {
	out, _, err := executeCommand(t, newTestRegistry(t), "run", "--filter", "pass", "-q")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRunCommand_JSON(t *testing.T) {
	out, _, err := executeCommand(t, newTestRegistry(t), "run", "--filter", "[pf]a*", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		RunID  string `json:"run_id"`
		Data   struct {
			RunID        string `json:"run_id"`
			SuccessCount int    `json:"success_count"`
			FailureCount int    `json:"failure_count"`
			Suites       []struct {
				Name string `json:"name"`
			} `json:"suites"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "stdout must be a single JSON document: %s", out)
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, resp.RunID, resp.Data.RunID)
	assert.Equal(t, 1, resp.Data.SuccessCount)
	assert.Equal(t, 1, resp.Data.FailureCount)
	require.Len(t, resp.Data.Suites, 2)
	assert.Equal(t, "pass", resp.Data.Suites[0].Name)
	assert.Equal(t, "fail", resp.Data.Suites[1].Name)
}

func TestRunCommand_NoMatch(t *testing.T) {
	_, _, err := executeCommand(t, newTestRegistry(t), "run", "--filter", "nothing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "nothing to run")
}

func TestRunCommand_InvalidTimeout(t *testing.T) {
	_, _, err := executeCommand(t, newTestRegistry(t), "run", "--timeout", "0s")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "timeout must be positive")
}

func TestRunCommand_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testrig.yaml")
	cfg := "timeout: 10ms\ntimeout_message: \"from config\"\nfilter: slow\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))

	out, _, err := executeCommand(t, newTestRegistry(t), "run", "--config", path)
	require.Error(t, err)
	assert.Contains(t, out, `failure : never resumes : "from config"`)

	// Flags win over the file.
	out, _, err = executeCommand(t, newTestRegistry(t), "run", "--config", path, "--filter", "pass")
	require.NoError(t, err)
	assert.Contains(t, out, "success : adds numbers")
}

func TestRunCommand_RecordsHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	_, _, err := executeCommand(t, newTestRegistry(t), "run", "--filter", "pass", "--store", dbPath)
	require.NoError(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].SuccessCount)
	assert.Equal(t, 0, runs[0].FailureCount)
}

func TestRunCommand_VerboseLogsToStderr(t *testing.T) {
	out, errOut, err := executeCommand(t, newTestRegistry(t), "run", "--filter", "pass", "-v")
	require.NoError(t, err)

	assert.NotContains(t, out, "level=")
	assert.Contains(t, errOut, "run starting")
	assert.Contains(t, errOut, "test_succeeded")
}
