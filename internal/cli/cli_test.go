package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCommand()

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "catalog.db")
}

func stats(t *testing.T, db string) StatsResult {
	t.Helper()

	stdout, _, err := execute(t, "stats", "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string
		Data   StatsResult
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Equal(t, "ok", resp.Status)

	return resp.Data
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "catalogctl", cmd.Use)

	for _, name := range []string{"validate", "import", "export", "stats"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		name     string
		defValue string
	}{
		{name: "format", defValue: "text"},
		{name: "config-profile", defValue: ""},
		{name: "db", defValue: ""},
		{name: "verbose", defValue: "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := execute(t, "stats", "--format", "yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestValidate(t *testing.T) {
	t.Run("text report", func(t *testing.T) {
		stdout, _, err := execute(t, "validate", "testdata/clean.json")

		require.NoError(t, err)
		assert.Contains(t, stdout, "clean.json: Would import 3, skipped 1, failed 0")
		assert.Contains(t, stdout, "Duplicate quote detected")
	})

	t.Run("json report", func(t *testing.T) {
		stdout, _, err := execute(t, "validate", "testdata/clean.json", "--format", "json")
		require.NoError(t, err)

		var resp struct {
			Status string
			Data   ImportResult
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &resp))

		assert.Equal(t, "ok", resp.Status)
		assert.True(t, resp.Data.DryRun)
		assert.Equal(t, "json", resp.Data.Format)
		assert.Equal(t, 3, resp.Data.Imported)
		assert.Equal(t, 1, resp.Data.Skipped)
	})

	t.Run("dry run leaves database untouched", func(t *testing.T) {
		db := tempDB(t)

		_, _, err := execute(t, "validate", "testdata/clean.json", "--db", db)
		require.NoError(t, err)

		assert.Equal(t, 6, stats(t, db).Quotes)
	})
}

func TestImport(t *testing.T) {
	t.Run("persists to database", func(t *testing.T) {
		db := tempDB(t)

		stdout, _, err := execute(t, "import", "testdata/clean.json", "--db", db)
		require.NoError(t, err)
		assert.Contains(t, stdout, "clean.json: Imported 3, skipped 1, failed 0")

		got := stats(t, db)
		assert.Equal(t, 7, got.Quotes)
		assert.Equal(t, 5, got.Authors)
		assert.Equal(t, 7, got.Topics)
	})

	t.Run("rejected rows exit with failure", func(t *testing.T) {
		stdout, _, err := execute(t, "import", "testdata/rejected.csv", "--format", "json")
		require.Error(t, err)

		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, stdout, `"code": "RECORDS_FAILED"`)
		assert.Contains(t, stdout, `Unknown author \"Oscar Wilde\"`)
	})

	t.Run("atomic import rolls back", func(t *testing.T) {
		db := tempDB(t)

		stdout, _, err := execute(t, "import", "testdata/rejected.csv", "--atomic", "--db", db)
		require.Error(t, err)
		assert.Contains(t, stdout, "rolled back")

		assert.Equal(t, 6, stats(t, db).Quotes)
	})

	t.Run("missing file is a command error", func(t *testing.T) {
		_, _, err := execute(t, "import", "testdata/missing.json")

		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("input flag overrides extension", func(t *testing.T) {
		stdout, _, err := execute(t, "validate", "testdata/clean.json", "--input", "csv")

		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, stdout, "INVALID_FILE")
	})
}

func TestExport(t *testing.T) {
	t.Run("csv to stdout", func(t *testing.T) {
		stdout, _, err := execute(t, "export", "--format", "csv")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		require.Len(t, lines, 7)
		assert.Equal(t, "ID,Text,Author,Category,Featured,Likes,Shares", strings.TrimSpace(lines[0]))
	})

	t.Run("json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.json")

		stdout, stderr, err := execute(t, "export", "-o", path)
		require.NoError(t, err)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "Exported 6 quotes to "+path)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.Contains(t, doc, "quotes")
		assert.Contains(t, doc, "authors")
	})

	t.Run("unknown file format", func(t *testing.T) {
		_, _, err := execute(t, "export", "--format", "xml")

		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
	})
}

func TestStats_Text(t *testing.T) {
	stdout, _, err := execute(t, "stats")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Quotes")
	assert.Contains(t, stdout, "Albert Einstein")
	assert.Contains(t, stdout, "ID  AUTHOR")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "plain error", err: errors.New("boom"), want: ExitFailure},
		{name: "command error", err: NewExitError(ExitCommandError, "no db"), want: ExitCommandError},
		{name: "wrapped", err: WrapExitError(ExitFailure, "import", errors.New("bad row")), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}
