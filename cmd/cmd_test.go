package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/masteryengine/internal/engine"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_Workflow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("MASTERY_LLM_PROVIDER", "mock")

	db := filepath.Join(dir, "cli.db")
	global := []string{"--db", db, "--user", "cli"}
	cli := func(args ...string) string {
		t.Helper()
		out, err := run(t, append(args, global...)...)
		require.NoError(t, err, out)
		return out
	}

	out := cli("curriculum", "import", "../internal/curriculum/testdata/go-basics.json")
	assert.Contains(t, out, "Imported")

	out = cli("curriculum", "list")
	assert.Contains(t, out, "go-basics")

	out = cli("next", "go-basics")
	assert.Contains(t, out, "l-vars")

	out = cli("exam", "show", "go-basics", "l-vars")
	assert.Contains(t, out, "Which operator declares and assigns?")

	out = cli("exam", "submit", "go-basics", "l-vars", "--answer", "q1=1", "--answer", "q2=1")
	assert.Contains(t, out, "Score 100%")

	out = cli("complete", "go-basics", "l-consts", "--minutes", "10")
	assert.Contains(t, out, "Completed l-consts")

	out = cli("status", "go-basics")
	assert.Contains(t, out, "10 min studied, 1-day streak")

	out = cli("status", "go-basics", "--json")
	var report engine.Status
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.LessonsCompleted)
	assert.Equal(t, "l-loops", report.Next)
	assert.Equal(t, 10, report.MinutesSpent)
	assert.Equal(t, 1, report.Streak)

	out = cli("streak", "--json")
	var s engine.StreakSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 1, s.Current)

	out = cli("version")
	assert.True(t, strings.HasPrefix(out, "mastery "))
	assert.Contains(t, out, "go1.", "the Go toolchain version comes from the build info")
}

func TestCLI_LockedLesson(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	db := filepath.Join(dir, "locked.db")

	_, err := run(t, "curriculum", "import", "../internal/curriculum/testdata/go-basics.json", "--db", db)
	require.NoError(t, err)

	_, err = run(t, "complete", "go-basics", "l-slices", "--db", db)
	assert.ErrorIs(t, err, engine.ErrLessonLocked)
}
