package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	argv := append([]string{"nscache", "--backend", "sqlite", "--sqlite-path", db, "--namespace", "clitest"}, args...)
	err := app.Run(context.Background(), argv)
	return out.String(), err
}

func clearEnv(t *testing.T) {
	for _, k := range []string{"NSCACHE_CONFIG", "NSCACHE_BACKEND", "NSCACHE_NAMESPACE", "NSCACHE_HASH", "NSCACHE_CODEC", "NSCACHE_SQLITE_PATH"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("NSCACHE_LOG_LEVEL", "error")
}

func TestSaveGetRemove(t *testing.T) {
	clearEnv(t)
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, db, "save", "items/1", `{"hero":"Axe","price":300}`)
	require.NoError(t, err)

	out, err := run(t, db, "get", "items/1")
	require.NoError(t, err)
	assert.Contains(t, out, `"hero": "Axe"`)

	_, err = run(t, db, "rm", "items/1")
	require.NoError(t, err)

	_, err = run(t, db, "get", "items/1")
	require.ErrorIs(t, err, errMiss)
}

func TestSavePlainString(t *testing.T) {
	clearEnv(t)
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, db, "save", "notes/a", "hello world")
	require.NoError(t, err)

	out, err := run(t, db, "get", "notes/a")
	require.NoError(t, err)
	assert.Equal(t, "\"hello world\"\n", out)
}

func TestKeysAndRemovePrefix(t *testing.T) {
	clearEnv(t)
	db := filepath.Join(t.TempDir(), "cli.db")

	for _, k := range []string{"items/1", "items/2", "users/1"} {
		_, err := run(t, db, "save", k, "1")
		require.NoError(t, err)
	}

	out, err := run(t, db, "keys")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "clitest:"), l)
	}

	_, err = run(t, db, "rm-prefix", "items")
	require.NoError(t, err)

	out, err = run(t, db, "keys")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "clitest:users:"))
	assert.NotContains(t, out, "clitest:items:")

	_, err = run(t, db, "rm-prefix")
	require.Error(t, err)

	_, err = run(t, db, "rm-prefix", "--all")
	require.NoError(t, err)
	out, err = run(t, db, "keys")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestSweepReportsRemoved(t *testing.T) {
	clearEnv(t)
	db := filepath.Join(t.TempDir(), "cli.db")

	_, err := run(t, db, "save", "--ttl", "1ns", "items/1", "1")
	require.NoError(t, err)

	out, err := run(t, db, "sweep")
	require.NoError(t, err)
	assert.Equal(t, "removed 1\n", out)
}

func TestUnknownBackend(t *testing.T) {
	clearEnv(t)
	err := newApp().Run(context.Background(), []string{"nscache", "--backend", "etcd", "sweep"})
	require.Error(t, err)
}

func TestHelpDoesNotOpenStore(t *testing.T) {
	clearEnv(t)
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, db, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "rm-prefix")

	_, statErr := os.Stat(db)
	assert.True(t, os.IsNotExist(statErr), "store opened without a command needing it")
}
