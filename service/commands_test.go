package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/app/database"
	"quill/app/observability"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dir        string
	badgerPath string
	backupDir  string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	env := &testEnv{
		dir:        dir,
		badgerPath: filepath.Join(dir, "data", "badger"),
		backupDir:  filepath.Join(dir, "data", "backups"),
	}
	t.Setenv("DB_DRIVER", "badger")
	t.Setenv("BADGER_PATH", env.badgerPath)
	t.Setenv("BACKUP_DIR", env.backupDir)
	t.Setenv("DATABASE_DSN", filepath.Join(dir, "data", "blog.db"))

	previous := observability.Logger
	t.Cleanup(func() {
		viper.Reset()
		observability.Logger = previous
	})
	return env
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	setupTestEnv(t)
	output, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "quill dev\n", output)
}

func TestUnknownCommand(t *testing.T) {
	setupTestEnv(t)
	_, err := run(t, "", "unknown")
	assert.ErrorContains(t, err, `unknown command "unknown"`)
}

func TestInit(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("initialize new database", func(t *testing.T) {
		output, err := run(t, "", "init")
		require.NoError(t, err)
		assert.Contains(t, output, "Database initialized successfully")
		assert.DirExists(t, env.badgerPath)
	})

	t.Run("initialize existing database", func(t *testing.T) {
		output, err := run(t, "", "init")
		require.NoError(t, err)
		assert.Contains(t, output, "Database already exists")
	})
}

func TestInitSQLite(t *testing.T) {
	env := setupTestEnv(t)

	output, err := run(t, "", "init", "--db-driver", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, output, "Database initialized successfully")
	assert.FileExists(t, filepath.Join(env.dir, "data", "blog.db"))
}

func TestClean(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("clean non-existent database", func(t *testing.T) {
		output, err := run(t, "", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Database is already clean")
	})

	t.Run("clean existing database - cancelled", func(t *testing.T) {
		_, err := run(t, "", "init")
		require.NoError(t, err)

		output, err := run(t, "n\n", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Operation cancelled")
		assert.DirExists(t, env.badgerPath)
	})

	t.Run("clean existing database - confirmed", func(t *testing.T) {
		output, err := run(t, "y\n", "clean")
		require.NoError(t, err)
		assert.Contains(t, output, "Database cleaned successfully")
		assert.NoDirExists(t, env.badgerPath)
	})
}

func TestSeedBackupRestore(t *testing.T) {
	env := setupTestEnv(t)

	output, err := run(t, "", "seed", "--posts", "3", "--comments", "2", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, output, "Seeded 3 posts")

	output, err = run(t, "", "backup")
	require.NoError(t, err)
	assert.Contains(t, output, "Database backed up successfully")

	backups, err := filepath.Glob(filepath.Join(env.backupDir, "backup_*.db"))
	require.NoError(t, err)
	require.Len(t, backups, 1)

	_, err = run(t, "", "clean", "--yes")
	require.NoError(t, err)

	output, err = run(t, "", "restore", backups[0])
	require.NoError(t, err)
	assert.Contains(t, output, "Database restored successfully")

	db, err := database.OpenBadger(env.badgerPath)
	require.NoError(t, err)
	defer db.Close()
	n, err := database.NewBadgerStore(db).Posts.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRestore(t *testing.T) {
	env := setupTestEnv(t)

	t.Run("requires a file argument", func(t *testing.T) {
		_, err := run(t, "", "restore")
		assert.ErrorContains(t, err, "accepts 1 arg")
	})

	t.Run("missing backup file", func(t *testing.T) {
		_, err := run(t, "", "restore", filepath.Join(env.dir, "nope.db"))
		assert.ErrorContains(t, err, "backup file does not exist")
	})

	t.Run("empty backup file", func(t *testing.T) {
		empty := filepath.Join(env.dir, "empty.db")
		require.NoError(t, os.WriteFile(empty, nil, 0o644))
		_, err := run(t, "", "restore", "--yes", empty)
		assert.ErrorIs(t, err, database.ErrEmptyBackup)
	})

	t.Run("cancelled over existing database", func(t *testing.T) {
		_, err := run(t, "", "init")
		require.NoError(t, err)
		file := filepath.Join(env.dir, "some.db")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		output, err := run(t, "\n", "restore", file)
		require.NoError(t, err)
		assert.Contains(t, output, "Operation cancelled")
	})
}

func TestBadgerOnlyCommands(t *testing.T) {
	setupTestEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := run(t, "", "backup")
	assert.ErrorIs(t, err, errBadgerOnly)
}

func TestInvalidConfiguration(t *testing.T) {
	setupTestEnv(t)
	t.Setenv("POSTS_PER_PAGE", "0")

	_, err := run(t, "", "init")
	assert.ErrorContains(t, err, "POSTS_PER_PAGE")
}
