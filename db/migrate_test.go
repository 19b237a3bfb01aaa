package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(Migrations(), migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		body, err := fs.ReadFile(Migrations(), migrationsDir+"/"+e.Name())
		require.NoError(t, err)

		sql := string(body)
		assert.True(t, strings.Contains(sql, "-- +goose Up"), "%s has no Up section", e.Name())
		assert.True(t, strings.Contains(sql, "-- +goose Down"), "%s has no Down section", e.Name())
	}
}

func TestInitialSchemaTables(t *testing.T) {
	body, err := fs.ReadFile(Migrations(), migrationsDir+"/00001_init.sql")
	require.NoError(t, err)

	for _, table := range []string{"users", "players", "tournaments", "player_tournaments", "player_statistics", "audit_logs"} {
		assert.Contains(t, string(body), "CREATE TABLE "+table+" (")
	}
	assert.Contains(t, string(body), "PRIMARY KEY (player_id, tournament_id)")
}
