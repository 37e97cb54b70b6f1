package migrations

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	var versions []uint
	v, err := src.First()
	require.NoError(t, err)
	for {
		versions = append(versions, v)

		up, _, err := src.ReadUp(v)
		require.NoError(t, err, "up %d", v)
		body, err := io.ReadAll(up)
		require.NoError(t, err)
		_ = up.Close()
		assert.NotEmpty(t, strings.TrimSpace(string(body)))

		down, _, err := src.ReadDown(v)
		require.NoError(t, err, "down %d", v)
		_ = down.Close()

		v, err = src.Next(v)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, []uint{1, 2, 3, 4}, versions)
}

func TestVerifiedTablesEnforceOneDecision(t *testing.T) {
	for _, name := range []string{"sql/000003_verified_users.up.sql", "sql/000004_verified_vehicles.up.sql"} {
		body, err := files.ReadFile(name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "COALESCE(is_verified, FALSE) <> COALESCE(is_rejected, FALSE)", name)
		assert.Contains(t, string(body), "REFERENCES", name)
	}
}
