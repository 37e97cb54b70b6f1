package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vregistry/internal/services"
)

func TestHashPasswordCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"hash-password", "s3cret"})
	require.NoError(t, rootCmd.Execute())

	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.True(t, services.CheckPassword(hash, "s3cret"))
}

func TestHashPasswordRequiresArgument(t *testing.T) {
	rootCmd.SetArgs([]string{"hash-password"})
	assert.Error(t, rootCmd.Execute())
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	rootCmd.SetArgs([]string{"serve", "--config", filepath.Join(t.TempDir(), "none.yaml")})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}
