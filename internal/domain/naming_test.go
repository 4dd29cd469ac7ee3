package domain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHouseholdLogPath(t *testing.T) {
	assert.Equal(t, filepath.Join("d", "logs", "household-home.log"), HouseholdLogPath("d", "home"))
	assert.Equal(t, filepath.Join("d", "logs", "household-a_b_c.log"), HouseholdLogPath("d", "a/b c"))
}

func TestDefaultStorePath(t *testing.T) {
	assert.Equal(t, filepath.Join("d", "tasks.json"), DefaultStorePath("d", StoreJSON))
	assert.Equal(t, filepath.Join("d", "chores.db"), DefaultStorePath("d", StoreSQLite))
	assert.Equal(t, filepath.Join("d", "repo"), DefaultStorePath("d", StoreGit))
}

func TestIsValidStoreType(t *testing.T) {
	for _, name := range []string{"json", "git", "sqlite", "postgres", "mongo", "JSON"} {
		assert.True(t, IsValidStoreType(name), name)
	}
	assert.False(t, IsValidStoreType("redis"))
}
