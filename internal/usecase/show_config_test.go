package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfig_Execute(t *testing.T) {
	// Setup
	manager := testutil.NewMockConfigManager()
	manager.DataConfigInfo = domain.ConfigInfo{
		Path:    "/data/config.toml",
		Content: "[household]\ndefault = \"cabin\"\n",
		Exists:  true,
	}
	effective := domain.NewDefaultConfig()
	effective.Household.Default = "cabin"
	uc := NewShowConfig(manager, effective)

	// Execute
	out, err := uc.Execute(context.Background(), ShowConfigInput{})

	// Assert
	require.NoError(t, err)
	assert.Same(t, effective, out.Effective)
	assert.True(t, out.DataConfig.Exists)
	assert.Contains(t, out.DataConfig.Content, "cabin")
	assert.False(t, out.GlobalConfig.Exists)
	assert.Equal(t, "/home/test/.config/chores/config.toml", out.GlobalConfig.Path)
}
