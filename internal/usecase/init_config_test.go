package usecase_test

import (
	"context"
	"testing"

	"github.com/runoshun/chores/internal/domain"
	"github.com/runoshun/chores/internal/testutil"
	"github.com/runoshun/chores/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Execute(t *testing.T) {
	t.Run("creates data config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		cfg := domain.NewDefaultConfig()

		uc := usecase.NewInitConfig(manager)
		out, err := uc.Execute(context.Background(), usecase.InitConfigInput{
			Global: false,
			Config: cfg,
		})

		require.NoError(t, err)
		assert.Equal(t, "/home/test/.local/share/chores/config.toml", out.Path)
		assert.True(t, manager.InitDataCalled)
		assert.False(t, manager.InitGlobalCalled)
	})

	t.Run("creates global config", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()

		uc := usecase.NewInitConfig(manager)
		out, err := uc.Execute(context.Background(), usecase.InitConfigInput{Global: true})

		require.NoError(t, err)
		assert.Equal(t, "/home/test/.config/chores/config.toml", out.Path)
		assert.False(t, manager.InitDataCalled)
		assert.True(t, manager.InitGlobalCalled)
	})

	t.Run("returns error when config already exists", func(t *testing.T) {
		manager := testutil.NewMockConfigManager()
		manager.InitDataErr = domain.ErrConfigExists

		uc := usecase.NewInitConfig(manager)
		_, err := uc.Execute(context.Background(), usecase.InitConfigInput{})

		assert.ErrorIs(t, err, domain.ErrConfigExists)
	})
}

func TestShowConfig_Execute(t *testing.T) {
	manager := testutil.NewMockConfigManager()
	manager.GlobalConfigInfo = domain.ConfigInfo{Path: "/g/config.toml", Content: "[log]\nlevel = \"debug\"\n", Exists: true}
	effective := domain.NewDefaultConfig()

	uc := usecase.NewShowConfig(manager, effective)
	out, err := uc.Execute(context.Background(), usecase.ShowConfigInput{})

	require.NoError(t, err)
	assert.Same(t, effective, out.Effective)
	assert.True(t, out.GlobalConfig.Exists)
	assert.False(t, out.DataConfig.Exists)
}
