package usecase

import (
	"context"
	"testing"

	"github.com/runoshun/chores/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowConfigTemplate_Execute(t *testing.T) {
	// Setup
	cfg := domain.NewDefaultConfig()
	cfg.Store.Type = domain.StoreSQLite

	// Execute
	out, err := NewShowConfigTemplate().Execute(context.Background(), ShowConfigTemplateInput{Config: cfg})

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.Template, "[store]")
	assert.Contains(t, out.Template, `"sqlite"`)
}

func TestShowConfigTemplate_Execute_NilUsesDefaults(t *testing.T) {
	out, err := NewShowConfigTemplate().Execute(context.Background(), ShowConfigTemplateInput{})

	require.NoError(t, err)
	assert.Contains(t, out.Template, "[household]")
}
