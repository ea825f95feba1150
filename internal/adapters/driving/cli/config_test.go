package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pathscout/internal/core/domain"
)

func TestConfigCmd_Renders(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "fdr_threshold = 0.05")
}

func TestConfigCmd_PassesConfigPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer func() { configPath = "" }()

	var got string
	inner := bootstrap
	bootstrap = func(ctx context.Context, path string) (*Services, error) {
		got = path
		return inner(ctx, path)
	}

	_, err := execute(t, "config", "--config", "/etc/pathscout.toml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/pathscout.toml", got)
}

func TestConfigCmd_CheckReportsInvalid(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer func() { configCheck = false }()

	inner := bootstrap
	bootstrap = func(ctx context.Context, path string) (*Services, error) {
		s, err := inner(ctx, path)
		if err != nil {
			return nil, err
		}
		s.Config.FDRThreshold = 2
		return s, nil
	}

	_, err := execute(t, "config", "--check")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
