package main

import (
	"testing"
	"time"

	"nba_props/pipeline/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags(nil)
	require.NoError(t, err)

	assert.False(t, opts.skipExisting, "Resumption is opt-in")
	assert.False(t, opts.dryRun)
	assert.Equal(t, 0, opts.maxGames)
	assert.Equal(t, 0, opts.maxRetries)
	assert.Equal(t, time.Duration(0), opts.timeout)
	assert.NotEmpty(t, opts.season)
}

func TestParseFlagsOverrides(t *testing.T) {
	opts, err := parseFlags([]string{
		"--season", "2022-23",
		"--skip-existing",
		"--max-games", "5",
		"--max-retries", "2",
		"--timeout", "45s",
	})
	require.NoError(t, err)

	assert.Equal(t, "2022-23", opts.season)
	assert.True(t, opts.skipExisting)
	assert.Equal(t, 5, opts.maxGames)
	assert.Equal(t, 2, opts.maxRetries)
	assert.Equal(t, 45*time.Second, opts.timeout)
}

func TestApplyOverrides(t *testing.T) {
	cfg := &config.Config{MaxRetries: 3, NBAStatsTimeout: 30 * time.Second}

	applyOverrides(cfg, &runFlags{})
	assert.Equal(t, 3, cfg.MaxRetries, "Zero flags leave the config untouched")
	assert.Equal(t, 30*time.Second, cfg.NBAStatsTimeout)

	applyOverrides(cfg, &runFlags{maxRetries: 5, timeout: 45 * time.Second})
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 45*time.Second, cfg.NBAStatsTimeout)
}
