// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig()
		require.NoError(t, err)

		assert.True(t, cfg.DisableStartupMessage)
		assert.Equal(t, "0.0.0.0", cfg.HTTPHost)
		assert.Equal(t, "3000", cfg.HTTPPort)
	})

	t.Run("values from environment", func(t *testing.T) {
		t.Setenv("HTTP_HOST", "127.0.0.1")
		t.Setenv("HTTP_PORT", "8080")

		cfg, err := loadConfig()
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1", cfg.HTTPHost)
		assert.Equal(t, "8080", cfg.HTTPPort)
	})

	t.Run("non numeric port", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "not-a-port")

		cfg, err := loadConfig()
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrEnvVariablesNotValid)
		assert.ErrorContains(t, err, "HTTP_PORT is not a valid number")
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "70000")

		cfg, err := loadConfig()
		assert.Nil(t, cfg)
		assert.ErrorIs(t, err, ErrEnvVariablesNotValid)
		assert.ErrorContains(t, err, "HTTP_PORT is out of valid range (1-65535)")
	})
}
