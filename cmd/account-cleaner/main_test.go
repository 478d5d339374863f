package main

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/config"
)

func TestRootCmdSubcommands(t *testing.T) {
	root := newRootCmd()

	names := []string{}
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "schedule")
}

func TestSetupFailsFastOnMissingConfig(t *testing.T) {
	t.Setenv("TENANT_ID", "")
	t.Setenv("CLIENT_ID", "")

	_, err := setup()

	require.Error(t, err)
	var cfgErr *config.Error
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewLogger(t *testing.T) {
	log := newLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = newLogger(&config.Config{LogLevel: "nonsense"})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
