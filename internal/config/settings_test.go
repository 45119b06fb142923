package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettingsFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewSettingsHolderReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeSettingsFile(t, filepath.Join(dir, "teams.yml"),
		"defaultStemName: test:stem\ninvitationExpiryDays: 7\n")

	holder, err := NewSettingsHolder(Config{SettingsPath: dir})
	require.NoError(t, err)

	current := holder.Current()
	assert.Equal(t, "test:stem", current.DefaultStemName)
	assert.Equal(t, 7, current.InvitationExpiryDays)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultSettings().NonGuestsMemberOf, current.NonGuestsMemberOf)
}

func TestNewSettingsHolderFallsBackToDefaults(t *testing.T) {
	holder, err := NewSettingsHolder(Config{SettingsPath: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), holder.Current())
}

func TestReloadSwapsSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "teams.yml")
	writeSettingsFile(t, path, "defaultStemName: first:stem\n")

	holder, err := NewSettingsHolder(Config{SettingsPath: dir})
	require.NoError(t, err)
	require.Equal(t, "first:stem", holder.Current().DefaultStemName)

	writeSettingsFile(t, path, "defaultStemName: second:stem\ninvitationExpiryDays: 14\n")
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	holder.reload(v)

	current := holder.Current()
	assert.Equal(t, "second:stem", current.DefaultStemName)
	assert.Equal(t, 14, current.InvitationExpiryDays)
}

func TestReloadKeepsPreviousSettingsOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "teams.yml")
	writeSettingsFile(t, path, "defaultStemName: first:stem\ninvitationExpiryDays: 7\n")

	holder, err := NewSettingsHolder(Config{SettingsPath: dir})
	require.NoError(t, err)

	writeSettingsFile(t, path, "defaultStemName: \"\"\n")
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	holder.reload(v)

	current := holder.Current()
	assert.Equal(t, "first:stem", current.DefaultStemName)
	assert.Equal(t, 7, current.InvitationExpiryDays)
}
