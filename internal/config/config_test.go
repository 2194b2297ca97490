package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilturan/browserloop/internal/browser"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, browser.Local, cfg.Environment)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName)
	assert.True(t, cfg.EnableCaching)
}

func TestNew_OptionsOverrideDefaults(t *testing.T) {
	cfg := New(
		WithEnvironment(browser.Remote),
		WithConnectURL("ws://localhost:9222"),
		WithHeadless(false),
		WithVerbosity(2),
		WithModelName("gpt-4o"),
		WithOpenAIAPIKey("sk-test"),
	)
	assert.Equal(t, browser.Remote, cfg.Environment)
	assert.Equal(t, "ws://localhost:9222", cfg.ConnectURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 2, cfg.Verbosity)
	assert.Equal(t, "gpt-4o", cfg.ModelName)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
}

func TestLoad_DefaultsWithNoFlagsOrFile(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, browser.Local, cfg.Environment)
	assert.True(t, cfg.Headless)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName)
}

func TestLoad_FlagsOverrideDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("env", string(browser.Local), "")
	flags.Int("verbose", 0, "")
	flags.String("model", "gpt-4o-mini", "")
	flags.Bool("headless", true, "")
	flags.String("connect-url", "", "")

	require.NoError(t, flags.Set("model", "gpt-4o"))
	require.NoError(t, flags.Set("verbose", "3"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.ModelName)
	assert.Equal(t, 3, cfg.Verbosity)
}

func TestLoad_RemoteWithoutConnectURLFails(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("env", string(browser.Local), "")
	require.NoError(t, flags.Set("env", string(browser.Remote)))

	_, err := Load("", flags)
	assert.Error(t, err)
}

func TestLoad_RemoteWithConnectURLSucceeds(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("env", string(browser.Local), "")
	flags.String("connect-url", "", "")
	require.NoError(t, flags.Set("env", string(browser.Remote)))
	require.NoError(t, flags.Set("connect-url", "ws://localhost:9222"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, browser.Remote, cfg.Environment)
	assert.Equal(t, "ws://localhost:9222", cfg.ConnectURL)
}
