package scriptsdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.minekube.com/scriptsdk/pkg/version"
)

func TestVersionCommand(t *testing.T) {
	app := App()

	// Verify version is set correctly
	assert.Equal(t, version.String(), app.Version, "App version should match version package")

	help, err := app.ToMarkdown()
	require.NoError(t, err, "Should be able to generate help text")
	assert.Contains(t, help, "version", "Help should mention version flag")

	flags := make(map[string]bool)
	for _, flag := range app.Flags {
		for _, name := range flag.Names() {
			if flags[name] {
				t.Errorf("Flag conflict detected: %s", name)
			}
			flags[name] = true
		}
	}

	for _, name := range []string{"verbosity", "v", "config", "c", "debug", "d", "version", "V"} {
		assert.True(t, flags[name], "flag %q should exist", name)
	}
}

func TestCustomVersionFlag(t *testing.T) {
	app := App()
	assert.NotEmpty(t, app.Version, "App should have version set")

	help, err := app.ToMarkdown()
	require.NoError(t, err)

	// -v is verbosity, -V is version
	assert.Contains(t, help, "-V", "Help should show -V for version")
	assert.Contains(t, help, "--version", "Help should show --version flag")
	assert.Contains(t, help, "-v", "Help should show -v for verbosity")
}

func TestUserAgentIncludesVersion(t *testing.T) {
	userAgent := version.UserAgent()
	assert.Contains(t, userAgent, "ScriptSDK/")
	assert.Contains(t, userAgent, version.String())
}
