package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
jenkins:
  url: https://ci.example.com
  username: tester
  token: abc123
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "stdio", cfg.Server.MCP.Transport)
	assert.Equal(t, 8081, cfg.Server.MCP.Port)
	assert.Equal(t, 30, cfg.Jenkins.Timeout)
	assert.False(t, cfg.Jenkins.InsecureSkipVerify)
	assert.False(t, cfg.Audit.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_JENKINS_TOKEN", "from-env")

	path := writeConfigFile(t, `
jenkins:
  url: https://ci.example.com
  username: tester
  token: ${TEST_JENKINS_TOKEN}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Jenkins.Token)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  mcp:
    transport: sse
    port: 9090
jenkins:
  url: https://ci.example.com/
  username: tester
  token: abc123
  timeout: 5
  insecure_skip_verify: true
audit:
  enabled: true
  db_path: /tmp/audit.db
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sse", cfg.Server.MCP.Transport)
	assert.Equal(t, 9090, cfg.Server.MCP.Port)
	assert.Equal(t, 5, cfg.Jenkins.Timeout)
	assert.True(t, cfg.Jenkins.InsecureSkipVerify)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "/tmp/audit.db", cfg.Audit.DBPath)
}

func TestValidate_MissingFields(t *testing.T) {
	cases := []Config{
		{},
		{Jenkins: JenkinsConfig{URL: "https://ci.example.com"}},
		{Jenkins: JenkinsConfig{URL: "https://ci.example.com", Username: "u"}},
	}

	for _, cfg := range cases {
		assert.Error(t, cfg.Validate())
	}
}

func TestJenkinsConfig_StringRedactsToken(t *testing.T) {
	cfg := JenkinsConfig{URL: "https://ci.example.com", Username: "tester", Token: "super-secret"}

	assert.NotContains(t, cfg.String(), "super-secret")
	assert.Contains(t, cfg.String(), "tester")
}
