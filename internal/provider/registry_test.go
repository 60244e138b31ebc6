package provider

import (
	"context"
	"testing"

	"github.com/PhNyx/jenkins-mcp/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{ name string }

func (s *stubProvider) GetName() string                 { return s.name }
func (s *stubProvider) Initialize(map[string]any) error { return nil }
func (s *stubProvider) GetJobInfo(context.Context, string) (*model.JobInfo, error) {
	return nil, nil
}
func (s *stubProvider) FetchConsoleLog(context.Context, string, int64) (*model.ConsoleLog, error) {
	return nil, nil
}
func (s *stubProvider) ListJobs(context.Context, *QueryOptions) ([]*model.JobInfo, error) {
	return nil, nil
}
func (s *stubProvider) ListBuilds(context.Context, string, int) ([]*model.Build, error) {
	return nil, nil
}
func (s *stubProvider) HealthCheck(context.Context) error { return nil }

func TestRegisterAndGet(t *testing.T) {
	UnregisterAll()
	t.Cleanup(UnregisterAll)

	RegisterCICD("stub", &stubProvider{name: "stub"})

	p, err := GetCICDProvider("stub")
	require.NoError(t, err)
	assert.Equal(t, "stub", p.GetName())

	assert.Equal(t, []string{"stub"}, ListCICDProviders())
}

func TestGetUnknownProvider(t *testing.T) {
	UnregisterAll()
	t.Cleanup(UnregisterAll)

	_, err := GetCICDProvider("missing")
	assert.Error(t, err)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	UnregisterAll()
	t.Cleanup(UnregisterAll)

	RegisterCICD("stub", &stubProvider{name: "stub"})
	assert.Panics(t, func() {
		RegisterCICD("stub", &stubProvider{name: "stub"})
	})
}

func TestRegisterNilPanics(t *testing.T) {
	UnregisterAll()
	t.Cleanup(UnregisterAll)

	assert.Panics(t, func() {
		RegisterCICD("nil", nil)
	})
}
