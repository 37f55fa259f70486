package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertFile struct {
	Groups []struct {
		Name  string      `yaml:"name"`
		Rules []alertRule `yaml:"rules"`
	} `yaml:"groups"`
}

func loadAuthRules(t *testing.T) []alertRule {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "auth.yml"))
	require.NoError(t, err)

	var file alertFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	for _, g := range file.Groups {
		if g.Name == "auth" {
			return g.Rules
		}
	}
	t.Fatal("auth alert group missing")
	return nil
}

func TestAuthAlertRules(t *testing.T) {
	expected := map[string]struct {
		severity string
		anchor   string
	}{
		"LoginFailureSpike": {"warning", "#login-failure-spike"},
		"HighErrorRate":     {"critical", "#high-error-rate"},
		"TokenSweepFailing": {"warning", "#token-sweep-failing"},
	}

	rules := loadAuthRules(t)
	require.Len(t, rules, len(expected))
	for _, rule := range rules {
		want, ok := expected[rule.Alert]
		require.True(t, ok, "unexpected alert %s", rule.Alert)
		assert.Equal(t, want.severity, rule.Labels["severity"], rule.Alert)
		assert.Equal(t, "docs/runbook-auth.md"+want.anchor, rule.Annotations["runbook"], rule.Alert)
		assert.NotEmpty(t, rule.For, rule.Alert)
	}
}

func TestAlertRulesReferenceExportedMetrics(t *testing.T) {
	exported := []string{"auth_events_total", "submission_http_requests_total", "submission_jobs_failures_total"}
	for _, rule := range loadAuthRules(t) {
		found := false
		for _, name := range exported {
			if strings.Contains(rule.Expr, name) {
				found = true
			}
		}
		assert.True(t, found, "%s references no exported metric", rule.Alert)
	}

	runbook, err := os.ReadFile(filepath.Join("..", "..", "docs", "runbook-auth.md"))
	require.NoError(t, err)
	for _, heading := range []string{"Login failure spike", "High error rate", "Token sweep failing"} {
		assert.Contains(t, string(runbook), heading)
	}
}
