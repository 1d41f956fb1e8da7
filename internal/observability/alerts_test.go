package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestReportAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "reports.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var spec alertSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}

	if len(spec.Groups) == 0 {
		t.Fatal("expected at least one alert group")
	}

	var reportGroup *alertGroup
	for i := range spec.Groups {
		if spec.Groups[i].Name == "reports" {
			reportGroup = &spec.Groups[i]
			break
		}
	}
	if reportGroup == nil {
		t.Fatal("reports alert group missing")
	}

	// exprContains pins each selector to a metric name and label the
	// application actually exposes; a renamed label silently empties the
	// alert's numerator otherwise.
	expected := map[string]struct {
		severity     string
		runbook      string
		exprContains string
	}{
		"HighErrorRate": {
			severity:     "critical",
			runbook:      "docs/runbook-reports.md#high-error-rate",
			exprContains: `meridian_http_requests_total{code=~"5.."}`,
		},
		"HighLatency": {
			severity:     "warning",
			runbook:      "docs/runbook-reports.md#high-latency",
			exprContains: "meridian_http_request_duration_seconds_bucket",
		},
		"ReportBuildFailures": {
			severity:     "warning",
			runbook:      "docs/runbook-reports.md#report-build-failures",
			exprContains: `meridian_report_builds_total{outcome="error"}`,
		},
	}

	if len(reportGroup.Rules) != len(expected) {
		t.Fatalf("expected %d rules, got %d", len(expected), len(reportGroup.Rules))
	}

	for _, rule := range reportGroup.Rules {
		want, ok := expected[rule.Alert]
		if !ok {
			t.Fatalf("unexpected rule %q", rule.Alert)
		}
		if rule.Labels["severity"] != want.severity {
			t.Fatalf("rule %s severity mismatch: %s", rule.Alert, rule.Labels["severity"])
		}
		if rule.Annotations["runbook"] != want.runbook {
			t.Fatalf("rule %s runbook mismatch: %s", rule.Alert, rule.Annotations["runbook"])
		}
		if rule.Annotations["summary"] == "" || rule.Annotations["description"] == "" {
			t.Fatalf("rule %s must include summary and description annotations", rule.Alert)
		}
		if rule.Expr == "" {
			t.Fatalf("rule %s must define an expression", rule.Alert)
		}
		if !strings.Contains(rule.Expr, want.exprContains) {
			t.Fatalf("rule %s expr %q must select %q", rule.Alert, rule.Expr, want.exprContains)
		}
		if strings.Contains(rule.Expr, "status=") {
			t.Fatalf("rule %s expr uses a status label; the request counter exposes code", rule.Alert)
		}
		if rule.For == "" {
			t.Fatalf("rule %s must define a hold duration", rule.Alert)
		}
	}
}
