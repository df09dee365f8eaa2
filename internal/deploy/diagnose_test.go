package deploy

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedactSecrets(t *testing.T) {
	input := strings.Join([]string{
		"REDIS_HOST=localhost",
		"API_KEY=sk-1234567890",
		"export DB_PASSWORD=hunter2",
		"HF_TOKEN=hf_abcdef",
		"CLIENT_SECRET=shhh",
		"DEBUG=true",
	}, "\n")

	out := RedactSecrets(input)

	require.Contains(t, out, "REDIS_HOST=localhost")
	require.Contains(t, out, "DEBUG=true")
	require.Contains(t, out, "API_KEY=[redacted]")
	require.Contains(t, out, "export DB_PASSWORD=[redacted]")
	require.Contains(t, out, "HF_TOKEN=[redacted]")
	require.Contains(t, out, "CLIENT_SECRET=[redacted]")
	require.NotContains(t, out, "sk-1234567890")
	require.NotContains(t, out, "hunter2")
}

func TestDiagnose_CollectsAllSectionsDespiteFailures(t *testing.T) {
	cfg, localDir := testDeployConfig(t, "")
	remote := &fakeRemote{respond: func(cmd string) (string, error) {
		switch {
		case strings.HasPrefix(cmd, "journalctl"):
			return "", fmt.Errorf("journalctl not available")
		case strings.Contains(cmd, "cat "):
			return "API_KEY=sk-secret\nREDIS_HOST=localhost\n", nil
		default:
			return "ok", nil
		}
	}}
	runner := NewRunner(cfg, remote, localDir)

	report := runner.Diagnose(context.Background(), false)
	require.Len(t, report.Sections, 5)

	titles := make([]string, 0, len(report.Sections))
	for _, s := range report.Sections {
		titles = append(titles, s.Title)
	}
	require.Equal(t, []string{
		"service status",
		"recent logs",
		"port bindings",
		"environment file",
		"installed dependencies",
	}, titles)

	require.Error(t, report.Sections[1].Err)

	rendered := report.String()
	require.Contains(t, rendered, "API_KEY=[redacted]")
	require.NotContains(t, rendered, "sk-secret")
	require.Contains(t, rendered, "journalctl not available")
}

func TestDiagnose_AttemptStartAddsSections(t *testing.T) {
	cfg, localDir := testDeployConfig(t, "")
	remote := &fakeRemote{respond: func(string) (string, error) { return "active", nil }}
	runner := NewRunner(cfg, remote, localDir)

	report := runner.Diagnose(context.Background(), true)
	require.Len(t, report.Sections, 7)
	require.Equal(t, "service start attempt", report.Sections[5].Title)
	require.Contains(t, strings.Join(remote.commands, "\n"), "systemctl start 'extractreq-backend'")
}
