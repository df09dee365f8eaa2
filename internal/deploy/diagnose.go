package deploy

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Section is one block of diagnostic output.
type Section struct {
	Title  string
	Output string
	Err    error
}

// Report is the collected diagnostic output. Sections are gathered in order
// and failures never abort the collection.
type Report struct {
	Sections []Section
}

// String renders the report for terminal output.
func (r *Report) String() string {
	var b strings.Builder
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "=== %s ===\n", s.Title)
		if s.Err != nil {
			fmt.Fprintf(&b, "(failed: %v)\n", s.Err)
		}
		if s.Output != "" {
			b.WriteString(strings.TrimRight(s.Output, "\n"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// secretLine matches env assignments whose name looks like a credential.
var secretLine = regexp.MustCompile(`(?im)^(\s*(?:export\s+)?[A-Za-z0-9_]*(?:key|secret|token|password)[A-Za-z0-9_]*\s*=).*$`)

// RedactSecrets masks the values of credential-looking env lines, leaving
// everything else untouched.
func RedactSecrets(content string) string {
	return secretLine.ReplaceAllString(content, "${1}[redacted]")
}

// Diagnose gathers read-only service information from the remote host. When
// attemptStart is set, one service-start attempt is included; nothing else
// mutates the host.
func (r *Runner) Diagnose(ctx context.Context, attemptStart bool) *Report {
	report := &Report{}
	collect := func(title, command string, redact bool) {
		out, err := r.remote.Run(ctx, command)
		if redact {
			out = RedactSecrets(out)
		}
		if err != nil {
			log.Warn().Err(err).Str("section", title).Msg("Diagnostic section failed, continuing")
		}
		report.Sections = append(report.Sections, Section{Title: title, Output: out, Err: err})
	}

	svc := shellQuote(r.cfg.ServiceName)

	collect("service status", fmt.Sprintf("systemctl status --no-pager %s", svc), false)
	collect("recent logs", fmt.Sprintf("journalctl -u %s -n 50 --no-pager", svc), false)
	collect("port bindings", "ss -tlnp", false)
	collect("environment file",
		fmt.Sprintf("test -f %s && cat %s || echo 'env file missing'",
			shellQuote(r.cfg.EnvFile), shellQuote(r.cfg.EnvFile)), true)
	collect("installed dependencies", "pip3 list", false)

	if attemptStart {
		collect("service start attempt", fmt.Sprintf("sudo systemctl start %s", svc), false)
		collect("service status after start", fmt.Sprintf("systemctl is-active %s", svc), false)
	}

	return report
}
