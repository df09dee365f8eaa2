// Package deploy contains the deployment and diagnostic toolchain for the
// remote analysis backend: an ordered fail-fast deploy recipe and a
// report-and-continue inspector.
package deploy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/config"
)

// Step is one stage of the deploy recipe. Fatal steps abort the run on error;
// non-fatal ones only log.
type Step struct {
	Name  string
	Fatal bool
	Run   func(ctx context.Context) error
}

// Runner executes the deploy recipe against a remote host.
type Runner struct {
	cfg      config.DeployConfig
	remote   CommandRunner
	http     *http.Client
	localDir string
}

// NewRunner creates a deploy runner. localDir is the local checkout the
// backend service files are uploaded from.
func NewRunner(cfg config.DeployConfig, remote CommandRunner, localDir string) *Runner {
	return &Runner{
		cfg:      cfg,
		remote:   remote,
		http:     &http.Client{Timeout: 15 * time.Second},
		localDir: localDir,
	}
}

// Steps returns the deploy recipe in execution order.
func (r *Runner) Steps() []Step {
	return []Step{
		{Name: "check ssh connectivity", Fatal: true, Run: r.checkSSH},
		{Name: "install redis", Fatal: true, Run: r.installRedis},
		{Name: "update backend source", Fatal: true, Run: r.updateSource},
		{Name: "upload backend services", Fatal: true, Run: r.uploadServices},
		{Name: "fix ownership", Fatal: true, Run: r.fixOwnership},
		{Name: "restart service", Fatal: true, Run: r.restartService},
		{Name: "confirm service restart", Fatal: false, Run: r.confirmRestart},
		{Name: "local health check", Fatal: true, Run: r.healthCheck},
	}
}

// Run executes all steps in order, aborting on the first fatal failure.
func (r *Runner) Run(ctx context.Context) error {
	for _, step := range r.Steps() {
		log.Info().Str("step", step.Name).Msg("Deploy step starting")
		if err := step.Run(ctx); err != nil {
			if step.Fatal {
				return fmt.Errorf("deploy step %q failed: %w", step.Name, err)
			}
			log.Warn().Err(err).Str("step", step.Name).Msg("Non-fatal deploy step failed, continuing")
			continue
		}
		log.Info().Str("step", step.Name).Msg("Deploy step complete")
	}
	return nil
}

func (r *Runner) checkSSH(ctx context.Context) error {
	out, err := r.remote.Run(ctx, "echo ok")
	if err != nil {
		return err
	}
	if !strings.Contains(out, "ok") {
		return fmt.Errorf("unexpected reachability response: %q", out)
	}
	return nil
}

func (r *Runner) installRedis(ctx context.Context) error {
	if _, err := r.remote.Run(ctx, "sudo apt-get update -qq && sudo apt-get install -y -qq redis-server"); err != nil {
		return err
	}
	if _, err := r.remote.Run(ctx, "sudo systemctl enable --now redis-server"); err != nil {
		return err
	}
	out, err := r.remote.Run(ctx, "redis-cli ping")
	if err != nil {
		return err
	}
	if !strings.Contains(out, "PONG") {
		return fmt.Errorf("redis is not running after install: %q", strings.TrimSpace(out))
	}
	return nil
}

func (r *Runner) updateSource(ctx context.Context) error {
	cmd := fmt.Sprintf("cd %s && git pull --ff-only && pip3 install -q -r requirements.txt",
		shellQuote(r.cfg.RemoteDir))
	_, err := r.remote.Run(ctx, cmd)
	return err
}

func (r *Runner) uploadServices(ctx context.Context) error {
	for _, file := range r.cfg.BackendFiles {
		local := path.Join(r.localDir, file)
		remote := path.Join(r.cfg.RemoteDir, file)
		if err := r.remote.Upload(ctx, local, remote); err != nil {
			return err
		}
		log.Info().Str("file", file).Msg("Backend service file uploaded")
	}
	return nil
}

func (r *Runner) fixOwnership(ctx context.Context) error {
	owner := r.cfg.Owner
	if owner == "" {
		owner = r.cfg.User
	}
	_, err := r.remote.Run(ctx, fmt.Sprintf("sudo chown -R %s %s", shellQuote(owner), shellQuote(r.cfg.RemoteDir)))
	return err
}

func (r *Runner) restartService(ctx context.Context) error {
	_, err := r.remote.Run(ctx, fmt.Sprintf("sudo systemctl restart %s", shellQuote(r.cfg.ServiceName)))
	return err
}

// confirmRestart probes the service from the remote side. Failure here is
// informational only; the authoritative check is the local health probe.
func (r *Runner) confirmRestart(ctx context.Context) error {
	_, err := r.remote.Run(ctx, fmt.Sprintf("systemctl is-active %s", shellQuote(r.cfg.ServiceName)))
	return err
}

func (r *Runner) healthCheck(ctx context.Context) error {
	if r.cfg.HealthURL == "" {
		return fmt.Errorf("health_url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.HealthURL, nil)
	if err != nil {
		return err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if !strings.Contains(string(body), "healthy") {
		return fmt.Errorf("health response does not report healthy: %q", strings.TrimSpace(string(body)))
	}
	return nil
}
