package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/config"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/deploy"
)

var diagnoseAttemptStart bool

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Collect diagnostics from the configured remote host",
	Long: "Gathers service status, recent logs, port bindings, environment file\n" +
		"presence (with credential-looking lines redacted) and installed\n" +
		"dependencies. Sections that fail are reported and never abort the run.",
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().BoolVar(&diagnoseAttemptStart, "attempt-start", false, "attempt to start the service if it is down")
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging)

	remote, err := deploy.DialSSH(cfg.Deploy)
	if err != nil {
		return err
	}
	defer remote.Close()

	runner := deploy.NewRunner(cfg.Deploy, remote, ".")
	report := runner.Diagnose(cmd.Context(), diagnoseAttemptStart)
	fmt.Print(report.String())
	return nil
}
