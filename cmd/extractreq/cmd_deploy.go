package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/config"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/deploy"
)

var deployLocalDir string

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the analysis backend to the configured remote host",
	Long: "Runs the deployment recipe against the configured host: SSH reachability,\n" +
		"Redis install and verification, source update, upload of the backend\n" +
		"service files, ownership fix, service restart and a final health check.\n" +
		"The run aborts on the first fatal failure.",
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deployLocalDir, "source", ".", "local checkout the backend files are uploaded from")
}

func runDeploy(cmd *cobra.Command, _ []string) error {
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

	runner := deploy.NewRunner(cfg.Deploy, remote, deployLocalDir)
	if err := runner.Run(cmd.Context()); err != nil {
		return err
	}

	log.Info().Str("host", cfg.Deploy.Host).Msg("Deploy complete")
	return nil
}
