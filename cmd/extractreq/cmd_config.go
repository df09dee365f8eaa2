package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/config"
)

var generateConfigCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Write a sample configuration file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.GenerateSample(configPath); err != nil {
			return fmt.Errorf("failed to write %s: %w", configPath, err)
		}
		fmt.Printf("Sample configuration written to %s\n", configPath)
		return nil
	},
}
