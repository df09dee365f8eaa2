package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

//go:embed static
var staticFS embed.FS

var configPath string

var rootCmd = &cobra.Command{
	Use:   "extractreq",
	Short: "Classify app reviews into ISO 25010 security requirements",
	Long: "ExtractReq serves the submission pipeline that classifies user comments,\n" +
		"CSV batches and Play Store reviews into ISO/IEC 25010 security\n" +
		"subcharacteristic requirements, and ships the operations toolchain for\n" +
		"its remote analysis backend.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(generateConfigCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
