package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/glitchlabs/glitchbot/pkg/logger"
)

var (
	version   = "dev"
	gitCommit string
)

var configPath string

func formatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

func main() {
	// Secrets may live in a .env next to the binary; missing is fine.
	godotenv.Load()

	root := &cobra.Command{
		Use:   "glitchbot",
		Short: "GlitchBot runs one command set on Discord and Telegram",
		// Running the bare binary starts the bot, like the product did.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the config file")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "onboard",
		Short: "Create the data directory and a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnboard()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("glitchbot %s (%s)\n", formatVersion(), runtime.Version())
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseLogLevel(s string) logger.LogLevel {
	switch s {
	case "debug":
		return logger.DEBUG
	case "warn", "warning":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
