package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/eurostat-enrollment/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("source_url: %s\n", cfg.SourceURL)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		fmt.Printf("output_csv: %s (%s)\n", cfg.OutputCSV, cfg.CSVPath())
		fmt.Printf("output_tmcf: %s (%s)\n", cfg.OutputTMCF, cfg.TMCFPath())
		fmt.Printf("write_manifest: %t\n", cfg.WriteManifest)
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Printf("retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		if cfg.RetryMaxAttempts > 1 {
			fmt.Printf("retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
			fmt.Printf("retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if err := c.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
