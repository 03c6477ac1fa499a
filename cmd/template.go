package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/eurostat-enrollment/internal/emit"
	"github.com/KaramelBytes/eurostat-enrollment/internal/utils"
	"github.com/spf13/cobra"
)

var tmplOutput string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write only the template MCF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tmplOutput == "-" {
			return emit.WriteTemplate(os.Stdout, emit.OutputColumns, emit.DefaultTemplateOptions())
		}
		path := tmplOutput
		if path == "" {
			c, err := requireConfig()
			if err != nil {
				return err
			}
			dir, err := utils.ResolveHome(c.OutputDir)
			if err != nil {
				return err
			}
			path = filepath.Join(dir, c.OutputTMCF)
		}
		if err := emit.WriteTemplateFile(path, emit.OutputColumns, emit.DefaultTemplateOptions()); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote template to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.Flags().StringVarP(&tmplOutput, "output", "o", "", "template MCF path, or - for stdout (default from config)")
}
