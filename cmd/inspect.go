package cmd

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/KaramelBytes/eurostat-enrollment/internal/analysis"
	"github.com/KaramelBytes/eurostat-enrollment/internal/reshape"
	"github.com/KaramelBytes/eurostat-enrollment/internal/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	inspOutputPath string
	inspSampleRows int
	inspMaxWarn    int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [source]",
	Short: "Summarize the source table without writing outputs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		src := c.SourceURL
		if len(args) == 1 {
			src = args[0]
		}
		opt := analysis.DefaultOptions()
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = inspSampleRows
		}
		if inspMaxWarn > 0 {
			opt.MaxWarnings = inspMaxWarn
		}

		logger.Debug("inspecting source", zap.String("source", src))
		rc, err := newFetcher(c).Open(cmd.Context(), src)
		if err != nil {
			return err
		}
		tbl, err := reshape.Load(rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
		md := analysis.Inspect(displayName(src), tbl, opt).Markdown()

		if inspOutputPath != "" {
			if err := os.WriteFile(inspOutputPath, []byte(md), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote summary to %s\n", inspOutputPath)
			return nil
		}
		fmt.Println(md)
		return nil
	},
}

// displayName shortens a URL or path to its last element for the report.
func displayName(src string) string {
	if source.IsURL(src) {
		if i := strings.LastIndex(src, "file="); i >= 0 {
			return path.Base(src[i+len("file="):])
		}
	}
	return path.Base(strings.ReplaceAll(src, "\\", "/"))
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&inspOutputPath, "output", "o", "", "optional path to write the summary")
	inspectCmd.Flags().IntVar(&inspSampleRows, "sample-rows", 5, "number of source rows to include (0 = none)")
	inspectCmd.Flags().IntVar(&inspMaxWarn, "max-warnings", 10, "maximum warnings to list")
}
