package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/eurostat-enrollment/internal/emit"
	"github.com/KaramelBytes/eurostat-enrollment/internal/manifest"
	"github.com/KaramelBytes/eurostat-enrollment/internal/reshape"
	"github.com/KaramelBytes/eurostat-enrollment/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	convSource    string
	convOutputDir string
	convCSV       string
	convTMCF      string
	convManifest  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Fetch the dataset and write the observation CSV and template MCF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		src := c.SourceURL
		if convSource != "" {
			src = convSource
		}
		outDir := c.OutputDir
		if convOutputDir != "" {
			outDir = convOutputDir
		}
		outDir, err = utils.ResolveHome(outDir)
		if err != nil {
			return err
		}
		csvName, tmcfName := c.OutputCSV, c.OutputTMCF
		if convCSV != "" {
			csvName = convCSV
		}
		if convTMCF != "" {
			tmcfName = convTMCF
		}
		csvPath := filepath.Join(outDir, csvName)
		tmcfPath := filepath.Join(outDir, tmcfName)
		writeManifest := c.WriteManifest
		if cmd.Flags().Changed("manifest") {
			writeManifest = convManifest
		}

		m := manifest.New(src)
		log := logger.With(zap.String("run_id", m.ID))
		log.Info("fetching source", zap.String("source", src))
		rc, err := newFetcher(c).Open(cmd.Context(), src)
		if err != nil {
			return err
		}
		res, err := reshape.Reshape(rc)
		_ = rc.Close()
		if err != nil {
			return err
		}
		log.Info("reshaped source",
			zap.Int("rows", res.Stats.Rows),
			zap.Int("year_columns", res.Stats.YearColumns),
			zap.Int("long_records", res.Stats.LongRecords),
			zap.Int("dropped", res.Stats.Dropped),
			zap.Int("groups", res.Stats.Groups))

		if err := emit.WriteFiles(csvPath, tmcfPath, res.Records); err != nil {
			return err
		}
		log.Info("outputs written", zap.String("csv", csvPath), zap.String("tmcf", tmcfPath))
		fmt.Printf("✓ Wrote %d rows to %s\n", len(res.Records), csvPath)
		fmt.Printf("✓ Wrote template to %s\n", tmcfPath)

		if !writeManifest {
			return nil
		}
		m.Stats = res.Stats
		if err := m.AddOutput("csv", csvPath, len(res.Records)); err != nil {
			return err
		}
		if err := m.AddOutput("tmcf", tmcfPath, len(emit.OutputColumns)-2); err != nil {
			return err
		}
		path, err := m.Save(outDir)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Wrote manifest to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convSource, "source", "s", "", "source URL or local path (default from config)")
	convertCmd.Flags().StringVarP(&convOutputDir, "output-dir", "o", "", "directory for the outputs (default from config)")
	convertCmd.Flags().StringVar(&convCSV, "csv", "", "observation CSV file name")
	convertCmd.Flags().StringVar(&convTMCF, "tmcf", "", "template MCF file name")
	convertCmd.Flags().BoolVar(&convManifest, "manifest", false, "write manifest.json with run details")
}
