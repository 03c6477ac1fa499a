package emit

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/eurostat-enrollment/internal/reshape"
	"github.com/KaramelBytes/eurostat-enrollment/internal/utils"
)

// WriteObservationsFile replaces path with the observation CSV.
func WriteObservationsFile(path string, recs []reshape.WideRecord) error {
	var buf bytes.Buffer
	if err := WriteObservations(&buf, recs); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteTemplateFile replaces path with the template MCF.
func WriteTemplateFile(path string, columns []string, opt TemplateOptions) error {
	var buf bytes.Buffer
	if err := WriteTemplate(&buf, columns, opt); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteFiles writes the observation CSV and then the template MCF.
func WriteFiles(csvPath, tmcfPath string, recs []reshape.WideRecord) error {
	if err := WriteObservationsFile(csvPath, recs); err != nil {
		return err
	}
	return WriteTemplateFile(tmcfPath, OutputColumns, DefaultTemplateOptions())
}
