package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is one exportable table: ordered headers plus rows keyed by
// header name. Missing keys render as empty cells so partially filled
// applications export cleanly.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders a Dataset into CSV bytes for download responses.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render encodes the dataset, headers first, one record per row.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
