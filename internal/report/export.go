package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/PoornimaChowdary560/email-classifier-backend/internal/core"
)

// WriteCSV streams records as a CSV export with a fixed header row
func WriteCSV(w io.Writer, records []*core.EmailRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Sender", "Recipient", "Subject", "Label", "Confidence"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range records {
		row := []string{
			record.Sender,
			record.Recipient,
			record.Subject,
			record.Label,
			FormatConfidence(record.Confidence),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// FormatConfidence renders a confidence for export: three decimal places,
// or N/A when the model produced none
func FormatConfidence(confidence *float64) string {
	if confidence == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*confidence, 'f', 3, 64)
}
