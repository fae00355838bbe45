// Package export renders query results for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/bookquery/bookquery/internal/query"
)

const ContentType = "text/csv"

// Filename returns query_results_<YYYYMMDD_HHMMSS>.csv for at.
func Filename(at time.Time) string {
	return "query_results_" + at.Format("20060102_150405") + ".csv"
}

// WriteCSV writes a header row followed by one record per result row.
func WriteCSV(w io.Writer, result query.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(result.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range result.Rows {
		record := make([]string, len(row))
		for j, value := range row {
			record[j] = FormatValue(value)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatValue renders a cell for text output; nil becomes the empty string.
func FormatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case []byte:
		return string(typed)
	case time.Time:
		return typed.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
