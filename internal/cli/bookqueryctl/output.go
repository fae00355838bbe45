package bookqueryctl

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/bookquery/bookquery/internal/export"
	"github.com/bookquery/bookquery/internal/query"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputCSV   = "csv"
)

type table struct {
	header []string
	rows   [][]any
}

func (st *state) render(raw []byte, data table) error {
	switch st.output {
	case outputJSON:
		if pretty, ok := prettyJSON(raw); ok {
			_, err := fmt.Fprintln(st.stdout, pretty)
			return err
		}
		_, err := st.stdout.Write(raw)
		return err
	case outputCSV:
		return export.WriteCSV(st.stdout, query.Result{Columns: data.header, Rows: data.rows})
	default:
		return renderTable(st, data)
	}
}

func renderTable(st *state, data table) error {
	if len(data.header) == 0 {
		_, err := fmt.Fprintln(st.stdout, "(no columns)")
		return err
	}
	cells := make([][]string, 0, len(data.rows)+1)
	cells = append(cells, data.header)
	for _, row := range data.rows {
		line := make([]string, len(data.header))
		for i := range line {
			if i < len(row) {
				line[i] = export.FormatValue(row[i])
			}
		}
		cells = append(cells, line)
	}
	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(cells).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(st.stdout, rendered)
	if err != nil {
		return err
	}
	if len(data.rows) == 0 {
		_, err = fmt.Fprintln(st.stdout, "(0 rows)")
	}
	return err
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}
