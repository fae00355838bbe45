// Package prompt renders the few-shot completion prompt sent to the chat model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/bookquery/bookquery/internal/fewshot"
)

// Prefix includes the four-space indent before "Table:".
const Prefix = "Convert the following question about book inventory into a SQL query.\n" +
	"    Table: books (book_id, title, author_id, genre, price, stock_quantity)"

// Render joins the prefix, each example and the question suffix with blank
// lines. The question is interpolated verbatim.
func Render(examples []fewshot.Example, question string) string {
	pieces := make([]string, 0, len(examples)+2)
	pieces = append(pieces, Prefix)
	for _, example := range examples {
		pieces = append(pieces, fmt.Sprintf("Question: %s\nSQL: %s", example.Question, example.SQL))
	}
	pieces = append(pieces, fmt.Sprintf("\nQuestion: %s\nSQL:", question))
	return strings.Join(pieces, "\n\n")
}
