package prompt

import (
	"testing"

	"github.com/bookquery/bookquery/internal/fewshot"
)

func TestRenderWithExamples(t *testing.T) {
	examples := []fewshot.Example{
		{Question: "How many copies of '1984' do we have in stock?", SQL: "SELECT stock_quantity FROM books WHERE title = '1984';"},
		{Question: "What are the titles of all mystery books?", SQL: "SELECT title FROM books WHERE genre = 'Mystery';"},
	}
	got := Render(examples, "How many copies of 'Dune' do we have?")
	want := "Convert the following question about book inventory into a SQL query.\n" +
		"    Table: books (book_id, title, author_id, genre, price, stock_quantity)\n\n" +
		"Question: How many copies of '1984' do we have in stock?\n" +
		"SQL: SELECT stock_quantity FROM books WHERE title = '1984';\n\n" +
		"Question: What are the titles of all mystery books?\n" +
		"SQL: SELECT title FROM books WHERE genre = 'Mystery';\n\n" +
		"\nQuestion: How many copies of 'Dune' do we have?\nSQL:"
	if got != want {
		t.Fatalf("Render() = %q\nwant %q", got, want)
	}
}

func TestRenderWithoutExamples(t *testing.T) {
	got := Render(nil, "List authors")
	want := Prefix + "\n\n\nQuestion: List authors\nSQL:"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRenderKeepsQuestionVerbatim(t *testing.T) {
	question := "  {weird} %s question\n"
	got := Render(nil, question)
	want := Prefix + "\n\n\nQuestion: " + question + "\nSQL:"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestPrefixIsPinned(t *testing.T) {
	want := "Convert the following question about book inventory into a SQL query.\n" +
		"    Table: books (book_id, title, author_id, genre, price, stock_quantity)"
	if Prefix != want {
		t.Fatalf("Prefix = %q, want %q", Prefix, want)
	}
}
