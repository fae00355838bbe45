package fewshot

import (
	"strings"
	"testing"
)

func TestCorpusReturnsCopy(t *testing.T) {
	first := Corpus()
	if len(first) != 10 {
		t.Fatalf("len(Corpus()) = %d", len(first))
	}
	first[0].SQL = "DROP TABLE books;"

	second := Corpus()
	if second[0].SQL != "SELECT stock_quantity FROM books WHERE title = '1984';" {
		t.Fatalf("corpus was mutated: %q", second[0].SQL)
	}
}

func TestCorpusEntriesAreSelects(t *testing.T) {
	for i, example := range Corpus() {
		if strings.TrimSpace(example.Question) == "" {
			t.Fatalf("example %d has empty question", i)
		}
		if !strings.HasPrefix(example.SQL, "SELECT") {
			t.Fatalf("example %d SQL = %q", i, example.SQL)
		}
	}
}

func TestExampleText(t *testing.T) {
	got := Example{Question: "Q?", SQL: "SELECT 1;"}.Text()
	if got != "Question: Q? SQLQuery: SELECT 1;" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestSampleQuestions(t *testing.T) {
	if got := len(SampleQuestions()); got != 6 {
		t.Fatalf("len(SampleQuestions()) = %d", got)
	}
}
