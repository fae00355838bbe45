package nl2sql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/bookquery/bookquery/internal/fewshot"
)

func TestGeneratorGenerate(t *testing.T) {
	examples := []fewshot.Example{{Question: "What are the titles of all mystery books?", SQL: "SELECT title FROM books WHERE genre = 'Mystery';"}}
	selector := &fakeSelector{examples: examples}
	model := &fakeChatModel{reply: "SQL Query: SELECT title FROM books WHERE genre = 'Fantasy';"}
	generator, err := NewGenerator(selector, model, GeneratorConfig{}, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	result, err := generator.Generate(context.Background(), "What are the Fantasy books we have in our inventory?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.SQL != "SELECT title FROM books WHERE genre = 'Fantasy';" {
		t.Fatalf("SQL = %q", result.SQL)
	}
	if result.Model != "fake-model" {
		t.Fatalf("Model = %q", result.Model)
	}
	if len(result.Examples) != 1 {
		t.Fatalf("Examples = %+v", result.Examples)
	}
	if selector.question != "What are the Fantasy books we have in our inventory?" {
		t.Fatalf("selector question = %q", selector.question)
	}
	if model.system != DefaultSystemPrompt {
		t.Fatalf("system prompt = %q", model.system)
	}
	if model.user != result.Prompt {
		t.Fatal("model did not receive rendered prompt")
	}
	if !strings.Contains(model.user, "Question: What are the titles of all mystery books?\nSQL: SELECT title FROM books WHERE genre = 'Mystery';") {
		t.Fatalf("prompt missing example: %q", model.user)
	}
	if !strings.HasSuffix(model.user, "Question: What are the Fantasy books we have in our inventory?\nSQL:") {
		t.Fatalf("prompt missing question suffix: %q", model.user)
	}
}

func TestGeneratorTranslate(t *testing.T) {
	generator, err := NewGenerator(&fakeSelector{}, &fakeChatModel{reply: "SELECT 1;"}, GeneratorConfig{}, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	var translator Translator = generator
	result, err := translator.Translate(context.Background(), Request{Question: "one"})
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if result.SQL != "SELECT 1;" {
		t.Fatalf("SQL = %q", result.SQL)
	}
}

func TestGeneratorNoSQL(t *testing.T) {
	generator, err := NewGenerator(&fakeSelector{}, &fakeChatModel{reply: "I am not sure."}, GeneratorConfig{}, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	_, err = generator.Generate(context.Background(), "question")
	if !errors.Is(err, ErrGeneration) || !errors.Is(err, ErrNoSQL) {
		t.Fatalf("Generate() error = %v, want ErrGeneration wrapping ErrNoSQL", err)
	}
}

func TestGeneratorSurfacesModelError(t *testing.T) {
	model := &fakeChatModel{err: errors.New("401 invalid api key")}
	generator, err := NewGenerator(&fakeSelector{}, model, GeneratorConfig{}, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	_, err = generator.Generate(context.Background(), "question")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("Generate() error = %v, want ErrGeneration", err)
	}
	if !strings.Contains(err.Error(), "401 invalid api key") {
		t.Fatalf("Generate() error = %q, want transport message", err.Error())
	}
	if model.calls != 1 {
		t.Fatalf("model calls = %d, want 1", model.calls)
	}
}

func TestGeneratorSurfacesSelectorError(t *testing.T) {
	generator, err := NewGenerator(&fakeSelector{err: errors.New("embed down")}, &fakeChatModel{reply: "SELECT 1;"}, GeneratorConfig{}, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if _, err := generator.Generate(context.Background(), "question"); !errors.Is(err, ErrGeneration) {
		t.Fatalf("Generate() error = %v, want ErrGeneration", err)
	}
}

func TestGeneratorRejectsEmptyQuestion(t *testing.T) {
	model := &fakeChatModel{reply: "SELECT 1;"}
	generator, err := NewGenerator(&fakeSelector{}, model, GeneratorConfig{}, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if _, err := generator.Generate(context.Background(), "  "); !errors.Is(err, ErrGeneration) {
		t.Fatalf("Generate() error = %v, want ErrGeneration", err)
	}
	if model.calls != 0 {
		t.Fatalf("model calls = %d, want 0", model.calls)
	}
}

func TestGeneratorReadOnlyGuard(t *testing.T) {
	reply := "DELETE FROM books WHERE book_id IN (SELECT book_id FROM books);"
	guarded, err := NewGenerator(&fakeSelector{}, &fakeChatModel{reply: reply}, GeneratorConfig{ReadOnly: true}, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if _, err := guarded.Generate(context.Background(), "remove books"); !errors.Is(err, ErrNotReadOnly) {
		t.Fatalf("Generate() error = %v, want ErrNotReadOnly", err)
	}

	open, err := NewGenerator(&fakeSelector{}, &fakeChatModel{reply: reply}, GeneratorConfig{}, nil)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	result, err := open.Generate(context.Background(), "remove books")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.SQL != reply {
		t.Fatalf("SQL = %q", result.SQL)
	}
}

func TestNewGeneratorValidatesDependencies(t *testing.T) {
	if _, err := NewGenerator(nil, &fakeChatModel{}, GeneratorConfig{}, nil); err == nil {
		t.Fatal("expected error for nil selector")
	}
	if _, err := NewGenerator(&fakeSelector{}, nil, GeneratorConfig{}, nil); err == nil {
		t.Fatal("expected error for nil model")
	}
}
func TestGeneratorLogsCancellationSeparately(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	model := &fakeChatModel{err: fmt.Errorf("request chat completion: %w", context.Canceled)}
	generator, err := NewGenerator(&fakeSelector{}, model, GeneratorConfig{}, logger)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	_, err = generator.Generate(context.Background(), "How many books?")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Generate() error = %v, want context.Canceled", err)
	}
	out := logs.String()
	if !strings.Contains(out, `msg="sql generation canceled"`) || !strings.Contains(out, "outcome=canceled") {
		t.Fatalf("log = %s", out)
	}
	if strings.Contains(out, `msg="sql generated"`) {
		t.Fatalf("cancellation logged as success: %s", out)
	}
}

func TestGeneratorLogsSuccessAndFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	generator, err := NewGenerator(&fakeSelector{}, &fakeChatModel{reply: "SELECT 1;"}, GeneratorConfig{}, logger)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if _, err := generator.Generate(context.Background(), "q"); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(logs.String(), `msg="sql generated"`) {
		t.Fatalf("log = %s", logs.String())
	}

	logs.Reset()
	failing, _ := NewGenerator(&fakeSelector{}, &fakeChatModel{reply: "I cannot help"}, GeneratorConfig{}, logger)
	if _, err := failing.Generate(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "outcome=no_sql") {
		t.Fatalf("log = %s", logs.String())
	}
}

type fakeSelector struct {
	examples []fewshot.Example
	err      error
	question string
}

func (f *fakeSelector) Select(_ context.Context, question string) ([]fewshot.Example, error) {
	f.question = question
	if f.err != nil {
		return nil, f.err
	}
	return f.examples, nil
}

type fakeChatModel struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
}

func (f *fakeChatModel) Name() string { return "fake-model" }

func (f *fakeChatModel) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system = system
	f.user = user
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}
