// Package nl2sql turns a natural-language question into a single SQL statement
// by prompting a chat model with retrieved few-shot examples.
package nl2sql

import (
	"context"
	"errors"

	"github.com/bookquery/bookquery/internal/fewshot"
)

var (
	// ErrGeneration wraps every failure of the generation path.
	ErrGeneration = errors.New("error generating SQL")
	ErrNoSQL      = errors.New("no valid SQL query generated")
	// ErrNotReadOnly is returned only when the read-only guard is enabled.
	ErrNotReadOnly = errors.New("generated SQL is not a read-only statement")
)

type Request struct {
	Question string `json:"question"`
}

type Result struct {
	SQL      string            `json:"sql"`
	Provider string            `json:"provider"`
	Model    string            `json:"model"`
	Examples []fewshot.Example `json:"examples"`
	Prompt   string            `json:"-"`
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}

// ChatModel sends one system and one user message and returns the raw reply.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

type ExampleSelector interface {
	Select(ctx context.Context, question string) ([]fewshot.Example, error)
}
