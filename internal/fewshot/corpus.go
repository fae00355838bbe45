// Package fewshot holds the hand-curated question/SQL pairs shown to the model
// as worked examples.
package fewshot

import "fmt"

type Example struct {
	Question string `json:"question"`
	SQL      string `json:"sql"`
}

// Text is the representation that gets embedded for similarity search.
func (e Example) Text() string {
	return fmt.Sprintf("Question: %s SQLQuery: %s", e.Question, e.SQL)
}

var corpus = []Example{
	{
		Question: "How many copies of '1984' do we have in stock?",
		SQL:      "SELECT stock_quantity FROM books WHERE title = '1984';",
	},
	{
		Question: "What's the total value of all fantasy books?",
		SQL:      "SELECT SUM(price * stock_quantity) AS total_value FROM books WHERE genre = 'Fantasy';",
	},
	{
		Question: "Show me the total inventory value for books by J.K. Rowling.",
		SQL:      "SELECT SUM(price * stock_quantity) AS total_value FROM books JOIN authors ON books.author_id = authors.author_id WHERE authors.name = 'J.K. Rowling';",
	},
	{
		Question: "What is the average price of books by genre?",
		SQL:      "SELECT genre, AVG(price) AS average_price FROM books GROUP BY genre;",
	},
	{
		Question: "List all books with stock quantity less than 5.",
		SQL:      "SELECT title FROM books WHERE stock_quantity < 5;",
	},
	{
		Question: "How many books are there by each author?",
		SQL:      "SELECT authors.name, COUNT(books.book_id) AS book_count FROM books JOIN authors ON books.author_id = authors.author_id GROUP BY authors.name;",
	},
	{
		Question: "What are the titles of all mystery books?",
		SQL:      "SELECT title FROM books WHERE genre = 'Mystery';",
	},
	{
		Question: "Which author has the highest number of books in stock?",
		SQL:      "SELECT authors.name FROM books JOIN authors ON books.author_id = authors.author_id GROUP BY authors.name ORDER BY SUM(books.stock_quantity) DESC LIMIT 1;",
	},
	{
		Question: "What is the total revenue from all orders?",
		SQL:      "SELECT SUM(total_amount) AS total_revenue FROM orders;",
	},
	{
		Question: "List all orders placed in the last month.",
		SQL:      "SELECT * FROM orders WHERE order_date >= DATE_SUB(CURDATE(), INTERVAL 1 MONTH);",
	},
}

// Corpus returns a copy of the built-in examples so callers cannot mutate them.
func Corpus() []Example {
	out := make([]Example, len(corpus))
	copy(out, corpus)
	return out
}

// SampleQuestions are suggestions shown by the presentation layer.
func SampleQuestions() []string {
	return []string{
		"How many copies of 'To Kill a Mockingbird' do we have?",
		"What are the Fantasy books we have in our inventory?",
		"Show me the total stock value for books by J.K. Rowling",
		"What are the Books We have by Agatha Christie",
		"What is the average price of books by genre?",
		"List all books with stock quantity less than 100",
	}
}
