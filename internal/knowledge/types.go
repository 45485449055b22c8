package knowledge

import (
	"context"
	"fmt"
	"strings"
)

// Embedder turns text into a query vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher returns the documents matching a query vector.
type Searcher interface {
	Match(ctx context.Context, q MatchQuery) ([]Document, error)
}

// Extractor condenses retrieved knowledge into an answer to question.
type Extractor interface {
	Extract(ctx context.Context, question, knowledge string) (string, error)
}

// MatchQuery is the input of match_documents_by_vendor_name.
type MatchQuery struct {
	Embedding []float32
	Threshold float64
	Count     int
	Vendor    string
}

// Metadata is the document metadata the answer uses.
type Metadata struct {
	Source string `json:"source,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Document is one matched knowledge-base chunk.
type Document struct {
	ID         int64    `json:"id"`
	Content    string   `json:"content"`
	Metadata   Metadata `json:"metadata"`
	Similarity float64  `json:"similarity"`
}

// Source is a cited page.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Match is a matched document id with its rounded similarity.
type Match struct {
	DocumentID int64   `json:"document_id"`
	Similarity float64 `json:"similarity"`
}

// Answer is the result of Service.Answer.
type Answer struct {
	Question string `json:"question"`
	Vendor   string `json:"vendor"`
	// Knowledge is the matched document text joined by blank lines.
	Knowledge string `json:"knowledge"`
	// Verified is the extracted answer; empty when extraction did not run.
	Verified string   `json:"verifiedAnswer,omitempty"`
	Sources  []Source `json:"sources"`
	Matches  []Match  `json:"matches"`
}

// Found reports whether any document matched.
func (a *Answer) Found() bool {
	return a.Knowledge != ""
}

// Text renders the answer for a tool result. Without an extracted answer
// the raw knowledge is returned.
func (a *Answer) Text() string {
	if !a.Found() {
		return fmt.Sprintf("No information about %s matched the question.", a.Vendor)
	}
	if a.Verified == "" {
		return a.Knowledge
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Knowledge base: <knowledge>%s</knowledge> \n\n<verifiedAnswer>%s</verifiedAnswer>", a.Knowledge, a.Verified)
	return b.String()
}
