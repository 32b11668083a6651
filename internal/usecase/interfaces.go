package usecase

import "context"

// Record is one scraped content item. The core only relies on it having three fields.
type Record struct {
	Author    string `json:"author"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}

// Fields returns the record as a triplet.
func (r Record) Fields() [3]string {
	return [3]string{r.Author, r.Body, r.Timestamp}
}

type ParseResult struct {
	Records  []Record
	Links    []string // same-site sub-links, as found in the document
	NextPage string   // empty when the listing is terminal
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

type Parser interface {
	Parse(text string) ParseResult
}

// Sink receives the records of a finished crawl.
type Sink interface {
	Ingest(ctx context.Context, records []Record) error
}
