package page

import (
	"fmt"
	"io"
	"strings"

	"profilecrawler/internal/usecase"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	thingSelector    = "div.thing[data-author]"
	commentSelector  = "div.usertext-body div.md"
	titleSelector    = "a.title"
	timeSelector     = "time[datetime]"
	tabSelector      = "ul.tabmenu li a[href]"
	nextPageSelector = "span.next-button a[href]"
)

type Page struct {
	doc    *goquery.Document
	logger *zap.Logger
}

func NewPage(raw io.Reader, logger *zap.Logger) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(raw)
	if err != nil {
		logger.Error("new page error", zap.Error(err))
		return nil, err
	}
	logger.Debug("new page initialize")
	return &Page{doc: doc, logger: logger}, nil
}

// GetRecords returns one record per listed item that names an author.
func (p *Page) GetRecords() []usecase.Record {
	var records []usecase.Record
	p.doc.Find(thingSelector).Each(func(_ int, s *goquery.Selection) {
		author, _ := s.Attr("data-author")
		body := strings.TrimSpace(s.Find(commentSelector).First().Text())
		if body == "" {
			body = strings.TrimSpace(s.Find(titleSelector).First().Text())
		}
		ts, _ := s.Find(timeSelector).First().Attr("datetime")
		records = append(records, usecase.Record{
			Author:    author,
			Body:      body,
			Timestamp: ts,
		})
	})
	p.logger.Debug(fmt.Sprintf("get records return %d records", len(records)))
	return records
}

func (p *Page) GetLinks() []string {
	var urls []string
	p.doc.Find(tabSelector).Each(func(_ int, s *goquery.Selection) {
		url, _ := s.Attr("href")
		url = strings.TrimSpace(url)
		if url == "" || strings.HasPrefix(url, "#") {
			return
		}
		urls = append(urls, url)
		p.logger.Debug(fmt.Sprintf("write url %s in slice urls", url))
	})
	return urls
}

func (p *Page) GetNextPage() string {
	next, _ := p.doc.Find(nextPageSelector).First().Attr("href")
	return strings.TrimSpace(next)
}

type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) Parser {
	return Parser{logger: logger}
}

// Parse never fails: a document without content degrades to an empty result.
func (ps Parser) Parse(text string) usecase.ParseResult {
	logger := ps.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := NewPage(strings.NewReader(text), logger)
	if err != nil {
		return usecase.ParseResult{}
	}
	return usecase.ParseResult{
		Records:  p.GetRecords(),
		Links:    p.GetLinks(),
		NextPage: p.GetNextPage(),
	}
}
