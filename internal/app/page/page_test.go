package page

import (
	"bufio"
	"bytes"
	"log"
	"os"
	"strings"
	"testing"

	"profilecrawler/internal/usecase"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func ReadHTML() string {
	f, err := os.Open("testdata/sample_profile.html")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	h := bytes.Buffer{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		h.WriteString(sc.Text())
		h.WriteString("\n")
	}
	return strings.TrimSpace(h.String())
}

func TestNewPage(t *testing.T) {
	l := zap.NewExample()
	page, err := NewPage(strings.NewReader(ReadHTML()), l)
	assert.NoError(t, err)
	assert.NotNil(t, page, "fail to get new page")
}

func TestGetRecords(t *testing.T) {
	l := zap.NewExample()
	page, _ := NewPage(strings.NewReader(ReadHTML()), l)
	exp := []usecase.Record{
		{Author: "Chrikelnel", Body: "Channels are not queues.", Timestamp: "2016-10-10T14:01:02+00:00"},
		{Author: "Chrikelnel", Body: "A post about crawlers", Timestamp: "2016-10-09T09:30:00+00:00"},
		{Author: "Chrikelnel", Body: "Try a worker pool.", Timestamp: "2016-10-08T20:15:45+00:00"},
	}
	got := page.GetRecords()
	assert.Equal(t, exp, got, "Test failed. Expect: %v, got: %v", exp, got)
}

func TestGetLinks(t *testing.T) {
	l := zap.NewExample()
	page, _ := NewPage(strings.NewReader(ReadHTML()), l)
	exp := []string{
		"https://www.reddit.com/user/Chrikelnel/",
		"https://www.reddit.com/user/Chrikelnel/comments/",
		"/user/Chrikelnel/submitted/",
	}
	got := page.GetLinks()
	assert.Equal(t, exp, got, "Test failed. Expect: %v, got: %v", exp, got)
}

func TestGetNextPage(t *testing.T) {
	l := zap.NewExample()
	page, _ := NewPage(strings.NewReader(ReadHTML()), l)
	assert.Equal(t, "https://www.reddit.com/user/Chrikelnel/?count=25&after=t1_d8abc", page.GetNextPage())
}

func TestParseTriplets(t *testing.T) {
	res := NewParser(zap.NewNop()).Parse(ReadHTML())

	assert.Greater(t, len(res.Records), 0)
	for _, r := range res.Records {
		assert.Len(t, r.Fields(), 3)
		assert.NotEmpty(t, r.Body)
	}
	assert.NotEmpty(t, res.NextPage)
}

func TestParseWithoutContent(t *testing.T) {
	ps := NewParser(zap.NewNop())
	for _, text := range []string{"", "not html at all", "<html><body><p>nothing</p></body></html>", "<div class=\"thing\""} {
		res := ps.Parse(text)
		assert.Empty(t, res.Records, "input %q", text)
		assert.Empty(t, res.Links, "input %q", text)
		assert.Equal(t, "", res.NextPage, "input %q", text)
	}
}
