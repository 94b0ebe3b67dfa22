package app

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html/charset"
)

const maxErrorDetail = 200

var (
	errorPageTitle   = cascadia.MustCompile("title")
	errorPageHeading = cascadia.MustCompile("h1")
)

// describeErrorBody summarises the body of a failed response for logging.
// HTML error pages are reduced to their title or first heading, anything else
// is trimmed and truncated.
func describeErrorBody(body []byte, contentType string) string {
	if strings.Contains(strings.ToLower(contentType), "html") {
		if text := errorPageText(body, contentType); text != "" {
			return truncate(text, maxErrorDetail)
		}
	}
	return truncate(strings.TrimSpace(string(body)), maxErrorDetail)
}

func errorPageText(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ""
	}

	for _, m := range []goquery.Matcher{errorPageTitle, errorPageHeading} {
		text := strings.Join(strings.Fields(doc.FindMatcher(m).First().Text()), " ")
		if text != "" {
			return text
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back off to a rune boundary
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
