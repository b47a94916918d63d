package crawler

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pricePattern matches "$1,234.56", "$ 95" or "USD 1234.56".
var pricePattern = regexp.MustCompile(`(?i)(?:\$|\bUSD)\s?(\d[\d,]*(?:\.\d+)?)`)

// ExtractPrice returns the first price found in text, or nil.
func ExtractPrice(text string) *float64 {
	m := pricePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	return parseAmount(strings.TrimRight(m[1], ","))
}

// htmlText returns the visible text of an HTML fragment. Plain text passes through.
func htmlText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return stripTags(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, " "))
}

// imageSources lists <img src> values inside an HTML fragment in document order.
func imageSources(fragment string) []string {
	if !strings.Contains(strings.ToLower(fragment), "<img") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}
	var out []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			out = append(out, strings.TrimSpace(src))
		}
	})
	return out
}
