// Package normalize turns raw aggregation-proxy feed items into canonical
// articles: markup stripping, level/category inference, keyword extraction,
// and summary truncation.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/hsboy89/NewStep/internal/domain"
)

// summaryLimit caps article descriptions, measured in runes.
const summaryLimit = 150

var (
	tagExpr         = regexp.MustCompile(`<[^>]*>`)
	spaceExpr       = regexp.MustCompile(`\s+`)
	newlineExpr     = regexp.MustCompile(`\n+`)
	levelSuffixExpr = regexp.MustCompile(`(?i)\s*[–-]\s*level\s*[123]\s*`)
	timestampExpr   = regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{4}\s+\d{1,2}:\d{2}`)
)

// entities is the fixed decode table applied after tag stripping. Order
// matters only for readability; names never overlap.
var entities = [...]struct{ name, text string }{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&apos;", "'"},
	{"&rsquo;", "'"},
	{"&lsquo;", "'"},
	{"&rdquo;", `"`},
	{"&ldquo;", `"`},
	{"&mdash;", "—"},
	{"&ndash;", "–"},
	{"&hellip;", "..."},
}

// categoryRules pairs each category with its trigger markers. Evaluated in
// order; the first category with any match wins.
var categoryRules = []struct {
	category string
	markers  []string
}{
	{domain.CategorySport, []string{"sport", "football", "soccer"}},
	{domain.CategoryScience, []string{"science", "discovery", "research"}},
	{domain.CategoryTechnology, []string{"technology", "tech", "computer"}},
	{domain.CategoryEnvironment, []string{"environment", "climate", "nature"}},
	{domain.CategoryEconomy, []string{"economy", "economic", "business"}},
	{domain.CategoryHealth, []string{"health", "medical", "disease"}},
	{domain.CategoryPolitics, []string{"politics", "government", "president"}},
	{domain.CategoryCulture, []string{"culture", "art", "music"}},
}

var stopWords = map[string]struct{}{
	"the": {}, "this": {}, "that": {}, "there": {}, "their": {},
	"these": {}, "those": {}, "which": {}, "where": {}, "when": {},
	"about": {}, "after": {}, "before": {}, "during": {},
}

// StripMarkup removes tag-delimited markup in a single non-nested pass (any
// <...> span is deleted regardless of content), decodes the fixed entity
// table, collapses whitespace runs, and trims. Not robust against malformed
// or nested markup; the upstream feeds emit neither.
func StripMarkup(raw string) string {
	if raw == "" {
		return ""
	}

	text := tagExpr.ReplaceAllString(raw, "")
	for _, e := range entities {
		text = strings.ReplaceAll(text, e.name, e.text)
	}
	text = spaceExpr.ReplaceAllString(text, " ")
	text = newlineExpr.ReplaceAllString(text, "\n")

	return strings.TrimSpace(text)
}

// CleanTitle drops "– Level N" style annotations and trims. Empty input
// becomes "Untitled".
func CleanTitle(title string) string {
	if title == "" {
		return "Untitled"
	}
	return strings.TrimSpace(levelSuffixExpr.ReplaceAllString(title, ""))
}

// Describe builds the article summary from the raw description: strips
// markup, cuts upstream "The post ..." boilerplate, removes embedded
// timestamp-like substrings, and truncates near summaryLimit at a word
// boundary with a trailing ellipsis.
func Describe(raw string) string {
	text := StripMarkup(raw)

	if idx := strings.Index(strings.ToLower(text), "the post"); idx > 0 {
		text = strings.TrimSpace(text[:idx])
	}
	text = strings.TrimSpace(timestampExpr.ReplaceAllString(text, ""))
	text = strings.TrimSpace(spaceExpr.ReplaceAllString(text, " "))

	runes := []rune(text)
	if len(runes) <= summaryLimit {
		return text
	}

	cut := -1
	for i := summaryLimit; i >= 0; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	if cut <= 0 {
		cut = summaryLimit
	}
	return string(runes[:cut]) + "..."
}

// InferLevel classifies difficulty from the title marker first, falling back
// to the level path segment of the feed the item came from. The title signal
// always wins.
func InferLevel(title, feedURL string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "level 3"):
		return domain.Level3
	case strings.Contains(t, "level 2"):
		return domain.Level2
	case strings.Contains(feedURL, "level-2"):
		return domain.Level2
	case strings.Contains(feedURL, "level-3"):
		return domain.Level3
	}
	return domain.Level1
}

// InferCategory matches title+description against the ordered rule list.
func InferCategory(title, description string) string {
	text := strings.ToLower(title + " " + description)
	for _, rule := range categoryRules {
		for _, marker := range rule.markers {
			if strings.Contains(text, marker) {
				return rule.category
			}
		}
	}
	return domain.CategoryGeneral
}

// ExtractKeywords picks up to five lowercase words longer than four runes
// from title+description, skipping stop words, first occurrence order.
func ExtractKeywords(title, description string) []string {
	text := strings.ToLower(title + " " + description)

	seen := map[string]struct{}{}
	var keywords []string
	for _, word := range strings.Fields(text) {
		if len([]rune(word)) <= 4 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == 5 {
			break
		}
	}
	return keywords
}

// ParseDate parses a feed date string on a best-effort basis. The zero time
// with ok=false means the raw text should be shown as-is.
func ParseDate(raw string) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}
	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// FirstImage pulls the src of the first <img> in an HTML fragment, used as
// the thumbnail of last resort.
func FirstImage(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}

// Item builds the canonical Article for one raw feed item. feedURL is the
// level-inference fallback signal; index disambiguates the derived ID within
// the feed's result set.
func Item(raw domain.FeedItem, feedURL string, index int) domain.Article {
	level := InferLevel(raw.Title, feedURL)
	title := CleanTitle(raw.Title)
	description := Describe(raw.Description)

	content := StripMarkup(raw.Content)
	if content == "" {
		content = StripMarkup(raw.Description)
	}

	pubDate := raw.PubDate
	if pubDate == "" {
		pubDate = time.Now().UTC().Format(time.RFC3339)
	}

	thumbnail := raw.Thumbnail
	if thumbnail == "" {
		thumbnail = raw.Enclosure.Link
	}
	if thumbnail == "" {
		thumbnail = FirstImage(raw.Content)
	}

	return domain.Article{
		ID:          fmt.Sprintf("%s-%s-%d", level, raw.PubDate, index),
		Title:       title,
		Description: description,
		Content:     content,
		Link:        raw.Link,
		PubDate:     pubDate,
		Thumbnail:   thumbnail,
		Level:       level,
		Category:    InferCategory(title, description),
		Keywords:    ExtractKeywords(title, description),
	}
}
