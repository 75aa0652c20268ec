// Package dictionary looks up word definitions against a
// dictionaryapi.dev-style API, trying morphological variations of the word
// until one resolves.
package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hsboy89/NewStep/internal/domain"
	"github.com/hsboy89/NewStep/internal/ports"
)

var (
	quoteExpr = regexp.MustCompile("['\"`]")
	punctExpr = regexp.MustCompile(`[.,!?;:()\[\]{}]`)
	spaceExpr = regexp.MustCompile(`\s+`)
)

// Client implements ports.Dictionary over HTTP.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.Dictionary = (*Client)(nil)

// NewClient wires the lookup endpoint (the word is appended as a path
// segment).
func NewClient(endpoint string, logger *slog.Logger) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger,
	}
}

// CleanWord lowercases a clicked word and strips quotes, punctuation, and
// whitespace. Empty result means nothing lookup-worthy remains.
func CleanWord(word string) string {
	cleaned := strings.ToLower(strings.TrimSpace(word))
	cleaned = quoteExpr.ReplaceAllString(cleaned, "")
	cleaned = punctExpr.ReplaceAllString(cleaned, "")
	cleaned = spaceExpr.ReplaceAllString(cleaned, "")
	if len(cleaned) < 2 {
		return ""
	}
	return cleaned
}

// variations lists the inflection-stripped candidates to try, in order,
// deduplicated and with too-short results dropped.
func variations(word string) []string {
	candidates := []string{
		word,
		strings.TrimSuffix(word, "s"),
		strings.TrimSuffix(word, "es"),
		singularIES(word),
		strings.TrimSuffix(word, "ed"),
		strings.TrimSuffix(word, "ing"),
	}

	seen := map[string]struct{}{}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if len(c) < 2 {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func singularIES(word string) string {
	if strings.HasSuffix(word, "ies") {
		return strings.TrimSuffix(word, "ies") + "y"
	}
	return word
}

// apiEntry mirrors the upstream response shape; only the first meaning and
// definition are consumed.
type apiEntry struct {
	Word      string `json:"word"`
	Phonetic  string `json:"phonetic"`
	Phonetics []struct {
		Text  string `json:"text"`
		Audio string `json:"audio"`
	} `json:"phonetics"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string   `json:"definition"`
			Example    string   `json:"example"`
			Synonyms   []string `json:"synonyms"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Lookup cleans the word and tries each variation until the API resolves
// one. All-miss returns nil without error; per-variation upstream errors are
// logged and the next variation is tried.
func (c *Client) Lookup(ctx context.Context, word string) (*domain.Definition, error) {
	cleaned := CleanWord(word)
	if cleaned == "" {
		return nil, nil
	}

	for _, candidate := range variations(cleaned) {
		def, err := c.fetch(ctx, candidate)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("dictionary lookup error", "word", candidate, "error", err)
			}
			continue
		}
		if def != nil {
			return def, nil
		}
	}
	return nil, nil
}

func (c *Client) fetch(ctx context.Context, word string) (*domain.Definition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+url.PathEscape(word), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request dictionary: %w", err)
	}
	defer resp.Body.Close()

	// Not-found is the expected miss for an inflected form.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary returned %s", resp.Status)
	}

	var entries []apiEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode dictionary response: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	return buildDefinition(entries[0]), nil
}

func buildDefinition(entry apiEntry) *domain.Definition {
	def := &domain.Definition{
		Word:     entry.Word,
		Phonetic: entry.Phonetic,
	}

	if def.Phonetic == "" && len(entry.Phonetics) > 0 {
		def.Phonetic = entry.Phonetics[0].Text
	}
	for _, p := range entry.Phonetics {
		if p.Audio != "" {
			def.Pronunciation = p.Audio
			break
		}
	}

	if len(entry.Meanings) > 0 {
		meaning := entry.Meanings[0]
		def.PartOfSpeech = meaning.PartOfSpeech
		if len(meaning.Definitions) > 0 {
			first := meaning.Definitions[0]
			def.Meaning = first.Definition
			def.Example = first.Example
			if len(first.Synonyms) > 3 {
				def.Synonyms = first.Synonyms[:3]
			} else {
				def.Synonyms = first.Synonyms
			}
		}
	}

	return def
}
