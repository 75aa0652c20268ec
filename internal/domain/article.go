package domain

// Learner difficulty tiers. Levels are carried as strings because the
// upstream feeds and the reader UI both address them that way ("all" is a
// filter value, never stored on an article).
const (
	Level1 = "1"
	Level2 = "2"
	Level3 = "3"
)

// LevelAll selects every feed when used as a filter.
const LevelAll = "all"

// Topic categories. Classification priority lives in the normalize package;
// earlier rules there win ties.
const (
	CategorySport       = "sport"
	CategoryScience     = "science"
	CategoryTechnology  = "technology"
	CategoryEnvironment = "environment"
	CategoryEconomy     = "economy"
	CategoryHealth      = "health"
	CategoryPolitics    = "politics"
	CategoryCulture     = "culture"
	CategoryGeneral     = "general"
)

// Article is the canonical normalized news item. Immutable once built; two
// articles with the same ID are the same entity.
type Article struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Link        string   `json:"link"`
	PubDate     string   `json:"pubDate"`
	Thumbnail   string   `json:"thumbnail"`
	Level       string   `json:"level"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords"`
}

// FeedItem is one raw entry as handed back by the aggregation proxy. PubDate
// stays a string; it may be unparseable and consumers fall back to the
// literal text.
type FeedItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Link        string    `json:"link"`
	PubDate     string    `json:"pubDate"`
	Thumbnail   string    `json:"thumbnail"`
	Enclosure   Enclosure `json:"enclosure"`
}

// Enclosure carries the media attachment of a feed item.
type Enclosure struct {
	Link string `json:"link"`
}
