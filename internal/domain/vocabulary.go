package domain

// VocabularyEntry is a word a reader saved from an article. The word is the
// case-insensitive unique key; SavedAt is assigned at save time.
type VocabularyEntry struct {
	Word          string `json:"word"`
	Meaning       string `json:"meaning"`
	Pronunciation string `json:"pronunciation"`
	Example       string `json:"example"`
	PartOfSpeech  string `json:"partOfSpeech"`
	SavedAt       string `json:"savedAt"`
}

// Definition is a dictionary lookup result.
type Definition struct {
	Word          string   `json:"word"`
	Phonetic      string   `json:"phonetic"`
	Pronunciation string   `json:"pronunciation"`
	Meaning       string   `json:"meaning"`
	PartOfSpeech  string   `json:"partOfSpeech"`
	Example       string   `json:"example"`
	Synonyms      []string `json:"synonyms"`
}
