package lexicon

// Lexicon bundles the tables an analysis needs.
type Lexicon struct {
	Stopwords *Stopwords
	Emoji     *EmojiSet
}

// Default returns the built-in stopword list and emoji table.
func Default() *Lexicon {
	return &Lexicon{
		Stopwords: DefaultStopwords(),
		Emoji:     DefaultEmojiSet(),
	}
}

// Load builds a lexicon, replacing a built-in table with the file at the
// given path when the path is non-empty.
func Load(stopwordsPath, emojiPath string) (*Lexicon, error) {
	lex := Default()

	if stopwordsPath != "" {
		s, err := LoadStopwords(stopwordsPath)
		if err != nil {
			return nil, err
		}
		lex.Stopwords = s
	}

	if emojiPath != "" {
		e, err := LoadEmojiSet(emojiPath)
		if err != nil {
			return nil, err
		}
		lex.Emoji = e
	}

	return lex, nil
}
