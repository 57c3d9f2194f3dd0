package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ccollicutt/chatstat/pkg/lexicon"
)

var nonLetterRe = regexp.MustCompile(`[^A-Za-z\s]`)

// Words lowercases message, strips every character that is not an ASCII
// letter or whitespace, and splits the rest on whitespace.
func Words(message string) []string {
	return strings.Fields(nonLetterRe.ReplaceAllString(strings.ToLower(message), ""))
}

// CountWords returns the number of whitespace-separated tokens in message.
// Unlike Words it keeps punctuation, digits and emoji as tokens.
func CountWords(message string) int {
	return len(strings.Fields(message))
}

// TopWords ranks the words of messages that are not stopwords.
// n <= 0 returns every word.
func TopWords(messages []string, stop *lexicon.Stopwords, n int) []TermCount {
	counts := make(map[string]int)
	for _, m := range messages {
		for _, w := range Words(m) {
			if !stop.Contains(w) {
				counts[w]++
			}
		}
	}
	return rank(counts, n)
}

// TopEmoji ranks the emoji characters found in messages.
// n <= 0 returns every emoji.
func TopEmoji(messages []string, set *lexicon.EmojiSet, n int) []TermCount {
	counts := make(map[string]int)
	for _, m := range messages {
		for _, e := range set.Extract(m) {
			counts[e]++
		}
	}
	return rank(counts, n)
}

// rank orders counts by count descending, then term ascending, and keeps
// the first n entries.
func rank(counts map[string]int, n int) []TermCount {
	out := make([]TermCount, 0, len(counts))
	for term, c := range counts {
		out = append(out, TermCount{Term: term, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
