// Package lexicon holds the word and character tables used by chat statistics.
//
// Tables are built once, usually at process start, and are read-only
// afterwards so they can be shared by concurrent analyses.
package lexicon

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

//go:embed stopwords.txt
var defaultStopwords string

// Stopwords is a set of lowercase words excluded from word frequency.
type Stopwords struct {
	words map[string]struct{}
}

// NewStopwords builds a set from the given words. Words are lowercased.
func NewStopwords(words ...string) *Stopwords {
	s := &Stopwords{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.add(w)
	}
	return s
}

// DefaultStopwords returns the built-in English and Hinglish list.
func DefaultStopwords() *Stopwords {
	s, _ := ReadStopwords(strings.NewReader(defaultStopwords))
	return s
}

// ReadStopwords reads a whitespace-separated word list.
// Lines starting with '#' are comments.
func ReadStopwords(r io.Reader) (*Stopwords, error) {
	s := NewStopwords()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			s.add(w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stopwords: %w", err)
	}
	return s, nil
}

// LoadStopwords reads a stopword list from path.
func LoadStopwords(path string) (*Stopwords, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening stopwords file: %w", err)
	}
	defer f.Close()

	s, err := ReadStopwords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s *Stopwords) add(w string) {
	w = strings.ToLower(strings.TrimSpace(w))
	if w != "" {
		s.words[w] = struct{}{}
	}
}

// Contains reports whether word is in the set. Matching is exact.
func (s *Stopwords) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

// Len returns the number of words in the set.
func (s *Stopwords) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns the set's words in sorted order.
func (s *Stopwords) Words() []string {
	out := make([]string, 0, s.Len())
	if s == nil {
		return out
	}
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
