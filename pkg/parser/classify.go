package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// MatchMode selects where the "author: " prefix may appear in a body.
type MatchMode string

const (
	// MatchAnchored requires the prefix to open the body.
	MatchAnchored MatchMode = "anchored"

	// MatchSearch takes the first prefix anywhere in the body and drops the text before it.
	MatchSearch MatchMode = "search"
)

var (
	anchoredAuthorRe = regexp.MustCompile(`^(\S+):\s`)
	searchAuthorRe   = regexp.MustCompile(`(\S+):\s`)
)

// Classifier splits message bodies into author and text.
//
// The split is a heuristic: a body is authored when it carries a run of
// non-whitespace followed by ": ". Names containing spaces or colons, and
// notifications that happen to contain "word: ", are misclassified.
type Classifier struct {
	re       *regexp.Regexp
	sentinel string
}

// NewClassifier creates a classifier. An empty sentinel uses DefaultNotificationAuthor.
func NewClassifier(mode MatchMode, sentinel string) *Classifier {
	if sentinel == "" {
		sentinel = DefaultNotificationAuthor
	}
	re := anchoredAuthorRe
	if mode == MatchSearch {
		re = searchAuthorRe
	}
	return &Classifier{re: re, sentinel: sentinel}
}

// Sentinel returns the author assigned to notifications.
func (c *Classifier) Sentinel() string {
	return c.sentinel
}

// Classify returns the author and message for a segment body.
// Bodies without an author prefix are attributed to the sentinel.
func (c *Classifier) Classify(body string) (author, message string) {
	body = strings.TrimLeftFunc(body, isPadding)

	loc := c.re.FindStringSubmatchIndex(body)
	if loc == nil {
		return c.sentinel, strings.TrimFunc(body, isPadding)
	}

	return body[loc[2]:loc[3]], strings.TrimFunc(body[loc[1]:], isPadding)
}

// isPadding reports whitespace and the invisible direction marks that
// exports place around messages.
func isPadding(r rune) bool {
	switch r {
	case '\u200e', '\u200f', '\ufeff':
		return true
	}
	return unicode.IsSpace(r)
}
