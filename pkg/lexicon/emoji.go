package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/forPelevin/gomoji"
)

// runeRange is an inclusive code point interval.
type runeRange struct {
	lo, hi rune
}

// skinTones are the Fitzpatrick modifiers, counted on their own whether or
// not the emoji list carries them as standalone entries.
var skinTones = runeRange{0x1F3FB, 0x1F3FF}

// defaultEmojiRanges is built once from the Unicode emoji list: every entry
// that is a single code point, presentation selectors aside. Flags, keycaps
// and ZWJ sequences contribute nothing, so their components (regional
// indicators, digits, joiners) stay out of the set.
var defaultEmojiRanges = sync.OnceValue(func() []runeRange {
	ranges := []runeRange{skinTones}
	for _, em := range gomoji.AllEmojis() {
		if r, ok := singleCodePoint(em.Character); ok {
			ranges = append(ranges, runeRange{r, r})
		}
	}
	return newEmojiSet(ranges).ranges
})

func singleCodePoint(s string) (rune, bool) {
	var cp rune
	n := 0
	for _, r := range s {
		if r == 0xFE0E || r == 0xFE0F {
			continue
		}
		cp = r
		n++
	}
	return cp, n == 1 && cp > unicode.MaxASCII
}

// EmojiSet answers whether a single code point is an emoji.
type EmojiSet struct {
	ranges []runeRange
}

// DefaultEmojiSet returns the built-in emoji table.
func DefaultEmojiSet() *EmojiSet {
	return &EmojiSet{ranges: slices.Clone(defaultEmojiRanges())}
}

func newEmojiSet(ranges []runeRange) *EmojiSet {
	slices.SortFunc(ranges, func(a, b runeRange) int {
		return int(a.lo - b.lo)
	})

	merged := make([]runeRange, 0, len(ranges))
	for _, r := range ranges {
		if n := len(merged); n > 0 && r.lo <= merged[n-1].hi+1 {
			merged[n-1].hi = max(merged[n-1].hi, r.hi)
			continue
		}
		merged = append(merged, r)
	}
	return &EmojiSet{ranges: merged}
}

// Contains reports whether r is in the set.
func (e *EmojiSet) Contains(r rune) bool {
	if e == nil {
		return false
	}
	_, found := slices.BinarySearchFunc(e.ranges, r, func(rr runeRange, target rune) int {
		switch {
		case rr.hi < target:
			return -1
		case rr.lo > target:
			return 1
		default:
			return 0
		}
	})
	return found
}

// Len returns the number of code points in the set.
func (e *EmojiSet) Len() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, r := range e.ranges {
		n += int(r.hi-r.lo) + 1
	}
	return n
}

// Extract returns the emoji characters of s in order of appearance.
func (e *EmojiSet) Extract(s string) []string {
	out := make([]string, 0)
	for _, r := range s {
		if e.Contains(r) {
			out = append(out, string(r))
		}
	}
	return out
}

// ReadEmojiSet reads an emoji table in the layout of Unicode's emoji-data.txt:
//
//	1F600..1F64F ; Extended_Pictographic # comment
//	2764         ; Emoji_Presentation
//
// A line without a property field is accepted as-is. Lines carrying a
// property other than Extended_Pictographic or Emoji_Presentation are
// skipped so digits and '#' (which carry the Emoji property) stay out.
func ReadEmojiSet(r io.Reader) (*EmojiSet, error) {
	var ranges []runeRange
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field, property, hasProperty := strings.Cut(line, ";")
		if hasProperty {
			switch strings.TrimSpace(property) {
			case "Extended_Pictographic", "Emoji_Presentation":
			default:
				continue
			}
		}

		rr, err := parseRange(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		ranges = append(ranges, rr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading emoji table: %w", err)
	}
	return newEmojiSet(ranges), nil
}

// LoadEmojiSet reads an emoji table from path.
func LoadEmojiSet(path string) (*EmojiSet, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening emoji file: %w", err)
	}
	defer f.Close()

	e, err := ReadEmojiSet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

func parseRange(s string) (runeRange, error) {
	loText, hiText, isRange := strings.Cut(s, "..")
	lo, err := parseCodePoint(loText)
	if err != nil {
		return runeRange{}, err
	}
	if !isRange {
		return runeRange{lo, lo}, nil
	}
	hi, err := parseCodePoint(hiText)
	if err != nil {
		return runeRange{}, err
	}
	if hi < lo {
		return runeRange{}, fmt.Errorf("invalid range %q: end before start", s)
	}
	return runeRange{lo, hi}, nil
}

func parseCodePoint(s string) (rune, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "U+"), "u+")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || v > 0x10FFFF {
		return 0, fmt.Errorf("invalid code point %q", s)
	}
	return rune(v), nil
}
