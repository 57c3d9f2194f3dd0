package parser

import "regexp"

// DelimiterPattern matches the bracketed timestamp that opens every exported message,
// e.g. "[15/01/24, 9:05:00 PM]". The meridiem separator may be a space, a narrow
// no-break space (iOS exports), a no-break space, or missing.
const DelimiterPattern = `\[\d{2}/\d{2}/\d{2}, \d{1,2}:\d{2}:\d{2}[ \x{202F}\x{00A0}]?(?:AM|PM)\]`

var delimiterRe = regexp.MustCompile(DelimiterPattern)

// Segment splits text into timestamp/body pairs in source order.
// Text before the first delimiter is discarded. No delimiters yields nil.
func Segment(text string) []RawSegment {
	locs := delimiterRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	segments := make([]RawSegment, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, RawSegment{
			TimestampText: text[loc[0]:loc[1]],
			Body:          text[loc[1]:end],
			Offset:        loc[0],
		})
	}
	return segments
}

// Preamble returns the text before the first delimiter, or all of text if none match.
func Preamble(text string) string {
	loc := delimiterRe.FindStringIndex(text)
	if loc == nil {
		return text
	}
	return text[:loc[0]]
}
