package detector

import (
	"regexp"

	"github.com/ccollicutt/chatstat/pkg/parser"
)

// HeaderFormat is a message header convention a chat export may use.
type HeaderFormat struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string; group 1 is the timestamp text
	Layout     string         // Go time layout for parsing; empty for the supported format
	Examples   []string       // Example headers
	Supported  bool           // True if the parser reads this format
	Ambiguous  bool           // True if the date order cannot be told from the layout alone
}

// DefaultFormats returns the built-in header formats to detect.
// The supported bracketed format comes first.
func DefaultFormats() []*HeaderFormat {
	formats := []*HeaderFormat{
		{
			Name:       "Bracketed 12-hour (DD/MM/YY)",
			PatternStr: `^(` + parser.DelimiterPattern + `)`,
			Examples:   []string{"[15/01/24, 9:05:00 PM] Alice: hi", "[15/01/24, 9:05:00\u202fPM] Alice: hi"},
			Supported:  true,
			Ambiguous:  true,
		},
		{
			Name:       "Bracketed 24-hour",
			PatternStr: `^\[(\d{2}/\d{2}/\d{2}, \d{2}:\d{2}:\d{2})\]`,
			Layout:     "02/01/06, 15:04:05",
			Examples:   []string{"[15/01/24, 21:05:00] Alice: hi"},
			Ambiguous:  true,
		},
		{
			Name:       "Dashed 12-hour",
			PatternStr: `^(\d{1,2}/\d{1,2}/\d{2}, \d{1,2}:\d{2}[ \x{202F}\x{00A0}]?(?:AM|PM|am|pm)) - `,
			Layout:     "2/1/06, 3:04 PM",
			Examples:   []string{"15/1/24, 9:05 PM - Alice: hi"},
			Ambiguous:  true,
		},
		{
			Name:       "Dashed 24-hour",
			PatternStr: `^(\d{1,2}/\d{1,2}/\d{2}, \d{2}:\d{2}) - `,
			Layout:     "2/1/06, 15:04",
			Examples:   []string{"15/01/24, 21:05 - Alice: hi"},
			Ambiguous:  true,
		},
		{
			Name:       "Bracketed ISO date",
			PatternStr: `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`,
			Layout:     "2006-01-02 15:04:05",
			Examples:   []string{"[2024-01-15 21:05:00] Alice: hi"},
		},
	}

	// Compile all patterns
	for _, f := range formats {
		f.Pattern = regexp.MustCompile(f.PatternStr)
	}

	return formats
}
