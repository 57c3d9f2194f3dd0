package parser

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NewReader returns a reader yielding UTF-8 text from r.
// A UTF-8 or UTF-16 byte order mark selects the encoding; without one the
// input is treated as UTF-8. The BOM itself is removed.
func NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// Decode reads an export into NFC-normalized text.
func Decode(r io.Reader) (string, error) {
	data, err := io.ReadAll(NewReader(r))
	if err != nil {
		return "", fmt.Errorf("decoding chat export: %w", err)
	}
	return norm.NFC.String(string(data)), nil
}

// ParseReader decodes r and parses it into a table.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*Table, error) {
	text, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return p.parse(ctx, text)
}

// ParseFile opens path and parses it into a table.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening chat export %s: %w", path, err)
	}
	defer f.Close()

	t, err := p.ParseReader(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return t, nil
}
