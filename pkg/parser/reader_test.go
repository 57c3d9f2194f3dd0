package parser

import (
	"bytes"
	"context"
	"encoding/binary"
	"strings"
	"testing"
	"unicode/utf16"
)

func TestDecode_PlainUTF8(t *testing.T) {
	got, err := Decode(strings.NewReader("[15/01/24, 9:05:00 PM] Alice: hi"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "[15/01/24, 9:05:00 PM] Alice: hi" {
		t.Errorf("Decode() = %q", got)
	}
}

func TestDecode_StripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("[15/01/24, 9:05:00 PM] Alice: hi")...)
	got, err := Decode(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !strings.HasPrefix(got, "[") {
		t.Errorf("Decode() kept BOM: %q", got)
	}
}

func TestDecode_UTF16LE(t *testing.T) {
	text := "[15/01/24, 9:05:00 PM] Alice: héllo 😀"
	units := utf16.Encode([]rune(text))

	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFE})
	for _, u := range units {
		_ = binary.Write(&buf, binary.LittleEndian, u)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != text {
		t.Errorf("Decode() = %q, want %q", got, text)
	}
}

func TestDecode_NormalizesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent composes to "é".
	got, err := Decode(strings.NewReader("Jose\u0301"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "Jos\u00e9" {
		t.Errorf("Decode() = %q, want composed form", got)
	}
}

func TestParser_ParseReader_UTF16(t *testing.T) {
	units := utf16.Encode([]rune(sampleExport))
	var buf bytes.Buffer
	buf.Write([]byte{0xFE, 0xFF})
	for _, u := range units {
		_ = binary.Write(&buf, binary.BigEndian, u)
	}

	table, err := New(DefaultOptions()).ParseReader(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	if table.Len() != 6 {
		t.Errorf("Len() = %d, want 6", table.Len())
	}
}
