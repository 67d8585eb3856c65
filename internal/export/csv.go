// Package export writes survey results as spreadsheet-friendly CSV.
package export

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ContentType is sent with CSV downloads
const ContentType = "text/csv; charset=utf-8"

// BOM lets spreadsheet tools detect UTF-8
const BOM = "\uFEFF"

const timestampLayout = "02/01/2006 15:04:05"

// Writer emits CSV where every field is quoted and embedded quotes are
// doubled, so delimiters and newlines inside answers never split a column.
type Writer struct {
	w        *bufio.Writer
	wroteBOM bool
}

// NewWriter creates a CSV writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes one record, preceded by the BOM on the first call
func (cw *Writer) Write(record []string) error {
	if !cw.wroteBOM {
		if _, err := cw.w.WriteString(BOM); err != nil {
			return err
		}
		cw.wroteBOM = true
	}
	for i, field := range record {
		if i > 0 {
			if err := cw.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := cw.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := cw.w.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
			return err
		}
		if err := cw.w.WriteByte('"'); err != nil {
			return err
		}
	}
	return cw.w.WriteByte('\n')
}

// WriteAll writes the header and rows and flushes
func (cw *Writer) WriteAll(header []string, rows [][]string) error {
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// Flush writes buffered data to the underlying writer
func (cw *Writer) Flush() error {
	return cw.w.Flush()
}

// FormatTimestamp renders a submission time for a CSV cell. The value never
// contains the field delimiter.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return strings.ReplaceAll(t.Format(timestampLayout), ",", "")
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// Filename derives a download name from a survey title: accents are folded,
// everything but ASCII letters and digits becomes '_' and the result is
// lower-cased.
func Filename(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	name := nonAlnum.ReplaceAllString(strings.ToLower(folded), "_")
	if strings.Trim(name, "_") == "" {
		name = "encuesta"
	}
	return name + ".csv"
}
