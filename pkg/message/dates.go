package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// DateTimeLayout is the wire format of every date field: millisecond precision in UTC.
const DateTimeLayout = "2006-01-02T15:04:05.000Z"

// Date-bearing element names per document family
var (
	IDxDateFields  = []string{"directoryDateTimestamp", "createDateTimestamp", "transactionCreateDateTimestamp", "statusDateTimestamp"}
	PainDateFields = []string{"CreDtTm", "RltdDt", "FrDt", "ToDt", "FrstColltnDt", "FnlColltnDt", "BirthDt"}
)

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// DateTime is a timestamp that accepts the formats seen on the wire.
// Values without a zone are taken as UTC.
type DateTime struct {
	time.Time
}

// NewDateTime wraps t.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t}
}

// MarshalText implements encoding.TextMarshaler
func (d DateTime) MarshalText() ([]byte, error) {
	return []byte(d.UTC().Format(time.RFC3339Nano)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *DateTime) UnmarshalText(text []byte) error {
	t, err := ParseDateTime(string(text))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDateTime parses a date or date-time value.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time value %q", s)
}

// FormatDateTime renders t in DateTimeLayout.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

// NormalizeDates rewrites the text of every element whose local name is in
// fields to DateTimeLayout. Elements are visited in document order, at any depth.
func NormalizeDates(data []byte, fields []string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsing document: no root element")
	}

	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		names[f] = true
	}

	if err := rewriteDates(root, names); err != nil {
		return nil, err
	}
	return doc.WriteToBytes()
}

func rewriteDates(el *etree.Element, names map[string]bool) error {
	if names[el.Tag] {
		t, err := ParseDateTime(el.Text())
		if err != nil {
			return fmt.Errorf("element %s: %w", el.Tag, err)
		}
		el.SetText(FormatDateTime(t))
	}
	for _, child := range el.ChildElements() {
		if err := rewriteDates(child, names); err != nil {
			return err
		}
	}
	return nil
}
