package servicelog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
)

// Expand replaces the placeholders in pattern:
//
//	%Y year, %M month, %D day
//	%h hour, %m minute, %s second, %f millisecond
//	%a action, the root element of the message
//
// Unknown placeholders are kept as they are.
func Expand(pattern string, t time.Time, action string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 == len(pattern) {
			b.WriteByte(c)
			continue
		}
		i++
		switch pattern[i] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'M':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'D':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'h':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'm':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 's':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'f':
			fmt.Fprintf(&b, "%03d", t.Nanosecond()/int(time.Millisecond))
		case 'a':
			b.WriteString(action)
		default:
			b.WriteByte('%')
			b.WriteByte(pattern[i])
		}
	}
	return b.String()
}

// RelativePath turns an expanded pattern into a slash-free relative path.
// Both `\` and `/` separate directories.
func RelativePath(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("service log name %q escapes the log location", name)
	}
	return clean, nil
}

// Action returns the local name of the root element of data, or "unknown"
func Action(data []byte) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil || doc.Root() == nil {
		return "unknown"
	}
	return doc.Root().Tag
}
