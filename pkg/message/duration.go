package message

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxExpirationPeriod is the longest a transaction may stay open
const MaxExpirationPeriod = 7 * 24 * time.Hour

// CheckExpirationPeriod rejects negative periods and periods over seven days.
func CheckExpirationPeriod(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: must not be negative", ErrExpirationPeriod)
	}
	if d > MaxExpirationPeriod {
		return fmt.Errorf("%w: %s exceeds 7 days", ErrExpirationPeriod, d)
	}
	return nil
}

// FormatDuration renders d as an XML Schema duration, e.g. PT1H or P7D.
func FormatDuration(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')

	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute

	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if hours == 0 && minutes == 0 && d == 0 {
		if days == 0 {
			b.WriteString("T0S")
		}
		return b.String()
	}

	b.WriteByte('T')
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if d > 0 {
		b.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
		b.WriteByte('S')
	}
	return b.String()
}
