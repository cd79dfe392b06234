// Package clock provides civil time normalization for record timestamps.
//
// All records are stamped in one canonical civil timezone (UTC+8) regardless
// of where the device physically is, so a single traveling user gets
// consistent dates across devices. The two legacy code paths disagreed on
// this; the fixed offset is now applied uniformly to default-input
// generation and to stored timestamps.
package clock

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the civil date form used by date inputs and WeightSample.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the civil date-time form used by datetime inputs.
	DateTimeLayout = "2006-01-02T15:04"
	// StorageLayout is the persisted instant form. RFC3339 in UTC sorts
	// lexicographically, which the store's string range queries rely on.
	StorageLayout = time.RFC3339
)

// canonicalOffsetHours is the fixed civil offset for all timestamps.
const canonicalOffsetHours = 8

// Canonical is the canonical civil zone.
var Canonical = time.FixedZone("UTC+8", canonicalOffsetHours*60*60)

// Normalizer converts wall-clock instants into canonical civil strings and
// back. The zero value is not usable; construct with NewNormalizer.
type Normalizer struct {
	zone *time.Location
	now  func() time.Time
}

// NewNormalizer returns a Normalizer on the canonical UTC+8 zone.
func NewNormalizer() *Normalizer {
	return &Normalizer{zone: Canonical, now: time.Now}
}

// NewNormalizerFunc returns a Normalizer with an injected time source.
func NewNormalizerFunc(now func() time.Time) *Normalizer {
	return &Normalizer{zone: Canonical, now: now}
}

// Now returns the current instant in the canonical civil zone.
func (n *Normalizer) Now() time.Time {
	return n.now().In(n.zone)
}

// NowCivil returns the current civil date and date-time strings,
// zero-padded, for use as default input values.
func (n *Normalizer) NowCivil() (date, datetime string) {
	t := n.Now()
	return t.Format(DateLayout), t.Format(DateTimeLayout)
}

// ParseCivil parses a civil "YYYY-MM-DDTHH:MM" string in the canonical zone.
func (n *Normalizer) ParseCivil(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, n.zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid civil date-time %q: %w", s, err)
	}
	return t, nil
}

// ParseCivilDate parses a civil "YYYY-MM-DD" string in the canonical zone.
func (n *Normalizer) ParseCivilDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, n.zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid civil date %q: %w", s, err)
	}
	return t, nil
}

// Stamp converts a civil date-time string into the persisted instant form.
func (n *Normalizer) Stamp(civil string) (string, error) {
	t, err := n.ParseCivil(civil)
	if err != nil {
		return "", err
	}
	return ToStorage(t), nil
}

// MonthStart returns the persisted-form instant of the first of the current
// civil month, the lower bound for this-month workout queries.
func (n *Normalizer) MonthStart() string {
	t := n.Now()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, n.zone)
	return ToStorage(start)
}

// ToStorage renders an instant in the persisted RFC3339 UTC form.
func ToStorage(t time.Time) string {
	return t.UTC().Format(StorageLayout)
}

// FromStorage parses a persisted RFC3339 instant.
func FromStorage(s string) (time.Time, error) {
	t, err := time.Parse(StorageLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}
