// Package version normalizes MuleSoft version strings into comparable
// records.
//
// Vendor documentation mixes version tokens with prose ("4.6.0 Edge
// (February 2024)", "Version 2.10"), so classification is best-effort
// pattern matching: a token either yields a Record or it is plain data.
// There is no error path at this level.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Channel is the release channel a version belongs to.
type Channel string

const (
	// ChannelEdge marks latest-feature releases.
	ChannelEdge Channel = "EDGE"
	// ChannelLTS marks long-term-support releases.
	ChannelLTS Channel = "LTS"
	// ChannelUnknown marks version tokens with no channel marker. Records
	// on this channel appear in full listings but never in latest-version
	// selection.
	ChannelUnknown Channel = "UNKNOWN"
)

var (
	// versionRun matches the first digit-dot run with two or three
	// components. Pre-release suffixes ("-SNAPSHOT") fall outside the
	// match and are kept only in Record.Raw.
	versionRun = regexp.MustCompile(`\d+(?:\.\d+){1,2}`)

	// versionPrefix anchors a digit-dot run to the start of a token.
	versionPrefix = regexp.MustCompile(`^\d+\.\d+`)

	digitRun = regexp.MustCompile(`\d+`)
)

// Key is the numeric ordering key derived from a version string:
// major, minor, patch with missing components zero-filled. Keys compare
// numerically per component, so 4.4.1 orders below 4.10.0.
type Key [3]int

// Compare returns -1, 0, or 1 as k orders before, equal to, or after
// other.
func (k Key) Compare(other Key) int {
	for i := range k {
		switch {
		case k[i] < other[i]:
			return -1
		case k[i] > other[i]:
			return 1
		}
	}
	return 0
}

// String renders the key in dotted form, e.g. "4.4.0".
func (k Key) String() string {
	return fmt.Sprintf("%d.%d.%d", k[0], k[1], k[2])
}

// MarshalText renders the key in dotted form for JSON payloads.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a dotted version string back into a key.
func (k *Key) UnmarshalText(text []byte) error {
	parts := strings.Split(string(text), ".")
	if len(parts) > 3 {
		return fmt.Errorf("version: invalid key %q", text)
	}
	var parsed Key
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("version: invalid key %q: %w", text, err)
		}
		parsed[i] = n
	}
	*k = parsed
	return nil
}

// Record is a normalized version extracted from one documentation token.
// Raw always contains the original token, so the record can be re-derived
// from it.
type Record struct {
	Channel Channel `json:"channel"`
	Key     Key     `json:"value"`
	Raw     string  `json:"raw_text"`
}

// Classify inspects a text token for a version string. It returns nil
// when the token carries no digit-dot run; unclassifiable tokens are
// data, not failures.
//
// The first digit-dot run becomes the ordering key. Channel markers are
// detected by case-insensitive substring, "edge" before "lts", matching
// how the vendor tags its release cadence rows.
func Classify(token string) *Record {
	run := versionRun.FindString(token)
	if run == "" {
		return nil
	}

	var key Key
	for i, part := range strings.SplitN(run, ".", 3) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil
		}
		key[i] = n
	}

	lower := strings.ToLower(token)
	channel := ChannelUnknown
	switch {
	case strings.Contains(lower, "edge"):
		channel = ChannelEdge
	case strings.Contains(lower, "lts"):
		channel = ChannelLTS
	}

	return &Record{Channel: channel, Key: key, Raw: token}
}

// Extract returns the first digit-dot run in token, or the empty
// string when there is none. Unlike Classify it keeps the run exactly
// as written, without zero-padding.
func Extract(token string) string {
	return versionRun.FindString(token)
}

// ExtractAll returns every digit-dot run in token, in order. Returns
// nil when there are none.
func ExtractAll(token string) []string {
	return versionRun.FindAllString(token, -1)
}

// IsVersionString reports whether text begins with a digit-dot run.
// Stricter than Classify, which accepts a run anywhere in the token;
// row filters use this to reject prose cells like "Release 4.4".
func IsVersionString(text string) bool {
	return versionPrefix.MatchString(text)
}

// Latest selects the maximum-key record per channel from records in
// document order. Among records sharing the maximum key within a
// channel, the earliest wins; vendor pages list newest releases first,
// so the first occurrence is the canonical row. ChannelUnknown records
// are never selected. Absent channels are omitted from the result,
// never null-filled.
func Latest(records []Record) map[Channel]Record {
	latest := make(map[Channel]Record, 2)
	for _, rec := range records {
		if rec.Channel == ChannelUnknown {
			continue
		}
		best, ok := latest[rec.Channel]
		if !ok || rec.Key.Compare(best.Key) > 0 {
			latest[rec.Channel] = rec
		}
	}
	return latest
}

// ParseJDKList extracts JDK major versions from an enumeration such as
// "8, 11, and 17" or "17 and 21". Returns nil when the text carries no
// digits.
func ParseJDKList(s string) []int {
	runs := digitRun.FindAllString(s, -1)
	if len(runs) == 0 {
		return nil
	}
	jdks := make([]int, 0, len(runs))
	for _, r := range runs {
		n, err := strconv.Atoi(r)
		if err != nil {
			continue
		}
		jdks = append(jdks, n)
	}
	return jdks
}
