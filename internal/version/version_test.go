package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		channel Channel
		key     Key
	}{
		{name: "plain two component", token: "4.4", channel: ChannelUnknown, key: Key{4, 4, 0}},
		{name: "plain three component", token: "4.4.1", channel: ChannelUnknown, key: Key{4, 4, 1}},
		{name: "edge marker", token: "4.6.0 Edge", channel: ChannelEdge, key: Key{4, 6, 0}},
		{name: "lts marker", token: "4.6.0 LTS", channel: ChannelLTS, key: Key{4, 6, 0}},
		{name: "lowercase markers", token: "4.5 edge", channel: ChannelEdge, key: Key{4, 5, 0}},
		{name: "marker before number", token: "LTS release 4.4.0", channel: ChannelLTS, key: Key{4, 4, 0}},
		{name: "prose around version", token: "Version 2.10 (May 2025)", channel: ChannelUnknown, key: Key{2, 10, 0}},
		{name: "first run wins", token: "4.4.0 supersedes 4.3.0", channel: ChannelUnknown, key: Key{4, 4, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Classify(tt.token)
			require.NotNil(t, rec)
			assert.Equal(t, tt.channel, rec.Channel)
			assert.Equal(t, tt.key, rec.Key)
			assert.Equal(t, tt.token, rec.Raw)
		})
	}
}

func TestClassifyRejectsNonVersions(t *testing.T) {
	for _, token := range []string{
		"",
		"February 2024",
		"17",
		"8, 11, and 17",
		"N/A",
		"edge",
		"4",
		"v4",
	} {
		t.Run(token, func(t *testing.T) {
			assert.Nil(t, Classify(token))
		})
	}
}

func TestClassifyStripsPreReleaseSuffix(t *testing.T) {
	rec := Classify("4.5.0-SNAPSHOT")
	require.NotNil(t, rec)
	assert.Equal(t, Key{4, 5, 0}, rec.Key)
	assert.Equal(t, "4.5.0-SNAPSHOT", rec.Raw, "suffix stays in raw text")
}

func TestKeyCompareIsNumeric(t *testing.T) {
	low := Classify("4.4").Key
	mid := Classify("4.4.1").Key
	high := Classify("4.10.0").Key

	assert.Equal(t, -1, low.Compare(mid))
	assert.Equal(t, -1, mid.Compare(high), "4.10.0 must not sort before 4.4.1")
	assert.Equal(t, -1, low.Compare(high))
	assert.Equal(t, 0, low.Compare(Key{4, 4, 0}))
	assert.Equal(t, 1, high.Compare(mid))
}

func TestKeyTextRoundTrip(t *testing.T) {
	key := Key{4, 6, 1}
	text, err := key.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "4.6.1", string(text))

	var parsed Key
	require.NoError(t, parsed.UnmarshalText([]byte("4.4")))
	assert.Equal(t, Key{4, 4, 0}, parsed)

	assert.Error(t, parsed.UnmarshalText([]byte("4.x")))
	assert.Error(t, parsed.UnmarshalText([]byte("1.2.3.4")))
}

func TestLatest(t *testing.T) {
	t.Run("picks max key per channel", func(t *testing.T) {
		records := []Record{
			*Classify("4.3.0 LTS"),
			*Classify("4.4.0 Edge"),
			*Classify("4.4.1 Edge"),
		}

		latest := Latest(records)
		require.Len(t, latest, 2)
		assert.Equal(t, "4.4.1 Edge", latest[ChannelEdge].Raw)
		assert.Equal(t, "4.3.0 LTS", latest[ChannelLTS].Raw)
	})

	t.Run("earliest wins on equal keys", func(t *testing.T) {
		records := []Record{
			{Channel: ChannelEdge, Key: Key{4, 5, 0}, Raw: "4.5.0 Edge (first)"},
			{Channel: ChannelEdge, Key: Key{4, 5, 0}, Raw: "4.5.0 Edge (second)"},
		}

		latest := Latest(records)
		assert.Equal(t, "4.5.0 Edge (first)", latest[ChannelEdge].Raw)
	})

	t.Run("unknown channel never selected", func(t *testing.T) {
		records := []Record{
			{Channel: ChannelUnknown, Key: Key{9, 9, 9}, Raw: "9.9.9"},
			{Channel: ChannelLTS, Key: Key{4, 4, 0}, Raw: "4.4.0 LTS"},
		}

		latest := Latest(records)
		require.Len(t, latest, 1)
		assert.Equal(t, "4.4.0 LTS", latest[ChannelLTS].Raw)
	})

	t.Run("absent channel omitted", func(t *testing.T) {
		latest := Latest([]Record{{Channel: ChannelEdge, Key: Key{4, 6, 0}, Raw: "4.6.0 Edge"}})
		_, ok := latest[ChannelLTS]
		assert.False(t, ok)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Latest(nil))
	})
}

func TestIsVersionString(t *testing.T) {
	assert.True(t, IsVersionString("4.4"))
	assert.True(t, IsVersionString("4.6.0 Edge"))
	assert.False(t, IsVersionString("Release 4.4"), "prefix anchored")
	assert.False(t, IsVersionString("17"))
	assert.False(t, IsVersionString(""))
}

func TestParseJDKList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int
	}{
		{name: "comma and conjunction", in: "8, 11, and 17", want: []int{8, 11, 17}},
		{name: "bare conjunction", in: "8 and 11", want: []int{8, 11}},
		{name: "single", in: "17", want: []int{17}},
		{name: "prose wrapper", in: "OpenJDK 17 or 21", want: []int{17, 21}},
		{name: "empty", in: "", want: nil},
		{name: "no digits", in: "not applicable", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseJDKList(tt.in))
		})
	}
}
