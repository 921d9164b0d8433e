package ulid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithPrefix(t *testing.T) {
	for _, prefix := range []string{PrefixRequest, PrefixHistory, PrefixAnalysis} {
		id := GenerateWithPrefix(prefix)

		assert.False(t, id.IsZero(), "Generated ULID should not be zero")
		assert.Equal(t, prefix, id.Prefix())
		assert.Contains(t, id.String(), prefix+PrefixSeparator)
		assert.WithinDuration(t, time.Now(), id.Time(), time.Second)
	}
}

func TestParse(t *testing.T) {
	prefixed := GenerateWithPrefix(PrefixHistory)
	parsed, err := Parse(prefixed.String())
	require.NoError(t, err)
	assert.Equal(t, prefixed, parsed)

	raw := NewWithTime(time.Now())
	parsedRaw, err := Parse(raw.String())
	require.NoError(t, err)
	assert.Equal(t, raw, parsedRaw)
	assert.Empty(t, parsedRaw.Prefix())

	_, err = Parse("hist-not-a-ulid")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.True(t, Validate(RequestID()))
	assert.True(t, Validate(NewWithTime(time.Now()).String()))

	assert.False(t, Validate("invalid"))
	assert.False(t, Validate("req-invalid"))
	assert.False(t, Validate(""))
}

func TestOrderingFollowsTime(t *testing.T) {
	earlier := NewWithTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	later := NewWithTime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	assert.Less(t, earlier.String(), later.String())
}

func TestDatabaseSerialization(t *testing.T) {
	id := GenerateWithPrefix(PrefixHistory)
	value, err := id.Value()
	require.NoError(t, err)

	strValue, ok := value.(string)
	require.True(t, ok, "Value should return a string")

	var scanned ULID
	require.NoError(t, scanned.Scan(strValue))
	assert.Equal(t, id, scanned)

	var fromBytes ULID
	require.NoError(t, fromBytes.Scan([]byte(strValue)))
	assert.Equal(t, id, fromBytes)

	var fromNil ULID
	require.NoError(t, fromNil.Scan(nil))
	assert.True(t, fromNil.IsZero())

	var fromInvalid ULID
	assert.Error(t, fromInvalid.Scan(123))
}

func TestDomainIDGeneration(t *testing.T) {
	testCases := []struct {
		name   string
		fn     func() string
		prefix string
	}{
		{"RequestID", RequestID, PrefixRequest},
		{"HistoryID", HistoryID, PrefixHistory},
		{"AnalysisID", AnalysisID, PrefixAnalysis},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := tc.fn()
			assert.True(t, Validate(id))

			parsed, err := Parse(id)
			require.NoError(t, err)
			assert.Equal(t, tc.prefix, parsed.Prefix())
		})
	}
}
