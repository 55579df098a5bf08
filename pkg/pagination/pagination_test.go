package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-10))
	assert.Equal(t, 40, NormalizeLimit(40))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
}

func TestLimitWithBuffer(t *testing.T) {
	assert.Equal(t, DefaultLimit+1, LimitWithBuffer(0))
	assert.Equal(t, 11, LimitWithBuffer(10))
	assert.Equal(t, MaxLimit+1, LimitWithBuffer(MaxLimit*2))
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(original)
	require.NotEmpty(t, encoded)

	decoded, err := ParseCursor(encoded)
	require.NoError(t, err)
	require.NotNil(t, decoded)
	assert.True(t, decoded.CreatedAt.Equal(original.CreatedAt))
	assert.Equal(t, original.ID, decoded.ID)
}

func TestParseCursorEmptyIsNil(t *testing.T) {
	for _, value := range []string{"", "   "} {
		cursor, err := ParseCursor(value)
		require.NoError(t, err)
		assert.Nil(t, cursor)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"not base64":        "!!!not-base64!!!",
		"missing separator": encode("2026-03-14T09:26:53Z"),
		"bad timestamp":     encode("yesterday|" + uuid.NewString()),
		"bad id":            encode("2026-03-14T09:26:53Z|not-a-uuid"),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			cursor, err := ParseCursor(value)
			require.Error(t, err)
			assert.Nil(t, cursor)
		})
	}
}

func encode(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}
