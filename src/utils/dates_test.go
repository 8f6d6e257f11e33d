package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatementDate(t *testing.T) {
	t.Run("accepts common broker layouts", func(t *testing.T) {
		for _, value := range []string{"2024-06-14", "06/14/2024", "06-14-2024", "2024/06/14"} {
			parsed, err := ParseStatementDate(value)
			require.NoError(t, err, value)
			assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), parsed)
		}
	})

	t.Run("the as-of date wins", func(t *testing.T) {
		parsed, err := ParseStatementDate("06/20/2024 as of 06/18/2024")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseStatementDate("not a date")
		assert.Error(t, err)
	})
}

func TestDaysHeld(t *testing.T) {
	now := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, DaysHeld(now.AddDate(0, 0, -10), now))
	assert.Equal(t, 0, DaysHeld(now, now))
	assert.Equal(t, 0, DaysHeld(now.AddDate(0, 0, 5), now), "future purchase clamps to zero")
}
