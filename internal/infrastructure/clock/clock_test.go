package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessClock(t *testing.T) {
	t.Run("loads the configured timezone", func(t *testing.T) {
		c := New("America/Argentina/Buenos_Aires")

		loc := c.Location()
		require.NotNil(t, loc)

		_, offset := c.Now().Zone()
		assert.Equal(t, -3*60*60, offset)
	})

	t.Run("falls back to a fixed UTC-3 offset for unknown zones", func(t *testing.T) {
		c := New("Not/AZone")

		_, offset := c.Now().Zone()
		assert.Equal(t, fallbackOffsetSeconds, offset)
	})

	t.Run("Today is midnight of the business date", func(t *testing.T) {
		c := New("America/Argentina/Buenos_Aires")

		today := c.Today()
		assert.Equal(t, 0, today.Hour())
		assert.Equal(t, 0, today.Minute())
		assert.Equal(t, 0, today.Second())
		assert.Equal(t, time.UTC, today.Location())
	})
}
