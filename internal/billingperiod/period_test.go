package billingperiod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	got, err := Parse("2025-06")
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	// A full date normalizes to its month.
	got, err = Parse("2025-06-18")
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = Parse("  2025-06  ")
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParse_Invalid(t *testing.T) {
	for _, value := range []string{"", "2025", "2025/06", "06-2025", "2025-13", "june"} {
		_, err := Parse(value)
		assert.ErrorIs(t, err, ErrInvalidMonth, value)
	}
}

func TestFirstOfMonth(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	// 2025-07-01 03:00 JST is still June in UTC.
	local := time.Date(2025, 7, 1, 3, 0, 0, 0, jst)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), FirstOfMonth(local))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2025-06", Format(time.Date(2025, 6, 18, 15, 4, 5, 0, time.UTC)))
}
