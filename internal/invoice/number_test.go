package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextNumber(t *testing.T) {
	date := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	type testCase struct {
		name        string
		maxExisting string
		want        string
	}

	tests := []testCase{
		{name: "FirstOfTheDay", maxExisting: "", want: "INV-20260828-0001"},
		{name: "Increments", maxExisting: "INV-20260828-0001", want: "INV-20260828-0002"},
		{name: "PadsToFourDigits", maxExisting: "INV-20260828-0099", want: "INV-20260828-0100"},
		{name: "GrowsPastFourDigits", maxExisting: "INV-20260828-9999", want: "INV-20260828-10000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextNumber(date, tt.maxExisting))
		})
	}
}

func TestNumberPrefix_ChangesWithDate(t *testing.T) {
	a := numberPrefix(time.Date(2026, 8, 28, 23, 59, 0, 0, time.UTC))
	b := numberPrefix(time.Date(2026, 8, 29, 0, 1, 0, 0, time.UTC))

	assert.Equal(t, "INV-20260828-", a)
	assert.Equal(t, "INV-20260829-", b)

	// The sequence implicitly resets with the new prefix.
	assert.Equal(t, "INV-20260829-0001", nextNumber(time.Date(2026, 8, 29, 0, 1, 0, 0, time.UTC), ""))
}
