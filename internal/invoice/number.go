package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Invoice numbers look like INV-20260828-0042: date-scoped with a 4-digit
// sequence that implicitly resets each day because the prefix changes.
// Finding the max and incrementing is racy under concurrent creation, so
// the number column is unique and Create retries on ErrNumberTaken.

func numberPrefix(date time.Time) string {
	return "INV-" + date.Format("20060102") + "-"
}

// nextNumber derives the next number in sequence for a day given the
// highest existing number with that day's prefix ("" when the day has no
// invoices yet).
func nextNumber(date time.Time, maxExisting string) string {
	seq := 1

	if maxExisting != "" {
		parts := strings.Split(maxExisting, "-")
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s%04d", numberPrefix(date), seq)
}
