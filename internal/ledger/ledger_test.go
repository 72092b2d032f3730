package ledger_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/thepoolshop/shopkeep/internal/ledger"
)

func TestNewEntry_SignNormalization(t *testing.T) {
	type testCase struct {
		name     string
		kind     ledger.Kind
		quantity int
		want     int
	}

	tests := []testCase{
		{name: "OutPositiveIsInverted", kind: ledger.KindOut, quantity: 5, want: -5},
		{name: "OutNegativeIsKept", kind: ledger.KindOut, quantity: -5, want: -5},
		{name: "InPositiveIsKept", kind: ledger.KindIn, quantity: 7, want: 7},
		{name: "InNegativeIsInverted", kind: ledger.KindIn, quantity: -7, want: 7},
		{name: "AdjOnSetDownStaysNegative", kind: ledger.KindAdj, quantity: -3, want: -3},
		{name: "AdjOnSetUpStaysPositive", kind: ledger.KindAdj, quantity: 3, want: 3},
		{name: "AdjZeroIsKept", kind: ledger.KindAdj, quantity: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ledger.NewEntry(uuid.New(), tt.kind, tt.quantity, "note", "admin")

			assert.Equal(t, tt.want, e.Quantity)
			assert.Equal(t, tt.kind, e.Kind)
		})
	}
}
