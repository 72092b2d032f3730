package importer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepoolshop/shopkeep/internal/importer"
	"github.com/thepoolshop/shopkeep/internal/product"
)

// fakeCreator fails any SKU listed in rejected and records the rest.
type fakeCreator struct {
	rejected map[string]error
	created  []string
}

func (f *fakeCreator) Create(_ context.Context, params product.CreateParams, _ string) (*product.Product, error) {
	if err, ok := f.rejected[params.SKU]; ok {
		return nil, err
	}

	f.created = append(f.created, params.SKU)

	return &product.Product{SKU: params.SKU, Name: params.Name}, nil
}

func TestService_Confirm(t *testing.T) {
	creator := &fakeCreator{
		rejected: map[string]error{"POOL-002": product.ErrDuplicateSKU},
	}

	rows := []product.CreateParams{
		{SKU: "POOL-001", Name: "Chlorine Tablets"},
		{SKU: "POOL-002", Name: "Leaf Skimmer"},
		{SKU: "POOL-003", Name: "Pool Pump"},
	}

	result, err := importer.NewService(creator).Confirm(context.Background(), rows, "admin")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, []string{"POOL-001", "POOL-003"}, creator.created)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "POOL-002", result.Failed[0].SKU)
	assert.Equal(t, product.ErrDuplicateSKU.Error(), result.Failed[0].Reason)
}
