package importer

import (
	"context"
	"io"

	"github.com/thepoolshop/shopkeep/internal/importer/pricelist"
	"github.com/thepoolshop/shopkeep/internal/product"
)

// ProductCreator is the slice of the product service imports go through,
// so imported rows get the same validation, SKU conflict handling and
// initial-stock ledger entries as manually created products.
type ProductCreator interface {
	Create(ctx context.Context, params product.CreateParams, actor string) (*product.Product, error)
}

type Service struct {
	parser   Parser
	products ProductCreator
}

func NewService(products ProductCreator) *Service {
	return &Service{
		parser:   pricelist.NewParser(),
		products: products,
	}
}

// Parse reads a supplier price list into rows for review. Nothing is
// persisted until Confirm.
func (s *Service) Parse(r io.Reader) ([]product.CreateParams, error) {
	return s.parser.Parse(r)
}

// Confirm creates the reviewed rows one by one. A row that fails does not
// stop the rest; it is reported in the result instead.
func (s *Service) Confirm(ctx context.Context, rows []product.CreateParams, actor string) (Result, error) {
	var result Result

	for _, row := range rows {
		if _, err := s.products.Create(ctx, row, actor); err != nil {
			result.Failed = append(result.Failed, RowError{SKU: row.SKU, Reason: err.Error()})
			continue
		}

		result.Created++
	}

	return result, nil
}
