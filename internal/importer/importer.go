package importer

import (
	"io"

	"github.com/thepoolshop/shopkeep/internal/product"
)

// Parser turns an uploaded supplier file into product create params.
type Parser interface {
	Parse(r io.Reader) ([]product.CreateParams, error)
}

// RowError records why one parsed row could not be imported.
type RowError struct {
	SKU    string
	Reason string
}

// Result summarizes a confirmed import. Rows that failed (duplicate SKU,
// validation) are reported individually; the rest were created.
type Result struct {
	Created int
	Failed  []RowError
}
