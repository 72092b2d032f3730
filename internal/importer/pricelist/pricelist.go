// Package pricelist parses supplier price-list CSVs into product create
// params. Suppliers export these from spreadsheets, so the parser
// tolerates preamble rows before the header, varying column order and
// naming, legacy charsets and both decimal conventions.
package pricelist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	enc "github.com/thepoolshop/shopkeep/internal/encoding"
	"github.com/thepoolshop/shopkeep/internal/product"
)

// headerAliases maps each field to the header spellings suppliers use,
// lowercased. SKU and name are required; the rest default to zero.
var headerAliases = map[string][]string{
	"sku":       {"sku", "code", "ref", "reference", "article"},
	"name":      {"name", "product", "product name", "designation"},
	"category":  {"category", "group", "family"},
	"quantity":  {"quantity", "qty", "stock", "units"},
	"cost":      {"cost", "cost price", "unit cost", "buy price"},
	"price":     {"price", "selling price", "retail price", "rrp"},
	"threshold": {"low stock threshold", "reorder level", "min stock"},
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]product.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("reading price list: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}

	cols, headerIdx := findHeader(rows)
	if cols == nil {
		return nil, fmt.Errorf("no header row found: need at least sku and name columns")
	}

	return parseRows(cols, rows[headerIdx+1:])
}

// detectDelimiter picks comma or semicolon by which occurs more in the
// first line. Spreadsheets in comma-decimal locales export semicolons.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}

	return ','
}

// colIndex maps canonical field names to their column in the file.
type colIndex map[string]int

// findHeader scans for the first row containing both a sku and a name
// column, skipping whatever preamble the supplier put above it.
func findHeader(rows [][]string) (colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))

			for field, aliases := range headerAliases {
				if _, taken := cols[field]; taken {
					continue
				}

				for _, alias := range aliases {
					if name == alias {
						cols[field] = i
						break
					}
				}
			}
		}

		if _, ok := cols["sku"]; !ok {
			continue
		}

		if _, ok := cols["name"]; ok {
			return cols, rowIdx
		}
	}

	return nil, 0
}

func parseRows(cols colIndex, rows [][]string) ([]product.CreateParams, error) {
	var params []product.CreateParams

	for _, row := range rows {
		sku := cell(row, cols, "sku")
		name := cell(row, cols, "name")

		// Blank and footer rows.
		if sku == "" || name == "" {
			continue
		}

		quantity, err := parseInt(cell(row, cols, "quantity"))
		if err != nil {
			continue
		}

		threshold, err := parseInt(cell(row, cols, "threshold"))
		if err != nil {
			continue
		}

		cost, err := parsePrice(cell(row, cols, "cost"))
		if err != nil {
			continue
		}

		price, err := parsePrice(cell(row, cols, "price"))
		if err != nil {
			continue
		}

		params = append(params, product.CreateParams{
			SKU:               sku,
			Name:              name,
			Category:          cell(row, cols, "category"),
			Quantity:          quantity,
			CostPrice:         cost,
			SellingPrice:      price,
			LowStockThreshold: threshold,
		})
	}

	return params, nil
}

func cell(row []string, cols colIndex, field string) string {
	idx, ok := cols[field]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	return strconv.Atoi(s)
}

// parsePrice accepts both decimal conventions: "1,234.56" and "1.234,56",
// with or without a currency symbol.
func parsePrice(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}

	clean := strings.TrimLeft(s, "€$£ ")
	clean = strings.TrimRight(clean, "€$£ ")

	lastComma := strings.LastIndexByte(clean, ',')
	lastDot := strings.LastIndexByte(clean, '.')

	if lastComma > lastDot {
		// Comma-decimal: dots are thousand separators.
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
