package export

import (
	"bytes"
	"fmt"

	"go-inventory-agent/internal/models"

	"github.com/xuri/excelize/v2"
)

const productSheet = "Products"

// ProductsXLSX renders the catalog as a workbook with a bold header row and
// a low-stock highlight.
func ProductsXLSX(products []models.Product) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", productSheet); err != nil {
		return nil, err
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 1}},
	})
	if err != nil {
		return nil, err
	}
	low, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#F8CBAD"}},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range productHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(productSheet, cell, h); err != nil {
			return nil, err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(productHeader))
	if err := f.SetCellStyle(productSheet, "A1", lastCol+"1", header); err != nil {
		return nil, err
	}

	for i, p := range products {
		row := i + 2
		price, _ := p.Price.Float64()
		cost, _ := p.Cost.Float64()
		values := []any{p.ID, p.SKU, p.Name, p.Category, p.Unit, price, cost, p.Quantity, p.ReorderLevel}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(productSheet, cell, &values); err != nil {
			return nil, err
		}
		if p.IsLowStock() {
			if err := f.SetCellStyle(productSheet, cell, fmt.Sprintf("%s%d", lastCol, row), low); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetColWidth(productSheet, "C", "C", 32); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
