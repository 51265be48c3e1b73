package controller

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"printshop/internal/dto"
)

// Column headers as the marketplace writes them in its order export.
const (
	colBuyerName   = "Nome de usuário (comprador)"
	colOrderID     = "ID do pedido"
	colStatus      = "Status"
	colProductName = "Nome do Produto"
	colBuyerNote   = "Observação do comprador"
	colQuantity    = "Quantidade"
)

// ParseOrderRows reads the first sheet of an uploaded workbook into raw rows.
// The first row is the header; cells missing from a row default to "".
func ParseOrderRows(file io.Reader) ([]dto.RawOrderRow, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[header] = i
	}

	cell := func(row []string, header string) string {
		i, ok := columns[header]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	result := make([]dto.RawOrderRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		result = append(result, dto.RawOrderRow{
			BuyerName:   cell(row, colBuyerName),
			OrderID:     cell(row, colOrderID),
			Status:      cell(row, colStatus),
			ProductName: cell(row, colProductName),
			BuyerNote:   cell(row, colBuyerNote),
			Quantity:    cell(row, colQuantity),
		})
	}

	return result, nil
}
