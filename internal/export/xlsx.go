// Package export writes the storefront catalog to an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/utafrali/apparelstore/internal/domain"
)

// SheetName is the name of the single worksheet.
const SheetName = "Products"

const timeLayout = "2006-01-02 15:04:05"

// Columns is the header row, in order.
var Columns = []string{
	"ID", "Name", "Slug", "Category",
	"Price", "Original Price", "Final Price", "Discount",
	"Sizes", "Images", "Stock", "New Arrival", "Created At",
}

// Workbook builds a workbook holding one row per product below the header.
func Workbook(products []domain.CatalogProduct) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, c := range Columns {
		header.AddCell().SetString(c)
	}

	for i := range products {
		writeRow(sheet.AddRow(), &products[i])
	}
	return file, nil
}

func writeRow(row *xlsx.Row, p *domain.CatalogProduct) {
	row.AddCell().SetString(p.ID)
	row.AddCell().SetString(p.Name)
	row.AddCell().SetString(p.Slug)
	row.AddCell().SetString(p.Category)

	price, _ := p.Price.Float64()
	row.AddCell().SetFloat(price)

	original := row.AddCell()
	if p.OriginalPrice.Valid {
		v, _ := p.OriginalPrice.Decimal.Float64()
		original.SetFloat(v)
	}

	final, _ := p.FinalPrice.Float64()
	row.AddCell().SetFloat(final)

	discount := row.AddCell()
	if p.Discount != nil {
		discount.SetString(p.Discount.Label())
	}

	row.AddCell().SetString(strings.Join(p.Sizes, ", "))
	row.AddCell().SetString(strings.Join(p.Images, "\n"))
	row.AddCell().SetInt(p.Stock)
	row.AddCell().SetBool(p.IsNewArrival)

	created := row.AddCell()
	if !p.CreatedAt.IsZero() {
		created.SetString(p.CreatedAt.UTC().Format(timeLayout))
	}
}

// Write encodes the catalog workbook to w.
func Write(w io.Writer, products []domain.CatalogProduct) error {
	file, err := Workbook(products)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Save writes the catalog workbook to path.
func Save(path string, products []domain.CatalogProduct) error {
	file, err := Workbook(products)
	if err != nil {
		return err
	}
	if err := file.Save(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
