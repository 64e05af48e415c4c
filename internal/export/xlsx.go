// Package export writes extraction results as XLSX workbooks.
package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/classified-extractor/app/models"
)

// Sheet is the name of the results sheet.
const Sheet = "Ads"

var headers = []string{
	"ID",
	"Newspaper",
	"Status",
	"Wage",
	"Wage Excluded",
	"Addresses",
	"Counties",
	"Zipcodes",
	"Address Excluded",
	"Address Error",
	"Wage Strong",
	"Wage Maybe",
	"Wage Weak",
}

// WriteAds writes one row per result to w. Nil results are skipped.
func WriteAds(w io.Writer, results []*models.AdResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", Sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(Sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	row := 2
	for _, r := range results {
		if r == nil {
			continue
		}
		if err := f.SetSheetRow(Sheet, fmt.Sprintf("A%d", row), &[]interface{}{
			r.ID,
			r.Newspaper,
			r.Status,
			deref(r.Wage),
			r.WageExcluded,
			joinAddresses(r.Addresses),
			joinField(r.Addresses, func(a models.AddressCandidate) string { return a.County }),
			joinField(r.Addresses, func(a models.AddressCandidate) string { return a.Zipcode }),
			r.AddressExcluded,
			r.AddressError,
			sandbox(r.Sandbox, func(s *models.WageSandbox) []string { return s.Strong }),
			sandbox(r.Sandbox, func(s *models.WageSandbox) []string { return s.Maybe }),
			sandbox(r.Sandbox, func(s *models.WageSandbox) []string { return s.Weak }),
		}); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	_ = f.SetColWidth(Sheet, "A", "C", 12)
	_ = f.SetColWidth(Sheet, "D", "D", 22)
	_ = f.SetColWidth(Sheet, "F", "F", 60)
	_ = f.SetColWidth(Sheet, "G", "H", 20)
	_ = f.SetPanes(Sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// AdsXLSX returns the workbook of WriteAds as bytes.
func AdsXLSX(results []*models.AdResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteAds(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinAddresses(addrs []models.AddressCandidate) string {
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Format())
	}
	return strings.Join(out, "; ")
}

// joinField lists the distinct non-empty values of one field.
func joinField(addrs []models.AddressCandidate, field func(models.AddressCandidate) string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, a := range addrs {
		v := field(a)
		if _, dup := seen[v]; v == "" || dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, "; ")
}

func sandbox(s *models.WageSandbox, tier func(*models.WageSandbox) []string) string {
	if s == nil {
		return ""
	}
	return strings.Join(tier(s), "; ")
}
