// Package workbook reads the Balanz "Resultados del período" xlsx export into transactions.
package workbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Loader parses the export's data sheet.
type Loader struct {
	sheet string
	log   zerolog.Logger
}

// NewLoader creates a loader for the given sheet name.
func NewLoader(sheet string, log zerolog.Logger) *Loader {
	return &Loader{
		sheet: sheet,
		log:   log.With().Str("component", "workbook").Logger(),
	}
}

// CheckFormat rejects anything that is not a zip-based .xlsx workbook.
func CheckFormat(name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return nil
	case ".xls":
		return domain.NewError(domain.KindInputFormat, "workbook.format", name, domain.ErrLegacyWorkbook)
	default:
		return domain.NewError(domain.KindInputFormat, "workbook.format", name, domain.ErrUnsupportedFile)
	}
}

// LoadFile opens and parses the workbook at path.
func (l *Loader) LoadFile(path string) ([]domain.Transaction, error) {
	if err := CheckFormat(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, domain.NewError(domain.KindInputFormat, "workbook.open", filepath.Base(path), err)
	}
	defer file.Close()

	return l.Load(file, filepath.Base(path))
}

// Load parses a workbook read from r. name is only used for the format check and messages.
func (l *Loader) Load(r io.Reader, name string) ([]domain.Transaction, error) {
	if err := CheckFormat(name); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewError(domain.KindInputFormat, "workbook.open", name, err)
	}
	defer f.Close()

	return l.parse(f, name)
}

func (l *Loader) parse(f *excelize.File, name string) ([]domain.Transaction, error) {
	if !hasSheet(f, l.sheet) {
		return nil, domain.NewError(domain.KindInputFormat, "workbook.sheet", l.sheet, domain.ErrSheetNotFound)
	}

	// Raw values keep numbers unformatted and dates as Excel serials.
	rows, err := f.GetRows(l.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, domain.NewError(domain.KindInputFormat, "workbook.read", l.sheet, err)
	}
	if len(rows) == 0 {
		return nil, domain.NewError(domain.KindInputFormat, "workbook.read", l.sheet, fmt.Errorf("sheet is empty"))
	}

	cols := indexHeader(rows[0])
	if missing := cols.missing(); len(missing) > 0 {
		return nil, domain.NewError(domain.KindInputFormat, "workbook.header",
			strings.Join(sourceHeaders(missing), ", "), domain.ErrMissingColumn)
	}
	if !cols.has(colDate) {
		l.log.Warn().Str("file", name).Msg("Fecha column not found, transactions will not be sorted by date")
	}

	transactions := make([]domain.Transaction, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		tx, err := parseRow(cols, row)
		if err != nil {
			// Row numbers are 1-based and include the header.
			return nil, domain.NewError(domain.KindInputFormat, "workbook.row",
				fmt.Sprintf("%s row %d", l.sheet, i+2), err)
		}
		transactions = append(transactions, tx)
	}

	l.log.Info().
		Str("file", name).
		Str("sheet", l.sheet).
		Int("rows", len(transactions)).
		Msg("Workbook loaded")

	return transactions, nil
}

func parseRow(cols columnIndex, row []string) (domain.Transaction, error) {
	var tx domain.Transaction
	var err error

	tx.Ticker = cols.cell(row, colTicker)
	tx.InstrumentClass = cols.cell(row, colClass)
	tx.Description = cols.cell(row, colDescription)
	tx.Currency = cols.cell(row, colCurrency)

	numeric := []struct {
		field string
		dst   *float64
	}{
		{colQuantity, &tx.Quantity},
		{colPurchasePrice, &tx.PurchasePrice},
		{colFees, &tx.Fees},
		{colDollarMEP, &tx.DollarMEP},
		{colDollarOficial, &tx.DollarOficial},
	}
	for _, n := range numeric {
		if *n.dst, err = parseNumber(cols.cell(row, n.field)); err != nil {
			return tx, fmt.Errorf("%s: %w", fieldHeader(n.field), err)
		}
	}

	if raw := cols.cell(row, colDate); raw != "" {
		if tx.Date, err = parseDate(raw); err != nil {
			return tx, fmt.Errorf("%s: %w", fieldHeader(colDate), err)
		}
	}
	if raw := cols.cell(row, colBatchDate); raw != "" {
		if tx.BatchDate, err = parseDate(raw); err != nil {
			return tx, fmt.Errorf("%s: %w", fieldHeader(colBatchDate), err)
		}
	}

	return tx, nil
}

// parseNumber accepts raw numeric cells; blanks and text are load errors.
// Grouped or comma-decimal text ("1.234,56", "1,5") is rejected rather than guessed.
func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", domain.ErrInvalidCellValue)
	}
	if strings.Contains(s, ",") {
		return 0, fmt.Errorf("%w: %q is not a plain decimal", domain.ErrInvalidCellValue, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not numeric", domain.ErrInvalidCellValue, s)
	}
	f, _ := d.Float64()
	return f, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
}

// parseDate handles Excel serial dates and the text layouts seen in exports.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", domain.ErrInvalidCellValue)
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", domain.ErrInvalidCellValue, err)
		}
		return domain.Day(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse date %q", domain.ErrInvalidCellValue, s)
}

func hasSheet(f *excelize.File, sheet string) bool {
	for _, name := range f.GetSheetList() {
		if name == sheet {
			return true
		}
	}
	return false
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func fieldHeader(field string) string {
	for header, f := range headerToField {
		if f == field {
			return header
		}
	}
	return field
}

func sourceHeaders(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = fieldHeader(f)
	}
	return out
}
