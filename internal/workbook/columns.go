package workbook

import "strings"

// Canonical field names for the Balanz export headers.
const (
	colQuantity      = "cantidad"
	colDescription   = "descripcion"
	colDate          = "fecha"
	colBatchDate     = "fecha_descarga"
	colFees          = "gastos"
	colCurrency      = "moneda"
	colOperation     = "operacion"
	colPurchasePrice = "precio_compra"
	colTicker        = "ticker"
	colClass         = "tipo"
	colDollarCCL     = "dolar_ccl"
	colDollarMEP     = "dolar_mep"
	colDollarOficial = "dolar_oficial"
)

// headerToField renames source headers to canonical fields.
var headerToField = map[string]string{
	"Cantidad":      colQuantity,
	"Descripcion":   colDescription,
	"Fecha":         colDate,
	"Fecha Lote":    colBatchDate,
	"Gastos":        colFees,
	"Moneda":        colCurrency,
	"Operacion":     colOperation,
	"Precio Compra": colPurchasePrice,
	"Ticker":        colTicker,
	"Tipo":          colClass,
	"DolarCCL":      colDollarCCL,
	"DolarMEP":      colDollarMEP,
	"DolarOficial":  colDollarOficial,
}

// droppedFields are tolerated in the source but never loaded.
var droppedFields = map[string]bool{
	colDollarCCL: true,
	colOperation: true,
}

// requiredFields must be present as headers; Fecha is optional so the
// valuation can proceed unsorted when it is missing.
var requiredFields = []string{
	colQuantity,
	colPurchasePrice,
	colFees,
	colTicker,
	colClass,
	colDollarMEP,
	colDollarOficial,
}

// normalizeHeader maps a header cell to its canonical field.
// Unknown headers are returned lower-cased with spaces replaced.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	if f, ok := headerToField[h]; ok {
		return f
	}
	return strings.ReplaceAll(strings.ToLower(h), " ", "_")
}

// columnIndex maps canonical fields to their position in the header row.
type columnIndex map[string]int

func indexHeader(header []string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		field := normalizeHeader(h)
		if field == "" || droppedFields[field] {
			continue
		}
		if _, dup := idx[field]; !dup {
			idx[field] = i
		}
	}
	return idx
}

func (c columnIndex) missing() []string {
	var out []string
	for _, f := range requiredFields {
		if _, ok := c[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func (c columnIndex) has(field string) bool {
	_, ok := c[field]
	return ok
}

func (c columnIndex) cell(row []string, field string) string {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
