package snapshots

import (
	"fmt"
	"strings"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/database"
)

// Relation names in the store.
const (
	TableLedger  = "cedears"
	TableHistory = "datos_historicos_cedears"
	TableRates   = "historico_dolar"
)

var ledgerColumns = []string{
	"cantidad", "descripcion", "fecha", "fecha_descarga", "gastos", "moneda",
	"precio_compra", "ticker", "tipo", "dolar_mep", "dolar_oficial",
	"costo_ars", "costo_usd", "tenencia_ars", "tenencia_usd",
	"resultados_ars", "resultados_usd", "rendimiento_ars", "rendimiento_usd",
}

var historyColumns = []string{
	"ticker", "cantidad", "fecha_ejecucion", "moneda",
	"costo", "tenencia", "resultados", "rendimiento",
}

var rateColumns = []string{"fecha", "tipo", "valor"}

// types holds the column types that differ between dialects.
type types struct {
	id    string
	float string
	text  string
	date  string
}

func typesFor(d database.Dialect) types {
	if d == database.DialectPostgres {
		return types{
			id:    "BIGSERIAL PRIMARY KEY",
			float: "DOUBLE PRECISION",
			text:  "TEXT",
			date:  "DATE",
		}
	}
	return types{
		id:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		float: "REAL",
		text:  "TEXT",
		date:  "TEXT",
	}
}

func ledgerDDL(d database.Dialect) string {
	t := typesFor(d)
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id_operacion %s,
	cantidad %s,
	descripcion %s,
	fecha %s,
	fecha_descarga %s,
	gastos %s,
	moneda %s,
	precio_compra %s,
	ticker %s,
	tipo %s,
	dolar_mep %s,
	dolar_oficial %s,
	costo_ars %s,
	costo_usd %s,
	tenencia_ars %s,
	tenencia_usd %s,
	resultados_ars %s,
	resultados_usd %s,
	rendimiento_ars %s,
	rendimiento_usd %s
)`, TableLedger, t.id,
		t.float, t.text, t.date, t.date, t.float, t.text,
		t.float, t.text, t.text, t.float, t.float,
		t.float, t.float, t.float, t.float,
		t.float, t.float, t.float, t.float)
}

func historyDDL(d database.Dialect) string {
	t := typesFor(d)
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	ticker %s NOT NULL,
	cantidad %s,
	fecha_ejecucion %s NOT NULL,
	moneda %s NOT NULL,
	costo %s,
	tenencia %s,
	resultados %s,
	rendimiento %s,
	PRIMARY KEY (ticker, fecha_ejecucion, moneda)
)`, TableHistory, t.text, t.float, t.date, t.text, t.float, t.float, t.float, t.float)
}

func ratesDDL(d database.Dialect) string {
	t := typesFor(d)
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	fecha %s NOT NULL,
	tipo %s NOT NULL,
	valor %s,
	PRIMARY KEY (fecha, tipo)
)`, TableRates, t.date, t.text, t.float)
}

// insertSQL builds a ? placeholder INSERT; callers rebind for the dialect.
func insertSQL(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
}
