package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, MsgSuccess},
		{"connection", domain.Errorf(domain.KindConnection, "database.ping", "x"), MsgConnection},
		{"wrapped connection", fmt.Errorf("failed to reach database: %w", domain.Errorf(domain.KindConnection, "database.ping", "x")), MsgConnection},
		{"legacy workbook", domain.NewError(domain.KindInputFormat, "workbook.format", "a.xls", domain.ErrLegacyWorkbook), MsgLegacyWorkbook},
		{"unsupported file", domain.NewError(domain.KindInputFormat, "workbook.format", "a.csv", domain.ErrUnsupportedFile), MsgUnsupportedFile},
		{
			"missing sheet",
			domain.NewError(domain.KindInputFormat, "workbook.sheet", "resultados_por_lotes_finales", domain.ErrSheetNotFound),
			"❌ Error de Excel: No se encontró la hoja 'resultados_por_lotes_finales' en el archivo que subiste. Por favor, revisa el archivo.",
		},
		{"quotes", domain.Errorf(domain.KindQuoteUnavailable, "quotes.collect", "no quote for KO"), MsgQuoteUnavailable},
		{"rates", domain.Errorf(domain.KindRatesUnavailable, "dolarapi.get_rates", "down"), MsgRatesUnavailable},
		{"generic", errors.New("disk full"), "Error general en el procesamiento: disk full"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UserMessage(tc.err))
		})
	}
}

func TestUserMessage_MissingColumnsListsHeaders(t *testing.T) {
	err := domain.NewError(domain.KindInputFormat, "workbook.header", "Ticker, Gastos", domain.ErrMissingColumn)
	assert.Contains(t, UserMessage(err), "Ticker, Gastos")
}

func TestUserMessage_MissingRelationCarriesDetail(t *testing.T) {
	err := domain.Errorf(domain.KindMissingRelation, "snapshots.replace_ledger", "cedears")
	assert.Equal(t, "❌ Error de Base de Datos: Una de las tablas no existe. (Detalle: snapshots.replace_ledger: cedears)", UserMessage(err))
}
