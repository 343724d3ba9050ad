package pipeline

import (
	"errors"
	"fmt"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
)

// User-facing result messages.
const (
	MsgSuccess          = "¡Proceso completado con éxito!"
	MsgConnection       = "❌ ¡Error de conexión! Revisa tu Host, Usuario, Contraseña y Nombre de Base de Datos."
	MsgLegacyWorkbook   = "❌ Error de Archivo: El formato de Excel .xls no es compatible. Por favor, abre el archivo en Excel y guárdalo como .xlsx antes de subirlo."
	MsgUnsupportedFile  = "❌ Error de Archivo: Solo se admiten archivos de Excel .xlsx."
	MsgQuoteUnavailable = "Error al obtener las cotizaciones. Proceso detenido."
	MsgRatesUnavailable = "No se pudo obtener el valor del dólar, el proceso no puede continuar."
)

// UserMessage converts a fatal run error into the message shown to the user.
// It is the only place where error kinds turn into text.
func UserMessage(err error) string {
	if err == nil {
		return MsgSuccess
	}

	switch domain.KindOf(err) {
	case domain.KindConnection:
		return MsgConnection
	case domain.KindInputFormat:
		return inputMessage(err)
	case domain.KindQuoteUnavailable:
		return MsgQuoteUnavailable
	case domain.KindRatesUnavailable:
		return MsgRatesUnavailable
	case domain.KindMissingRelation:
		return fmt.Sprintf("❌ Error de Base de Datos: Una de las tablas no existe. (Detalle: %v)", err)
	default:
		return fmt.Sprintf("Error general en el procesamiento: %v", err)
	}
}

func inputMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrLegacyWorkbook):
		return MsgLegacyWorkbook
	case errors.Is(err, domain.ErrUnsupportedFile):
		return MsgUnsupportedFile
	case errors.Is(err, domain.ErrSheetNotFound):
		return fmt.Sprintf("❌ Error de Excel: No se encontró la hoja '%s' en el archivo que subiste. Por favor, revisa el archivo.", detailOf(err))
	case errors.Is(err, domain.ErrMissingColumn):
		return fmt.Sprintf("❌ Error de Excel: Faltan columnas obligatorias (%s). Por favor, revisa el archivo.", detailOf(err))
	default:
		return fmt.Sprintf("❌ Error de Excel: %v", err)
	}
}

// detailOf returns the Detail of the first typed error in the chain.
func detailOf(err error) string {
	var e *domain.Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}
