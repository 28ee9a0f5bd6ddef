package inventory

import (
	"fmt"
	"time"
)

// Prefijos de numeración por tipo de documento.
const (
	PrefixSale           = "INV"
	PrefixGRN            = "GRN"
	PrefixSalesReturn    = "SR"
	PrefixPurchaseReturn = "PR"
	PrefixSalesOrder     = "SO"
)

// FormatDocNumber arma un número de documento con alcance diario:
// PREFIJO-YYYYMMDD-NNNN, donde seq es la cantidad de documentos ya existentes
// del mismo tipo ese día (el primero del día recibe 0001). El índice único en
// la tabla detecta la carrera de dos documentos generando el mismo número.
func FormatDocNumber(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format("20060102"), seq+1)
}

// DayRange devuelve [inicio, fin) del día de t, para contar documentos del día.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
