package entity

import "time"

// ComplianceEntry es un asiento del registro de sustancias controladas
// (Schedule H): una fila por línea de venta de un producto marcado como
// controlado, escrita en la misma transacción que la venta. Solo inserción;
// nunca se actualiza ni se borra.
type ComplianceEntry struct {
	ID          string
	SaleID      string
	BillNo      string
	ProductID   string
	ProductName string
	BatchNumber string
	Quantity    int64
	Customer    string
	DoctorName  string
	CreatedBy   string
	CreatedAt   time.Time
}
