package entity

import "time"

// Customer representa un cliente de la empresa (facturación).
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	Company   string // razón social del cliente, si aplica
	Phone     string
	Email     string
	Address   string
	TaxNumber string // número de registro tributario
	CreatedAt time.Time
	UpdatedAt time.Time
}
