package entity

import "time"

// Warehouse bodega física desde la que se despacha. Region es la zona de despacho (norte, centro, sur).
type Warehouse struct {
	ID        int64
	Code      string
	Name      string
	Region    string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
