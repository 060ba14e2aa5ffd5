package entity

import "time"

// ProductVariant variante vendible (talla, color...) de un producto del catálogo.
// El catálogo pertenece a la tienda; aquí solo se lee para validar y nombrar líneas.
type ProductVariant struct {
	ID          int64
	ProductID   int64
	SKU         string
	ProductName string
	Name        string
	IsActive    bool
	CreatedAt   time.Time
}

// DisplayName nombre para mensajes al usuario ("Camiseta - Talla M").
func (v *ProductVariant) DisplayName() string {
	if v.Name == "" {
		return v.ProductName
	}
	if v.ProductName == "" {
		return v.Name
	}
	return v.ProductName + " - " + v.Name
}
