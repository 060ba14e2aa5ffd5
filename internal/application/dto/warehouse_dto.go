package dto

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Region   string `json:"region"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`
}

// WarehouseListResponse lista de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
}

// ResolveWarehouseResponse bodega elegida para una provincia de envío.
type ResolveWarehouseResponse struct {
	Region      string             `json:"region"`
	WarehouseID int64              `json:"warehouse_id"`
	IsDefault   bool               `json:"is_default"` // la provincia no se reconoció
	Warehouse   *WarehouseResponse `json:"warehouse,omitempty"`
}
