package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/repository"
	"github.com/jhoicas/warehouse-ledger/internal/domain/routing"
)

// WarehouseUseCase directorio de bodegas y elección de bodega por provincia de envío.
type WarehouseUseCase struct {
	repo  repository.WarehouseRepository
	table *routing.Table
}

// NewWarehouseUseCase construye el caso de uso. La tabla de provincias es de solo lectura.
func NewWarehouseUseCase(repo repository.WarehouseRepository, table *routing.Table) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, table: table}
}

// List bodegas (solo activas si onlyActive).
func (uc *WarehouseUseCase) List(ctx context.Context, onlyActive bool) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.List(ctx, onlyActive)
	if err != nil {
		return nil, err
	}
	out := &dto.WarehouseListResponse{Items: make([]dto.WarehouseResponse, 0, len(list))}
	for _, w := range list {
		out.Items = append(out.Items, *toWarehouseResponse(w))
	}
	return out, nil
}

// GetByID obtiene una bodega por ID o domain.ErrNotFound.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, id int64) (*dto.WarehouseResponse, error) {
	w, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: bodega %d", domain.ErrNotFound, id)
	}
	return toWarehouseResponse(w), nil
}

// Resolve elige la bodega de despacho para la provincia. Nunca devuelve error por la región:
// sin coincidencia se usa la bodega por defecto. Solo falla si el directorio no responde.
func (uc *WarehouseUseCase) Resolve(ctx context.Context, region string) (*dto.ResolveWarehouseResponse, error) {
	id, matched := uc.table.Lookup(region)
	out := &dto.ResolveWarehouseResponse{
		Region:      region,
		WarehouseID: id,
		IsDefault:   !matched,
	}
	w, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w != nil {
		out.Warehouse = toWarehouseResponse(w)
	}
	return out, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	return &dto.WarehouseResponse{
		ID:       w.ID,
		Code:     w.Code,
		Name:     w.Name,
		Region:   w.Region,
		Address:  w.Address,
		IsActive: w.IsActive,
	}
}
