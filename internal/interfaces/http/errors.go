package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/domain"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
)

// writeError traduce errores de dominio a status HTTP. Los errores no previstos se registran
// y se responden como 500 sin exponer el detalle.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var short *inventory.InsufficientStockError
	if errors.As(err, &short) {
		code := "INSUFFICIENT_STOCK"
		if errors.Is(err, domain.ErrInsufficientReserved) {
			code = "INSUFFICIENT_RESERVED"
		}
		lines := make([]dto.ShortageDTO, 0, len(short.Lines))
		for _, l := range short.Lines {
			lines = append(lines, toShortageDTO(l))
		}
		return c.Status(fiber.StatusConflict).JSON(dto.InsufficientStockResponse{Code: code, Message: err.Error(), Lines: lines})
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidAdjustmentType):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrBelowReserved):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "BELOW_RESERVED", Message: err.Error()})
	case errors.Is(err, domain.ErrLockTimeout):
		c.Set(fiber.HeaderRetryAfter, "1")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: "el registro está ocupado, reintente"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: name + " debe ser un entero"})
}

// optionalInt64 lee un query param entero; vacío devuelve nil.
func optionalInt64(c *fiber.Ctx, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func toShortageDTO(l inventory.Shortage) dto.ShortageDTO {
	return dto.ShortageDTO{
		VariantID:   l.VariantID,
		WarehouseID: l.WarehouseID,
		SKU:         l.SKU,
		ProductName: l.ProductName,
		Requested:   l.Requested,
		Available:   l.Available,
	}
}
