package http

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/pkg/logger"
	"github.com/jhoicas/warehouse-ledger/pkg/vnpay"
)

// PaymentHandler firma URLs de pago VNPAY y verifica el retorno del portal.
// Con client nil (sin credenciales) responde 503.
type PaymentHandler struct {
	client *vnpay.Client
	log    *logger.Logger
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(client *vnpay.Client, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{client: client, log: log}
}

// CreateURL godoc
// @Summary      URL firmada de pago VNPAY
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.VNPayURLRequest  true  "order_reference, amount (VND)"
// @Success      200  {object}  dto.VNPayURLResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/payments/vnpay/url [post]
func (h *PaymentHandler) CreateURL(c *fiber.Ctx) error {
	if h.client == nil {
		return paymentsDisabled(c)
	}
	var in dto.VNPayURLRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.OrderReference == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "order_reference requerido"})
	}
	payURL, err := h.client.BuildPaymentURL(vnpay.PaymentRequest{
		TxnRef:    in.OrderReference,
		Amount:    in.Amount,
		OrderInfo: in.OrderInfo,
		IPAddr:    c.IP(),
		Locale:    in.Locale,
		BankCode:  in.BankCode,
	})
	if err != nil {
		if errors.Is(err, vnpay.ErrInvalidAmount) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.VNPayURLResponse{PaymentURL: payURL})
}

// Return godoc
// @Summary      Retorno del portal VNPAY (público)
// @Description  Verifica vnp_SecureHash. Firma ausente o inválida responde 400.
// @Tags         payments
// @Produce      json
// @Success      200  {object}  dto.VNPayReturnResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/payments/vnpay/return [get]
func (h *PaymentHandler) Return(c *fiber.Ctx) error {
	if h.client == nil {
		return paymentsDisabled(c)
	}
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválido"})
	}
	res, err := h.client.VerifyReturn(query)
	if err != nil {
		h.log.Warn().Err(err).Str("txn_ref", query.Get("vnp_TxnRef")).Msg("retorno VNPAY rechazado")
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_SIGNATURE", Message: err.Error()})
	}
	h.log.Info().
		Str("txn_ref", res.TxnRef).
		Str("response_code", res.ResponseCode).
		Bool("success", res.Success).
		Msg("retorno VNPAY verificado")
	return c.JSON(dto.VNPayReturnResponse{
		OrderReference: res.TxnRef,
		Amount:         res.Amount,
		ResponseCode:   res.ResponseCode,
		TransactionNo:  res.TransactionNo,
		BankCode:       res.BankCode,
		Success:        res.Success,
	})
}

func paymentsDisabled(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "PAYMENTS_DISABLED", Message: "VNPAY no configurado"})
}
