package dto

import "github.com/shopspring/decimal"

// VNPayURLRequest body para POST /api/payments/vnpay/url.
type VNPayURLRequest struct {
	OrderReference string          `json:"order_reference"`
	Amount         decimal.Decimal `json:"amount"` // VND
	OrderInfo      string          `json:"order_info,omitempty"`
	BankCode       string          `json:"bank_code,omitempty"`
	Locale         string          `json:"locale,omitempty"`
}

// VNPayURLResponse URL firmada de redirección al portal.
type VNPayURLResponse struct {
	PaymentURL string `json:"payment_url"`
}

// VNPayReturnResponse resultado verificado del retorno de VNPAY.
type VNPayReturnResponse struct {
	OrderReference string          `json:"order_reference"`
	Amount         decimal.Decimal `json:"amount"`
	ResponseCode   string          `json:"response_code"`
	TransactionNo  string          `json:"transaction_no,omitempty"`
	BankCode       string          `json:"bank_code,omitempty"`
	Success        bool            `json:"success"`
}
