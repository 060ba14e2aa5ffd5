// Package vnpay: firma y verificación de URLs de pago VNPAY (API 2.1.0).
// Algoritmo: HMAC-SHA512 sobre los parámetros vnp_* ordenados por nombre y codificados como query string.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Version          = "2.1.0"
	CommandPay       = "pay"
	CurrencyVND      = "VND"
	ResponseSuccess  = "00"
	dateLayout       = "20060102150405"
	defaultOrderType = "other"
	defaultExpire    = 15 * time.Minute
)

var (
	ErrMissingConfig    = errors.New("vnpay: configuración incompleta")
	ErrInvalidAmount    = errors.New("vnpay: monto inválido")
	ErrInvalidSignature = errors.New("vnpay: firma inválida")
	ErrMissingSignature = errors.New("vnpay: falta vnp_SecureHash")
)

// VNPAY interpreta las fechas en hora de Vietnam (GMT+7, sin horario de verano).
var vietnamTZ = time.FixedZone("ICT", 7*60*60)

// Config credenciales del comercio.
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

// PaymentRequest datos de un pago a iniciar. Amount en VND.
type PaymentRequest struct {
	TxnRef    string
	Amount    decimal.Decimal
	OrderInfo string
	OrderType string
	IPAddr    string
	Locale    string // vn | en
	BankCode  string // opcional
	ExpireIn  time.Duration
}

// ReturnResult datos verificados del retorno/IPN.
type ReturnResult struct {
	TxnRef        string
	Amount        decimal.Decimal // VND
	ResponseCode  string
	TransactionNo string
	BankCode      string
	PayDate       string
	Success       bool
}

// Client construye y verifica URLs firmadas.
type Client struct {
	cfg Config
	now func() time.Time
}

// New valida la configuración mínima.
func New(cfg Config) (*Client, error) {
	if cfg.TmnCode == "" || cfg.HashSecret == "" || cfg.PayURL == "" {
		return nil, ErrMissingConfig
	}
	return &Client{cfg: cfg, now: time.Now}, nil
}

// WithClock reemplaza el reloj (tests).
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// BuildPaymentURL arma la URL de redirección al portal de pago con vnp_SecureHash.
func (c *Client) BuildPaymentURL(req PaymentRequest) (string, error) {
	if strings.TrimSpace(req.TxnRef) == "" {
		return "", fmt.Errorf("vnpay: TxnRef es obligatorio")
	}
	amount, err := toMinorUnits(req.Amount)
	if err != nil {
		return "", err
	}
	orderType := req.OrderType
	if orderType == "" {
		orderType = defaultOrderType
	}
	locale := req.Locale
	if locale == "" {
		locale = "vn"
	}
	expire := req.ExpireIn
	if expire <= 0 {
		expire = defaultExpire
	}
	created := c.now().In(vietnamTZ)

	params := url.Values{}
	params.Set("vnp_Version", Version)
	params.Set("vnp_Command", CommandPay)
	params.Set("vnp_TmnCode", c.cfg.TmnCode)
	params.Set("vnp_Amount", amount)
	params.Set("vnp_CurrCode", CurrencyVND)
	params.Set("vnp_TxnRef", req.TxnRef)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", orderType)
	params.Set("vnp_Locale", locale)
	params.Set("vnp_IpAddr", req.IPAddr)
	params.Set("vnp_CreateDate", created.Format(dateLayout))
	params.Set("vnp_ExpireDate", created.Add(expire).Format(dateLayout))
	if c.cfg.ReturnURL != "" {
		params.Set("vnp_ReturnUrl", c.cfg.ReturnURL)
	}
	if req.BankCode != "" {
		params.Set("vnp_BankCode", req.BankCode)
	}

	// Encode ordena por clave y usa '+' para el espacio: es la misma cadena que se firma.
	query := params.Encode()
	return c.cfg.PayURL + "?" + query + "&vnp_SecureHash=" + Sign(c.cfg.HashSecret, query), nil
}

// VerifyReturn comprueba la firma de los parámetros devueltos por VNPAY.
// Firma válida con código distinto de "00" devuelve el resultado con Success=false y sin error.
func (c *Client) VerifyReturn(query url.Values) (*ReturnResult, error) {
	got := query.Get("vnp_SecureHash")
	if got == "" {
		return nil, ErrMissingSignature
	}
	signed := url.Values{}
	for k, v := range query {
		if !strings.HasPrefix(k, "vnp_") || k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		if len(v) > 0 && v[0] != "" {
			signed.Set(k, v[0])
		}
	}
	expected := Sign(c.cfg.HashSecret, signed.Encode())
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(expected)) {
		return nil, ErrInvalidSignature
	}

	res := &ReturnResult{
		TxnRef:        query.Get("vnp_TxnRef"),
		ResponseCode:  query.Get("vnp_ResponseCode"),
		TransactionNo: query.Get("vnp_TransactionNo"),
		BankCode:      query.Get("vnp_BankCode"),
		PayDate:       query.Get("vnp_PayDate"),
	}
	if raw := query.Get("vnp_Amount"); raw != "" {
		minor, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: vnp_Amount %q", ErrInvalidAmount, raw)
		}
		res.Amount = minor.Div(decimal.NewFromInt(100))
	}
	res.Success = res.ResponseCode == ResponseSuccess && query.Get("vnp_TransactionStatus") != "02"
	return res, nil
}

// Sign HMAC-SHA512 en hexadecimal (minúsculas) de la cadena ya canonicalizada.
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// toMinorUnits VNPAY espera el monto multiplicado por 100, sin decimales.
func toMinorUnits(amount decimal.Decimal) (string, error) {
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: debe ser mayor que cero", ErrInvalidAmount)
	}
	minor := amount.Mul(decimal.NewFromInt(100))
	if !minor.Equal(minor.Truncate(0)) {
		return "", fmt.Errorf("%w: más de dos decimales", ErrInvalidAmount)
	}
	return minor.Truncate(0).String(), nil
}
