package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/warehouse-ledger/internal/application/analytics"
	"github.com/jhoicas/warehouse-ledger/internal/application/dto"
	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/internal/application/usecase"
	"github.com/jhoicas/warehouse-ledger/internal/domain/entity"
	"github.com/jhoicas/warehouse-ledger/internal/domain/routing"
	"github.com/jhoicas/warehouse-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/warehouse-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/warehouse-ledger/pkg/jwt"
	"github.com/jhoicas/warehouse-ledger/pkg/metrics"
	"github.com/jhoicas/warehouse-ledger/pkg/vnpay"
)

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

// newTestServer arma el router completo sobre el almacenamiento en memoria.
// Variante 7 ("Áo thun" M) con 10 unidades en Hà Nội; variante 8 sin stock.
func newTestServer(t *testing.T, payments *vnpay.Client) *testServer {
	t.Helper()
	store := memory.NewStore(memory.WithLockTimeout(time.Second))
	store.AddVariant(entity.ProductVariant{ID: 7, ProductID: 1, SKU: "AT-M", ProductName: "Áo thun", Name: "M", IsActive: true})
	store.AddVariant(entity.ProductVariant{ID: 8, ProductID: 1, SKU: "AT-L", ProductName: "Áo thun", Name: "L", IsActive: true})
	store.AddWarehouse(entity.Warehouse{ID: 1, Code: "HN", Name: "Kho Hà Nội", Region: "north", IsActive: true})
	store.AddWarehouse(entity.Warehouse{ID: 2, Code: "DN", Name: "Kho Đà Nẵng", Region: "central", IsActive: true})
	store.AddWarehouse(entity.Warehouse{ID: 3, Code: "HCM", Name: "Kho Hồ Chí Minh", Region: "south", IsActive: true})
	store.PutStock(entity.StockRecord{VariantID: 7, WarehouseID: 1, OnHand: 10, ReorderLevel: 12, AverageCost: decimal.NewFromInt(100000)})

	m := metrics.New("test")
	ledgerUC := inventory.NewStockLedgerUseCase(inventory.Deps{
		TxRunner:   memory.NewTxRunner(store),
		Stock:      store.Stock(),
		Ledger:     store.Ledger(),
		Variants:   store.Variants(),
		Warehouses: store.Warehouses(),
		Metrics:    m,
	})
	table, err := routing.NewTable(append(routing.Provinces(), routing.Aliases()...), routing.WarehouseNorth)
	require.NoError(t, err)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockLedgerUC:   ledgerUC,
		ReplenishmentUC: inventory.NewReplenishmentUseCase(store.Analytics()),
		WarehouseUC:     usecase.NewWarehouseUseCase(store.Warehouses(), table),
		DashboardUC:     appanalytics.NewDashboardUseCase(store.Analytics()),
		VNPay:           payments,
		Metrics:         m,
		JWTSecret:       testJWTSecret,
	})
	return &testServer{app: app, store: store}
}

func (s *testServer) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestRouter_SinTokenRetorna401(t *testing.T) {
	s := newTestServer(t, nil)
	resp, _ := s.do(t, http.MethodGet, "/api/inventory/availability?variant_id=7", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAvailability(t *testing.T) {
	s := newTestServer(t, nil)

	resp, raw := s.do(t, http.MethodGet, "/api/inventory/availability?variant_id=7&warehouse_id=1&quantity=11", pkgjwt.RoleStaff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.AvailabilityResponse](t, raw)
	assert.Equal(t, int64(10), got.Available)
	require.NotNil(t, got.IsAvailable)
	assert.False(t, *got.IsAvailable)

	// variante sin registros
	_, raw = s.do(t, http.MethodGet, "/api/inventory/availability?variant_id=8", pkgjwt.RoleStaff, nil)
	assert.Equal(t, int64(0), decode[dto.AvailabilityResponse](t, raw).Available)

	resp, _ = s.do(t, http.MethodGet, "/api/inventory/availability?variant_id=abc", pkgjwt.RoleStaff, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReserveReleaseFulfill(t *testing.T) {
	s := newTestServer(t, nil)
	body := dto.StockMovementRequest{VariantID: 7, WarehouseID: 1, Quantity: 4, Reference: "DH-1001"}

	resp, raw := s.do(t, http.MethodPost, "/api/inventory/reserve", pkgjwt.RoleStaff, body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.True(t, decode[dto.MovementResponse](t, raw).Success)

	// 10 - 4 = 6 disponibles: pedir 7 se rechaza sin cambios
	resp, raw = s.do(t, http.MethodPost, "/api/inventory/reserve", pkgjwt.RoleStaff,
		dto.StockMovementRequest{VariantID: 7, WarehouseID: 1, Quantity: 7})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	rejected := decode[dto.MovementResponse](t, raw)
	assert.False(t, rejected.Success)
	require.NotNil(t, rejected.Shortage, "el rechazo identifica el artículo")
	assert.Equal(t, "AT-M", rejected.Shortage.SKU)
	assert.Equal(t, int64(7), rejected.Shortage.Requested)
	assert.Equal(t, int64(6), rejected.Shortage.Available)
	assert.Contains(t, rejected.Message, "AT-M")

	resp, _ = s.do(t, http.MethodPost, "/api/inventory/fulfill", pkgjwt.RoleStaff, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/inventory/release", pkgjwt.RoleStaff, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	_, raw = s.do(t, http.MethodGet, "/api/inventory/stock/7", pkgjwt.RoleStaff, nil)
	recs := decode[[]dto.StockRecordResponse](t, raw)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(6), recs[0].OnHand)
	assert.Equal(t, int64(0), recs[0].Reserved)

	_, raw = s.do(t, http.MethodGet, "/api/inventory/ledger?variant_id=7", pkgjwt.RoleStaff, nil)
	ledger := decode[dto.LedgerListResponse](t, raw)
	require.Len(t, ledger.Items, 2)
	assert.Equal(t, entity.LedgerTypeOutbound, ledger.Items[0].Type)
	assert.Equal(t, testUserID, ledger.Items[0].Actor)
	assert.Equal(t, "DH-1001", ledger.Items[1].ReferenceNumber)

	_, raw = s.do(t, http.MethodGet, "/api/inventory/ledger?transaction_id="+ledger.Items[1].TransactionID, pkgjwt.RoleStaff, nil)
	byTx := decode[dto.LedgerListResponse](t, raw)
	require.Len(t, byTx.Items, 1)
	assert.Equal(t, entity.LedgerTypeReserved, byTx.Items[0].Type)

	resp, raw = s.do(t, http.MethodGet, "/api/inventory/ledger?transaction_id=no-es-uuid", pkgjwt.RoleStaff, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, raw).Code)
}

func TestMovement_Validaciones(t *testing.T) {
	s := newTestServer(t, nil)

	resp, raw := s.do(t, http.MethodPost, "/api/inventory/reserve", pkgjwt.RoleStaff,
		dto.StockMovementRequest{VariantID: 7, WarehouseID: 1, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, raw).Code)

	resp, raw = s.do(t, http.MethodPost, "/api/inventory/reserve", pkgjwt.RoleStaff,
		dto.StockMovementRequest{VariantID: 99, WarehouseID: 1, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, raw).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/reserve", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, pkgjwt.RoleStaff))
	r, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestReserveOrder_FaltanteListaTodasLasLineas(t *testing.T) {
	s := newTestServer(t, nil)
	order := dto.OrderStockRequest{
		Reference: "DH-2002",
		Lines: []dto.OrderLineRequest{
			{VariantID: 7, WarehouseID: 1, Quantity: 3},
			{VariantID: 8, WarehouseID: 1, Quantity: 1},
		},
	}
	resp, raw := s.do(t, http.MethodPost, "/api/inventory/orders/reserve", pkgjwt.RoleStaff, order)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	got := decode[dto.InsufficientStockResponse](t, raw)
	assert.Equal(t, "INSUFFICIENT_STOCK", got.Code)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "AT-L", got.Lines[0].SKU)
	assert.Equal(t, int64(0), got.Lines[0].Available)

	// nada se reservó
	_, raw = s.do(t, http.MethodGet, "/api/inventory/stock/7", pkgjwt.RoleStaff, nil)
	assert.Equal(t, int64(0), decode[[]dto.StockRecordResponse](t, raw)[0].Reserved)

	order.Lines = order.Lines[:1]
	resp, _ = s.do(t, http.MethodPost, "/api/inventory/orders/reserve", pkgjwt.RoleStaff, order)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	order.Lines[0].Quantity = 5
	resp, raw = s.do(t, http.MethodPost, "/api/inventory/orders/release", pkgjwt.RoleStaff, order)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_RESERVED", decode[dto.InsufficientStockResponse](t, raw).Code)
}

func TestInbound_RolYCostoPromedio(t *testing.T) {
	s := newTestServer(t, nil)
	cost := decimal.NewFromInt(130000)
	body := dto.InboundRequest{
		Reference: "PN-01",
		Items:     []dto.InboundItemRequest{{VariantID: 7, WarehouseID: 1, Quantity: 10, UnitCost: &cost}},
	}

	resp, _ := s.do(t, http.MethodPost, "/api/inventory/inbound", pkgjwt.RoleStaff, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := s.do(t, http.MethodPost, "/api/inventory/inbound", pkgjwt.RoleManager, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	got := decode[dto.InboundResponse](t, raw)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(20), got.Lines[0].OnHand)
	assert.NotEmpty(t, got.Lines[0].EntryID)

	_, raw = s.do(t, http.MethodGet, "/api/inventory/stock/7", pkgjwt.RoleStaff, nil)
	rec := decode[[]dto.StockRecordResponse](t, raw)[0]
	assert.True(t, decimal.NewFromInt(115000).Equal(rec.AverageCost), rec.AverageCost.String())
}

func TestTransfer(t *testing.T) {
	s := newTestServer(t, nil)

	resp, raw := s.do(t, http.MethodPost, "/api/inventory/transfer", pkgjwt.RoleManager,
		dto.TransferRequest{VariantID: 7, FromWarehouseID: 1, ToWarehouseID: 3, Quantity: 4})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	got := decode[dto.TransferResponse](t, raw)
	assert.True(t, got.Success)
	assert.Equal(t, int64(6), got.From.OnHand)
	assert.Equal(t, int64(4), got.To.OnHand)
	assert.NotEmpty(t, got.TransactionID)

	resp, raw = s.do(t, http.MethodPost, "/api/inventory/transfer", pkgjwt.RoleManager,
		dto.TransferRequest{VariantID: 7, FromWarehouseID: 1, ToWarehouseID: 3, Quantity: 7})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, decode[dto.TransferResponse](t, raw).Success)

	resp, _ = s.do(t, http.MethodPost, "/api/inventory/transfer", pkgjwt.RoleManager,
		dto.TransferRequest{VariantID: 7, FromWarehouseID: 1, ToWarehouseID: 1, Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdjust(t *testing.T) {
	s := newTestServer(t, nil)
	body := dto.AdjustStockRequest{VariantID: 7, WarehouseID: 1, Type: "set", Quantity: 3, Reason: "Kiểm kê"}

	resp, _ := s.do(t, http.MethodPost, "/api/inventory/adjustments", pkgjwt.RoleManager, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := s.do(t, http.MethodPost, "/api/inventory/adjustments", pkgjwt.RoleAdmin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	got := decode[dto.AdjustStockResponse](t, raw)
	assert.Equal(t, int64(-7), got.Delta)
	assert.Equal(t, int64(3), got.Record.OnHand)

	body.Type = "multiply"
	resp, _ = s.do(t, http.MethodPost, "/api/inventory/adjustments", pkgjwt.RoleAdmin, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// reservar 2 y bajar el físico a 1 queda por debajo de lo reservado
	resp, _ = s.do(t, http.MethodPost, "/api/inventory/reserve", pkgjwt.RoleStaff,
		dto.StockMovementRequest{VariantID: 7, WarehouseID: 1, Quantity: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, raw = s.do(t, http.MethodPost, "/api/inventory/adjustments", pkgjwt.RoleAdmin,
		dto.AdjustStockRequest{VariantID: 7, WarehouseID: 1, Type: "set", Quantity: 1, Reason: "Hàng hỏng"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "BELOW_RESERVED", decode[dto.ErrorResponse](t, raw).Code)
}

func TestReorderLevelYReportes(t *testing.T) {
	s := newTestServer(t, nil)

	resp, raw := s.do(t, http.MethodPut, "/api/inventory/reorder-level", pkgjwt.RoleManager,
		dto.ReorderLevelRequest{VariantID: 7, WarehouseID: 1, ReorderLevel: 20})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, int64(20), decode[dto.StockRecordResponse](t, raw).ReorderLevel)

	resp, raw = s.do(t, http.MethodGet, "/api/dashboard/stock-summary?warehouse_id=1", pkgjwt.RoleManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	summary := decode[dto.StockSummaryDTO](t, raw)
	assert.Equal(t, int64(10), summary.TotalOnHand)
	assert.Equal(t, int64(1), summary.LowStockCount)
	require.Len(t, summary.LowStockTop, 1)
	assert.Equal(t, "AT-M", summary.LowStockTop[0].SKU)

	resp, raw = s.do(t, http.MethodGet, "/api/inventory/replenishment-list", pkgjwt.RoleManager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	list := decode[[]dto.ReplenishmentSuggestionDTO](t, raw)
	require.Len(t, list, 1)
	assert.Equal(t, int64(20), list[0].SuggestedOrderQty) // ceil(20*1.5) - 10

	resp, _ = s.do(t, http.MethodGet, "/api/dashboard/stock-summary", pkgjwt.RoleStaff, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWarehouses(t *testing.T) {
	s := newTestServer(t, nil)

	_, raw := s.do(t, http.MethodGet, "/api/warehouses?active=true", pkgjwt.RoleStaff, nil)
	assert.Len(t, decode[dto.WarehouseListResponse](t, raw).Items, 3)

	resp, _ := s.do(t, http.MethodGet, "/api/warehouses/9", pkgjwt.RoleStaff, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, raw = s.do(t, http.MethodGet, "/api/warehouses/resolve?region="+url.QueryEscape("TP. Hồ Chí Minh"), pkgjwt.RoleStaff, nil)
	got := decode[dto.ResolveWarehouseResponse](t, raw)
	assert.Equal(t, int64(3), got.WarehouseID)
	assert.False(t, got.IsDefault)
	require.NotNil(t, got.Warehouse)
	assert.Equal(t, "HCM", got.Warehouse.Code)

	_, raw = s.do(t, http.MethodGet, "/api/warehouses/resolve?region=Atlantis", pkgjwt.RoleStaff, nil)
	got = decode[dto.ResolveWarehouseResponse](t, raw)
	assert.Equal(t, int64(1), got.WarehouseID)
	assert.True(t, got.IsDefault)

	// sin región: bodega por defecto
	resp, raw = s.do(t, http.MethodGet, "/api/warehouses/resolve", pkgjwt.RoleStaff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[dto.ResolveWarehouseResponse](t, raw)
	assert.Equal(t, int64(1), got.WarehouseID)
	assert.True(t, got.IsDefault)

	_, raw = s.do(t, http.MethodGet, "/api/warehouses/resolve?region=%20%20", pkgjwt.RoleStaff, nil)
	assert.True(t, decode[dto.ResolveWarehouseResponse](t, raw).IsDefault)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/api/inventory/availability?variant_id=7", pkgjwt.RoleStaff, nil)

	resp, raw := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "test_http_requests_total")
	assert.Contains(t, string(raw), `route="/api/inventory/availability"`)
}

func TestPayments(t *testing.T) {
	s := newTestServer(t, nil)
	resp, _ := s.do(t, http.MethodPost, "/api/payments/vnpay/url", pkgjwt.RoleStaff, dto.VNPayURLRequest{OrderReference: "DH-1", Amount: decimal.NewFromInt(10000)})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	client, err := vnpay.New(vnpay.Config{
		TmnCode:    "DEMO0001",
		HashSecret: "SECRETKEY",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://shop.example/vnpay/return",
	})
	require.NoError(t, err)
	s = newTestServer(t, client)

	resp, raw := s.do(t, http.MethodPost, "/api/payments/vnpay/url", pkgjwt.RoleStaff,
		dto.VNPayURLRequest{OrderReference: "DH-1", Amount: decimal.NewFromInt(250000), OrderInfo: "Thanh toan DH-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	payURL, err := url.Parse(decode[dto.VNPayURLResponse](t, raw).PaymentURL)
	require.NoError(t, err)
	assert.NotEmpty(t, payURL.Query().Get("vnp_SecureHash"))

	// los parámetros firmados de la URL se verifican igual que un retorno
	resp, raw = s.do(t, http.MethodGet, "/api/payments/vnpay/return?"+payURL.RawQuery, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	ret := decode[dto.VNPayReturnResponse](t, raw)
	assert.Equal(t, "DH-1", ret.OrderReference)
	assert.True(t, decimal.NewFromInt(250000).Equal(ret.Amount))
	assert.False(t, ret.Success)

	q := payURL.Query()
	q.Set("vnp_Amount", "100")
	resp, raw = s.do(t, http.MethodGet, "/api/payments/vnpay/return?"+q.Encode(), "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_SIGNATURE", decode[dto.ErrorResponse](t, raw).Code)
}
