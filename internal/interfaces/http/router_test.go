package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/alerts"
	"github.com/jhoicas/Inventario-ledger/internal/application/events"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/application/registry"
	"github.com/jhoicas/Inventario-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Inventario-ledger/pkg/jwt"
	"github.com/jhoicas/Inventario-ledger/pkg/logger"
)

// ── Helpers ──

const (
	testJWTSecret = "secreto-de-prueba"
	testIssuer    = "inventario-ledger-test"
	testExpMin    = 60
)

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

// newAPI arma la API completa sobre repositorios en memoria, con el motor de alertas
// evaluando en línea.
func newAPI(t *testing.T) *apiClient {
	t.Helper()
	repos := memory.NewRepositories()
	log := logger.Nop()

	inline := events.NewInline(log)
	engine := alerts.NewEngine(repos.Projections, repos.Policies, repos.Batches, repos.Alerts,
		alerts.NewLocalLocker(), inline, log, alerts.Config{ExpirationLookaheadDays: 7})
	inline.Subscribe(events.ProjectionChanged, engine.HandleProjectionChanged)

	svc := ledger.NewService(repos.Tx, repos.Items, repos.Locations, repos.Movements, repos.Projections,
		inline, log, ledger.Config{MaxRetries: 3, RetryBackoff: time.Millisecond})
	reorder := inventory.NewReorderUseCase(repos.Items, repos.Locations, repos.Projections, repos.Movements,
		repos.Policies, repos.Suppliers, inventory.ReorderConfig{UsageWindowDays: 7, DefaultLeadTimeDays: 2})
	reg := registry.NewUseCase(repos.Items, repos.Locations, repos.Categories, repos.Suppliers, repos.Policies)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:    svc,
		Reorder:   reorder,
		Alerts:    engine,
		Registry:  reg,
		JWTSecret: testJWTSecret,
	})
	return &apiClient{t: t, app: app}
}

func (c *apiClient) do(method, path, role string, body any) (int, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		tok, err := pkgjwt.Generate(testJWTSecret, "user-"+role, role, testIssuer, testExpMin)
		require.NoError(c.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

// seed crea ubicación, ítem y política con el rol admin.
func (c *apiClient) seed() {
	c.t.Helper()
	status, _ := c.do(http.MethodPost, "/api/locations", "admin", map[string]any{"id": "cocina", "name": "Cocina"})
	require.Equal(c.t, http.StatusCreated, status)
	status, _ = c.do(http.MethodPost, "/api/items", "admin", map[string]any{"id": "leche", "sku": "LEC-1", "name": "Leche"})
	require.Equal(c.t, http.StatusCreated, status)
	status, _ = c.do(http.MethodPut, "/api/items/leche/policy", "admin", map[string]any{
		"min_stock": "10", "reorder_point": "12", "reorder_quantity": "20",
	})
	require.Equal(c.t, http.StatusOK, status)
}

// ── Flujo completo ──

func TestAPI_RecepcionVentaYAlerta(t *testing.T) {
	api := newAPI(t)
	api.seed()

	status, body := api.do(http.MethodPost, "/api/inventory/receipts", "bodeguero", map[string]any{
		"item_id": "leche", "location_id": "cocina", "quantity": "20", "reference_id": "PO-1",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "receive", body["kind"])
	assert.NotEmpty(t, body["movement_id"])

	status, body = api.do(http.MethodPost, "/api/inventory/sales", "vendedor", map[string]any{
		"item_id": "leche", "location_id": "cocina", "quantity": "25", "reference_id": "ORD-1",
	})
	assert.Equal(t, http.StatusConflict, status, "la venta no puede dejar la proyección en negativo")
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "20", body["available"])

	status, _ = api.do(http.MethodPost, "/api/inventory/sales", "vendedor", map[string]any{
		"item_id": "leche", "location_id": "cocina", "quantity": "15", "reference_id": "ORD-2",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = api.do(http.MethodGet, "/api/inventory/projections/leche/cocina", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "5", body["quantity"])
	assert.EqualValues(t, 2, body["version"])

	status, body = api.do(http.MethodGet, "/api/inventory/projections/leche/cocina/history?limit=1", "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)
	cursor, _ := body["next_cursor"].(string)
	require.NotEmpty(t, cursor, "hay una segunda página")

	status, body = api.do(http.MethodGet, "/api/inventory/projections/leche/cocina/history?limit=1&cursor="+cursor, "vendedor", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)
	assert.Empty(t, body["next_cursor"])

	status, body = api.do(http.MethodGet, "/api/alerts?item_id=leche", "bodeguero", nil)
	require.Equal(t, http.StatusOK, status)
	items, _ := body["items"].([]any)
	require.Len(t, items, 1, "una sola banda de stock activa")
	alert := items[0].(map[string]any)
	assert.Equal(t, "open", alert["state"])

	status, body = api.do(http.MethodPost, "/api/alerts/"+alert["id"].(string)+"/acknowledge", "bodeguero", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "acknowledged", body["state"])
}

// ── Autorización y errores ──

func TestAPI_VendedorNoPuedeAjustar(t *testing.T) {
	api := newAPI(t)
	api.seed()

	status, body := api.do(http.MethodPost, "/api/inventory/adjustments", "vendedor", map[string]any{
		"item_id": "leche", "location_id": "cocina", "delta": "5", "reason": "conteo",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])
}

func TestAPI_SinToken_Retorna401(t *testing.T) {
	api := newAPI(t)
	status, body := api.do(http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", body["code"])
}

func TestAPI_AjusteSinMotivo_Retorna400(t *testing.T) {
	api := newAPI(t)
	api.seed()

	status, body := api.do(http.MethodPost, "/api/inventory/adjustments", "admin", map[string]any{
		"item_id": "leche", "location_id": "cocina", "delta": "-2",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
}

func TestAPI_TrasladoMismaUbicacion_Retorna400(t *testing.T) {
	api := newAPI(t)
	api.seed()

	status, _ := api.do(http.MethodPost, "/api/inventory/transfers", "bodeguero", map[string]any{
		"item_id": "leche", "from_location_id": "cocina", "to_location_id": "cocina", "quantity": "1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_EstimacionItemDesconocido_Retorna404(t *testing.T) {
	api := newAPI(t)
	api.seed()

	status, body := api.do(http.MethodGet, "/api/inventory/projections/no-existe/cocina/reorder-estimate", "vendedor", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestAPI_HistorialFechaInvalida_Retorna400(t *testing.T) {
	api := newAPI(t)
	api.seed()

	status, _ := api.do(http.MethodGet, "/api/inventory/projections/leche/cocina/history?from=ayer", "vendedor", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_RebuildSinDesalineacion(t *testing.T) {
	api := newAPI(t)
	api.seed()
	status, _ := api.do(http.MethodPost, "/api/inventory/receipts", "admin", map[string]any{
		"item_id": "leche", "location_id": "cocina", "quantity": "7",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := api.do(http.MethodPost, "/api/inventory/projections/leche/cocina/rebuild", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "7", body["quantity"])
}
