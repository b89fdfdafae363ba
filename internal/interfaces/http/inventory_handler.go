package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/Inventario-ledger/internal/domain"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de movimientos, proyecciones y reorden (protegido).
type InventoryHandler struct {
	ledger  *ledger.Service
	reorder *inventory.ReorderUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc *ledger.Service, reorder *inventory.ReorderUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: svc, reorder: reorder}
}

// RecordReceipt godoc
// @Summary      Registrar recepción de mercancía
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ReceiptRequest  true  "item_id, location_id, quantity; unit_cost, lot_number y expires_at opcionales"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipts [post]
func (h *InventoryHandler) RecordReceipt(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	receipt := entity.Receipt{
		Quantity:    in.Quantity,
		ReferenceID: in.ReferenceID,
		UnitCost:    in.UnitCost,
		LotNumber:   in.LotNumber,
		ExpiresAt:   in.ExpiresAt,
	}
	e, err := h.ledger.Record(c.UserContext(), in.ItemID, in.LocationID, receipt, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResponse(e))
}

// RecordSale godoc
// @Summary      Registrar venta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SaleRequest  true  "item_id, location_id, quantity, reference_id"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *InventoryHandler) RecordSale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	e, err := h.ledger.RecordSale(c.UserContext(), in.ItemID, in.LocationID, in.Quantity, in.ReferenceID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResponse(e))
}

// RecordUsage godoc
// @Summary      Registrar consumo interno
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.UsageRequest  true  "item_id, location_id, quantity, note"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/usages [post]
func (h *InventoryHandler) RecordUsage(c *fiber.Ctx) error {
	var in dto.UsageRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	e, err := h.ledger.RecordUsage(c.UserContext(), in.ItemID, in.LocationID, in.Quantity, in.Note)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResponse(e))
}

// RecordAdjustment godoc
// @Summary      Registrar ajuste manual
// @Description  Delta con signo; el motivo es obligatorio. Un ajuste negativo puede dejar la proyección bajo cero.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AdjustmentRequest  true  "item_id, location_id, delta, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RecordAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	e, err := h.ledger.RecordAdjustment(c.UserContext(), in.ItemID, in.LocationID, in.Delta, in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResponse(e))
}

// RecordReturn godoc
// @Summary      Registrar devolución de cliente
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SaleRequest  true  "item_id, location_id, quantity, reference_id"
// @Success      201   {object}  dto.MovementResponse
// @Router       /api/inventory/returns [post]
func (h *InventoryHandler) RecordReturn(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	e, err := h.ledger.RecordReturn(c.UserContext(), in.ItemID, in.LocationID, in.Quantity, in.ReferenceID, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(movementResponse(e))
}

// TransferStock godoc
// @Summary      Trasladar stock entre ubicaciones
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.TransferRequest  true  "item_id, from_location_id, to_location_id, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) TransferStock(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	groupID, err := h.ledger.TransferStock(c.UserContext(), in.ItemID, in.FromLocationID, in.ToLocationID, in.Quantity, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{TransferGroupID: groupID})
}

// GetProjection godoc
// @Summary      Stock actual de un ítem en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item      path  string  true  "ID del ítem"
// @Param        location  path  string  true  "ID de la ubicación"
// @Success      200  {object}  entity.StockProjection
// @Router       /api/inventory/projections/{item}/{location} [get]
func (h *InventoryHandler) GetProjection(c *fiber.Ctx) error {
	p, err := h.ledger.GetProjection(c.UserContext(), c.Params("item"), c.Params("location"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// ListProjections godoc
// @Summary      Listar proyecciones
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por ítem"
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        limit        query  int     false  "Máximo 100"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/projections [get]
func (h *InventoryHandler) ListProjections(c *fiber.Ctx) error {
	page := pageFrom(c)
	list, err := h.ledger.ListProjections(c.UserContext(), entity.ProjectionFilter{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[*entity.StockProjection]{Items: nonNil(list), Page: pageResponse(page)})
}

// GetHistory godoc
// @Summary      Historial de movimientos (más reciente primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item      path   string  true   "ID del ítem"
// @Param        location  path   string  true   "ID de la ubicación"
// @Param        from      query  string  false  "RFC3339, inclusivo"
// @Param        to        query  string  false  "RFC3339, inclusivo"
// @Param        cursor    query  string  false  "next_cursor de la página anterior"
// @Param        limit     query  int     false  "Máximo 500"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/projections/{item}/{location}/history [get]
func (h *InventoryHandler) GetHistory(c *fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return writeError(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return writeError(c, err)
	}
	q := entity.HistoryQuery{
		Range:  entity.HistoryRange{From: from, To: to},
		Before: c.Query("cursor"),
		Limit:  c.QueryInt("limit"),
	}
	items, next, err := h.ledger.HistoryPage(c.UserContext(), c.Params("item"), c.Params("location"), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.HistoryResponse{Items: nonNil(items), NextCursor: next})
}

// GetReorderEstimate godoc
// @Summary      Estimación de reorden
// @Description  Tasa de uso de la ventana, días hasta agotarse, fecha y cantidad sugeridas.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item      path  string  true  "ID del ítem"
// @Param        location  path  string  true  "ID de la ubicación"
// @Success      200  {object}  inventory.Estimate
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/projections/{item}/{location}/reorder-estimate [get]
func (h *InventoryHandler) GetReorderEstimate(c *fiber.Ctx) error {
	est, err := h.reorder.GetReorderEstimate(c.UserContext(), c.Params("item"), c.Params("location"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(est)
}

// Rebuild godoc
// @Summary      Auditar o reparar la proyección desde el historial
// @Description  Sin repair=true solo compara y responde 409 si hay desalineación. Con repair=true reescribe la proyección.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item      path   string  true   "ID del ítem"
// @Param        location  path   string  true   "ID de la ubicación"
// @Param        repair    query  bool    false  "Reescribir la proyección almacenada"
// @Success      200  {object}  entity.StockProjection
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/projections/{item}/{location}/rebuild [post]
func (h *InventoryHandler) Rebuild(c *fiber.Ctx) error {
	item, location := c.Params("item"), c.Params("location")
	if c.QueryBool("repair") {
		p, err := h.ledger.Repair(c.UserContext(), item, location)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(p)
	}
	p, err := h.ledger.Audit(c.UserContext(), item, location)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(p)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Ítems en o bajo su punto de reorden con la cantidad sugerida, los que se agotan antes primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación. Vacío = todas."
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.reorder.ReplenishmentList(c.UserContext(), c.Query("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

func movementResponse(e *entity.MovementEntry) dto.MovementResponse {
	return dto.MovementResponse{
		MovementID: e.ID,
		Kind:       string(e.Kind),
		Delta:      e.QuantityDelta,
		Timestamp:  e.Timestamp,
	}
}

// queryTime lee un parámetro RFC3339 opcional.
func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	t = t.UTC()
	return &t, nil
}
