package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/alerts"
	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// AlertHandler consulta y ciclo de vida de alertas (protegido).
type AlertHandler struct {
	engine *alerts.Engine
}

// NewAlertHandler construye el handler.
func NewAlertHandler(engine *alerts.Engine) *AlertHandler {
	return &AlertHandler{engine: engine}
}

// List godoc
// @Summary      Listar alertas
// @Description  Sin state devuelve las activas (open, acknowledged, dismissed).
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "Filtrar por ítem"
// @Param        location_id  query  string  false  "Filtrar por ubicación"
// @Param        kind         query  string  false  "Tipos separados por coma"
// @Param        state        query  string  false  "Estados separados por coma"
// @Param        severity     query  string  false  "info | warning | critical"
// @Param        limit        query  int     false  "Máximo 100"
// @Param        offset       query  int     false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	var q dto.AlertListQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	q.DefaultPage()
	f := entity.AlertFilter{
		ItemID:     q.ItemID,
		LocationID: q.LocationID,
		Severity:   entity.Severity(q.Severity),
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
	for _, k := range splitList(q.Kinds) {
		f.Kinds = append(f.Kinds, entity.AlertKind(k))
	}
	for _, s := range splitList(q.States) {
		f.States = append(f.States, entity.AlertState(s))
	}
	list, err := h.engine.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[*entity.Alert]{Items: nonNil(list), Page: pageResponse(q.PageRequest)})
}

// Acknowledge godoc
// @Summary      Reconocer alerta
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la alerta"
// @Success      200  {object}  entity.Alert
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/acknowledge [post]
func (h *AlertHandler) Acknowledge(c *fiber.Ctx) error {
	a, err := h.engine.Acknowledge(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(a)
}

// Dismiss godoc
// @Summary      Descartar alerta
// @Description  La alerta queda silenciada hasta que la condición se resuelva.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la alerta"
// @Success      200  {object}  entity.Alert
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/alerts/{id}/dismiss [post]
func (h *AlertHandler) Dismiss(c *fiber.Ctx) error {
	a, err := h.engine.Dismiss(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(a)
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
