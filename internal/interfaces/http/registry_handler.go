package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-ledger/internal/application/dto"
	"github.com/jhoicas/Inventario-ledger/internal/application/registry"
	"github.com/jhoicas/Inventario-ledger/internal/domain/entity"
)

// RegistryHandler alta y consulta de ubicaciones, categorías, ítems, proveedores y políticas.
type RegistryHandler struct {
	uc *registry.UseCase
}

// NewRegistryHandler construye el handler.
func NewRegistryHandler(uc *registry.UseCase) *RegistryHandler {
	return &RegistryHandler{uc: uc}
}

// CreateLocation godoc
// @Summary      Crear ubicación
// @Tags         locations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateLocationRequest  true  "name, address"
// @Success      201   {object}  entity.Location
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *RegistryHandler) CreateLocation(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateLocation(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeactivateLocation godoc
// @Summary      Desactivar ubicación
// @Description  Una ubicación inactiva rechaza nuevos movimientos; su historial se conserva.
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la ubicación"
// @Success      200  {object}  entity.Location
// @Router       /api/locations/{id}/deactivate [post]
func (h *RegistryHandler) DeactivateLocation(c *fiber.Ctx) error {
	out, err := h.uc.DeactivateLocation(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListLocations godoc
// @Summary      Listar ubicaciones
// @Tags         locations
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Máximo 100"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/locations [get]
func (h *RegistryHandler) ListLocations(c *fiber.Ctx) error {
	page := pageFrom(c)
	list, err := h.uc.ListLocations(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[*entity.Location]{Items: nonNil(list), Page: pageResponse(page)})
}

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateCategoryRequest  true  "name, code, parent_id opcional"
// @Success      201   {object}  entity.Category
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *RegistryHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateCategory(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         categories
// @Security     Bearer
// @Produce      json
// @Param        parent_id  query  string  false  "Subcategorías de este padre"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/categories [get]
func (h *RegistryHandler) ListCategories(c *fiber.Ctx) error {
	page := pageFrom(c)
	list, err := h.uc.ListCategories(c.UserContext(), c.Query("parent_id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[*entity.Category]{Items: nonNil(list), Page: pageResponse(page)})
}

// CreateItem godoc
// @Summary      Crear ítem
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateItemRequest  true  "sku, name, category_id, unit_measure"
// @Success      201   {object}  entity.Item
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *RegistryHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateItem(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetItem godoc
// @Summary      Obtener ítem
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  entity.Item
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *RegistryHandler) GetItem(c *fiber.Ctx) error {
	out, err := h.uc.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListItems godoc
// @Summary      Listar ítems
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/items [get]
func (h *RegistryHandler) ListItems(c *fiber.Ctx) error {
	page := pageFrom(c)
	list, err := h.uc.ListItems(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ListResponse[*entity.Item]{Items: nonNil(list), Page: pageResponse(page)})
}

// SetPolicy godoc
// @Summary      Definir política de reorden y alertas
// @Description  location_id vacío define la política general del ítem.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "ID del ítem"
// @Param        body  body      dto.PolicyRequest  true  "umbrales y estrategia"
// @Success      200   {object}  entity.ItemPolicy
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/policy [put]
func (h *RegistryHandler) SetPolicy(c *fiber.Ctx) error {
	var in dto.PolicyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetPolicy(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateSupplier godoc
// @Summary      Crear proveedor
// @Tags         suppliers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSupplierRequest  true  "name, lead_time_days"
// @Success      201   {object}  entity.Supplier
// @Router       /api/suppliers [post]
func (h *RegistryHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateSupplier(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func pageFrom(c *fiber.Ctx) dto.PageRequest {
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	page.DefaultPage()
	return page
}

func pageResponse(p dto.PageRequest) dto.PageResponse {
	return dto.PageResponse{Limit: p.Limit, Offset: p.Offset}
}

func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
