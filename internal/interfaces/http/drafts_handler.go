package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharma-erp-api/internal/application/billing"
	"github.com/jhoicas/pharma-erp-api/internal/application/dto"
)

// DraftsHandler conjunto de borradores de la sesión.
type DraftsHandler struct {
	uc *billing.DraftUseCase
}

// NewDraftsHandler construye el handler.
func NewDraftsHandler(uc *billing.DraftUseCase) *DraftsHandler {
	return &DraftsHandler{uc: uc}
}

// List godoc
// @Summary      Listar borradores de la sesión
// @Tags         drafts
// @Produce      json
// @Param        X-Session-ID  header  string  true  "sesión"
// @Success      200  {object}  dto.DraftListResponse
// @Router       /api/drafts [get]
func (h *DraftsHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Abrir un borrador nuevo (queda activo)
// @Tags         drafts
// @Produce      json
// @Param        X-Session-ID  header  string  true  "sesión"
// @Success      201  {object}  dto.DraftListResponse
// @Failure      409  {object}  dto.ErrorResponse  "CAPACITY_EXCEEDED"
// @Router       /api/drafts [post]
func (h *DraftsHandler) Create(c *fiber.Ctx) error {
	out, err := h.uc.Create(GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Switch godoc
// @Summary      Cambiar el borrador activo
// @Tags         drafts
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string                  true  "sesión"
// @Param        body          body    dto.SwitchDraftRequest  true  "draft_id"
// @Success      200  {object}  dto.DraftListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drafts/active [put]
func (h *DraftsHandler) Switch(c *fiber.Ctx) error {
	var in dto.SwitchDraftRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.DraftID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "draft_id es requerido"})
	}
	out, err := h.uc.Switch(GetSessionID(c), in.DraftID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Eliminar un borrador
// @Tags         drafts
// @Produce      json
// @Param        X-Session-ID  header  string  true  "sesión"
// @Param        id            path    string  true  "id del borrador"
// @Success      200  {object}  dto.DraftListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drafts/{id} [delete]
func (h *DraftsHandler) Remove(c *fiber.Ctx) error {
	out, err := h.uc.Remove(GetSessionID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CloseSession DELETE /api/drafts/session: cierra el editor; el guardado pendiente se descarta.
func (h *DraftsHandler) CloseSession(c *fiber.Ctx) error {
	h.uc.Close(GetSessionID(c))
	return c.SendStatus(fiber.StatusNoContent)
}
