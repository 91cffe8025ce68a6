package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharma-erp-api/internal/application/billing"
	"github.com/jhoicas/pharma-erp-api/internal/application/dto"
	"github.com/jhoicas/pharma-erp-api/internal/domain/totals"
)

// InvoiceHandler formulario de factura del borrador activo, importación y envío.
type InvoiceHandler struct {
	uc *billing.ComposerUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.ComposerUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// GetForm godoc
// @Summary      Formulario del borrador activo
// @Tags         invoices
// @Produce      json
// @Param        X-Session-ID  header  string  true  "sesión"
// @Success      200  {object}  dto.FormResponse
// @Router       /api/drafts/active/form [get]
func (h *InvoiceHandler) GetForm(c *fiber.Ctx) error {
	out, err := h.uc.Form(GetSessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateForm godoc
// @Summary      Modificar el formulario del borrador activo
// @Description  Recalcula líneas, subtotal, descuento, impuestos y total. El guardado se programa con debounce.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string              true  "sesión"
// @Param        body          body    totals.InvoiceForm  true  "formulario completo"
// @Success      200  {object}  dto.FormResponse
// @Failure      400  {object}  dto.ErrorResponse  "VALIDATION con fields"
// @Router       /api/drafts/active/form [put]
func (h *InvoiceHandler) UpdateForm(c *fiber.Ctx) error {
	var in totals.InvoiceForm
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateForm(GetSessionID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Preview godoc
// @Summary      Calcular totales sin guardar
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body  totals.InvoiceForm  true  "formulario"
// @Success      200  {object}  dto.FormResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/invoices/preview [post]
func (h *InvoiceHandler) Preview(c *fiber.Ctx) error {
	var in totals.InvoiceForm
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Preview(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Import godoc
// @Summary      Importar cotización u orden al borrador activo
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string             true  "sesión"
// @Param        body          body    dto.ImportRequest  true  "kind (quotation|order), source_id"
// @Success      200  {object}  dto.ImportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drafts/active/import [post]
func (h *InvoiceHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Import(c.UserContext(), GetSessionID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Crear la factura desde el borrador activo
// @Description  Si se guarda, el borrador se elimina y queda activo otro (o uno nuevo).
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Session-ID  header  string             true   "sesión"
// @Param        body          body    dto.SubmitRequest  false  "prefijo y número opcionales"
// @Success      201  {object}  dto.SubmitResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/drafts/active/submit [post]
func (h *InvoiceHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	out, err := h.uc.Submit(c.UserContext(), GetSessionID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Produce      json
// @Param        id  path  string  true  "id de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
