package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pharma-erp-api/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC  *billing.CatalogUseCase
	DraftUC    *billing.DraftUseCase
	ComposerUC *billing.ComposerUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	catalog := NewCatalogHandler(deps.CatalogUC)
	api.Get("/products", catalog.ListProducts)
	api.Get("/customers", catalog.ListCustomers)

	invoiceHandler := NewInvoiceHandler(deps.ComposerUC)
	api.Post("/invoices/preview", invoiceHandler.Preview)
	api.Get("/invoices/:id", invoiceHandler.GetByID)

	// Borradores (requieren X-Session-ID)
	draftsGroup := api.Group("/drafts", SessionMiddleware())
	draftsHandler := NewDraftsHandler(deps.DraftUC)
	draftsGroup.Get("/", draftsHandler.List)
	draftsGroup.Post("/", draftsHandler.Create)
	draftsGroup.Put("/active", draftsHandler.Switch)
	draftsGroup.Delete("/session", draftsHandler.CloseSession)
	draftsGroup.Delete("/:id", draftsHandler.Remove)

	draftsGroup.Get("/active/form", invoiceHandler.GetForm)
	draftsGroup.Put("/active/form", invoiceHandler.UpdateForm)
	draftsGroup.Post("/active/import", invoiceHandler.Import)
	draftsGroup.Post("/active/submit", invoiceHandler.Submit)
}
