package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pharma-erp-api/internal/application/drafts"
	"github.com/jhoicas/pharma-erp-api/internal/application/dto"
	"github.com/jhoicas/pharma-erp-api/internal/domain"
	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
	"github.com/jhoicas/pharma-erp-api/internal/domain/totals"
)

// ComposerConfig datos fijos del emisor.
type ComposerConfig struct {
	CompanyID     string
	InvoicePrefix string
}

// ComposerUseCase edición del formulario de factura de cada sesión: recalcula totales en cada
// cambio, importa cotizaciones/órdenes y crea la factura a partir del borrador activo.
type ComposerUseCase struct {
	registry     *drafts.Registry
	txRunner     BillingTxRunner
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	sourceRepo   repository.SourceDocumentRepository
	invoiceRepo  repository.InvoiceRepository
	cfg          ComposerConfig
	log          zerolog.Logger
	now          func() time.Time
}

// NewComposerUseCase construye el caso de uso.
func NewComposerUseCase(
	registry *drafts.Registry,
	txRunner BillingTxRunner,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	sourceRepo repository.SourceDocumentRepository,
	invoiceRepo repository.InvoiceRepository,
	cfg ComposerConfig,
	log zerolog.Logger,
) *ComposerUseCase {
	if cfg.InvoicePrefix == "" {
		cfg.InvoicePrefix = "FAC"
	}
	return &ComposerUseCase{
		registry:     registry,
		txRunner:     txRunner,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		sourceRepo:   sourceRepo,
		invoiceRepo:  invoiceRepo,
		cfg:          cfg,
		log:          log,
		now:          time.Now,
	}
}

// Form devuelve el formulario del borrador activo.
func (uc *ComposerUseCase) Form(sessionID string) (*dto.FormResponse, error) {
	m, err := uc.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	form := m.Form()
	return toFormResponse(m.ActiveID(), m.State(), form, nil), nil
}

// UpdateForm aplica un cambio del usuario: ajusta la entrada, valida, recalcula los totales
// y entrega el resultado al borrador activo (que programa su guardado).
// Un cambio inválido devuelve *totals.ValidationError y no se aplica.
func (uc *ComposerUseCase) UpdateForm(sessionID string, in totals.InvoiceForm) (*dto.FormResponse, error) {
	m, err := uc.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	totals.NormalizeInput(&in)
	if err := totals.Validate(in, totals.ModeDraft); err != nil {
		return nil, err
	}
	changes := totals.Recompute(&in)
	m.Update(in)
	return toFormResponse(m.ActiveID(), m.State(), in, changes), nil
}

// Preview recalcula un formulario sin tocar ningún borrador.
func (uc *ComposerUseCase) Preview(in totals.InvoiceForm) (*dto.FormResponse, error) {
	totals.NormalizeInput(&in)
	if err := totals.Validate(in, totals.ModeDraft); err != nil {
		return nil, err
	}
	changes := totals.Recompute(&in)
	return toFormResponse("", "", in, changes), nil
}

// Import reemplaza las líneas del borrador activo por las de una cotización u orden.
// Las líneas sin producto resuelto se omiten y se informan; el resto se importa.
func (uc *ComposerUseCase) Import(ctx context.Context, sessionID string, in dto.ImportRequest) (*dto.ImportResponse, error) {
	if in.SourceID == "" || (in.Kind != entity.SourceKindQuotation && in.Kind != entity.SourceKindOrder) {
		return nil, domain.ErrInvalidInput
	}
	m, err := uc.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	doc, err := uc.sourceRepo.GetByID(ctx, in.Kind, in.SourceID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != uc.cfg.CompanyID {
		return nil, domain.ErrForbidden
	}

	items, unresolved, err := importLines(ctx, newProductResolver(uc.productRepo, uc.cfg.CompanyID), doc.Lines)
	if err != nil {
		return nil, err
	}

	form := m.Form()
	form.Items = items
	if form.CustomerID == "" {
		form.CustomerID = doc.CustomerID
	}
	totals.NormalizeInput(&form)
	changes := totals.Recompute(&form)
	m.Update(form)

	if len(unresolved) > 0 {
		uc.log.Info().
			Str("kind", doc.Kind).
			Str("source_id", doc.ID).
			Strs("unresolved", unresolved).
			Msg("importación parcial: productos no encontrados")
	}
	return &dto.ImportResponse{
		FormResponse:    *toFormResponse(m.ActiveID(), m.State(), form, changes),
		Imported:        len(items),
		UnresolvedItems: unresolved,
	}, nil
}

// Submit crea la factura a partir del borrador activo. Valida el formulario completo,
// verifica cliente y productos, guarda cabecera y detalles en una transacción y, si todo
// sale bien, elimina el borrador.
func (uc *ComposerUseCase) Submit(ctx context.Context, sessionID string, in dto.SubmitRequest) (*dto.SubmitResponse, error) {
	m, err := uc.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	draftID := m.ActiveID()
	form := m.Form()
	totals.NormalizeInput(&form)
	if err := totals.Validate(form, totals.ModeSubmit); err != nil {
		return nil, err
	}
	totals.Recompute(&form)

	customer, err := uc.customerRepo.GetByID(ctx, form.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	if customer.CompanyID != uc.cfg.CompanyID {
		return nil, domain.ErrForbidden
	}
	for _, it := range form.Items {
		p, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		if p.CompanyID != uc.cfg.CompanyID {
			return nil, domain.ErrForbidden
		}
	}

	now := uc.now()
	prefix := in.Prefix
	if prefix == "" {
		prefix = uc.cfg.InvoicePrefix
	}
	number := in.Number
	if number == "" {
		number = fmt.Sprintf("%s-%d", prefix, now.Unix())
	}
	inv := &entity.Invoice{
		ID:             uuid.New().String(),
		CompanyID:      uc.cfg.CompanyID,
		CustomerID:     customer.ID,
		DraftID:        draftID,
		Prefix:         prefix,
		Number:         number,
		Date:           now,
		Notes:          form.Notes,
		DiscountKind:   string(form.Discount.Kind),
		DiscountValue:  form.Discount.Value,
		TaxRate:        form.TaxRate,
		VATRate:        form.VATRate,
		Subtotal:       form.Totals.Subtotal,
		DiscountAmount: form.Totals.DiscountAmount,
		TaxAmount:      form.Totals.TaxAmount,
		VATAmount:      form.Totals.VATAmount,
		GrandTotal:     form.Totals.GrandTotal,
		PaymentStatus:  string(form.Payment.Status),
		AmountPaid:     form.Payment.AmountPaid,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	details := make([]*entity.InvoiceDetail, 0, len(form.Items))
	for i, it := range form.Items {
		details = append(details, &entity.InvoiceDetail{
			ID:        uuid.New().String(),
			InvoiceID: inv.ID,
			Position:  i + 1,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}

	err = uc.txRunner.RunBilling(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			return err
		}
		for _, d := range details {
			if err := invoiceRepo.CreateDetail(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// El borrador enviado pudo dejar de ser el activo, o haberse eliminado, mientras se
	// guardaba la factura.
	if !m.CompleteSubmission(draftID) {
		uc.log.Warn().Str("draft_id", draftID).Str("invoice_id", inv.ID).Msg("borrador enviado ya no existe")
	}
	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("number", inv.Number).
		Str("grand_total", inv.GrandTotal.StringFixed(2)).
		Msg("factura creada desde borrador")

	return &dto.SubmitResponse{
		Invoice:       toInvoiceResponse(inv, customer.Name, details),
		ActiveDraftID: m.ActiveID(),
	}, nil
}

// GetInvoice obtiene una factura por ID con su detalle completo.
func (uc *ComposerUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if inv.CompanyID != uc.cfg.CompanyID {
		return nil, domain.ErrForbidden
	}
	details, err := uc.invoiceRepo.GetDetailsByInvoiceID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Sin el cliente la factura se devuelve igual, con el nombre vacío.
	customerName := ""
	customer, err := uc.customerRepo.GetByID(ctx, inv.CustomerID)
	switch {
	case err != nil:
		uc.log.Warn().Err(err).Str("invoice_id", id).Str("customer_id", inv.CustomerID).Msg("no se pudo leer el cliente de la factura")
	case customer != nil:
		customerName = customer.Name
	}
	return toInvoiceResponse(inv, customerName, details), nil
}

func toFormResponse(draftID string, state drafts.State, form totals.InvoiceForm, changes totals.Changes) *dto.FormResponse {
	if changes == nil {
		changes = totals.Changes{}
	}
	return &dto.FormResponse{
		DraftID:       draftID,
		State:         string(state),
		Form:          form,
		TaxableAmount: form.Totals.TaxableAmount(),
		BalanceDue:    form.BalanceDue(),
		Changes:       changes,
	}
}

func toInvoiceResponse(inv *entity.Invoice, customerName string, details []*entity.InvoiceDetail) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID,
		CustomerID:     inv.CustomerID,
		CustomerName:   customerName,
		Prefix:         inv.Prefix,
		Number:         inv.Number,
		Date:           inv.Date.Format("2006-01-02"),
		Notes:          inv.Notes,
		DiscountKind:   inv.DiscountKind,
		DiscountValue:  inv.DiscountValue,
		TaxRate:        inv.TaxRate,
		VATRate:        inv.VATRate,
		Subtotal:       inv.Subtotal,
		DiscountAmount: inv.DiscountAmount,
		TaxAmount:      inv.TaxAmount,
		VATAmount:      inv.VATAmount,
		GrandTotal:     inv.GrandTotal,
		PaymentStatus:  inv.PaymentStatus,
		AmountPaid:     inv.AmountPaid,
		BalanceDue:     inv.GrandTotal.Sub(inv.AmountPaid),
		Details:        make([]dto.InvoiceDetailResponse, 0, len(details)),
	}
	for _, d := range details {
		resp.Details = append(resp.Details, dto.InvoiceDetailResponse{
			ID:        d.ID,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			LineTotal: d.LineTotal,
		})
	}
	return resp
}
