package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharma-erp-api/internal/application/billing"
	"github.com/jhoicas/pharma-erp-api/internal/application/drafts"
	"github.com/jhoicas/pharma-erp-api/internal/application/dto"
	"github.com/jhoicas/pharma-erp-api/internal/domain"
	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
	"github.com/jhoicas/pharma-erp-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/pharma-erp-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testCompanyID = "00000000-0000-0000-0000-000000000002"

type idleScheduler struct{}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

func (idleScheduler) AfterFunc(time.Duration, func()) drafts.Timer { return idleTimer{} }

type stubProducts struct{ list []*entity.Product }

func (s *stubProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	for _, p := range s.list {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (s *stubProducts) ListByCompany(context.Context, string, int, int) ([]*entity.Product, error) {
	return s.list, nil
}

func (s *stubProducts) ListNamesByCompany(context.Context, string) ([]*entity.Product, error) {
	return s.list, nil
}

type stubCustomers struct{ list []*entity.Customer }

func (s *stubCustomers) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	for _, c := range s.list {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *stubCustomers) ListByCompany(context.Context, string, int, int) ([]*entity.Customer, error) {
	return s.list, nil
}

type stubSources struct{}

func (stubSources) GetByID(context.Context, string, string) (*entity.SourceDocument, error) {
	return nil, nil
}

type stubInvoices struct {
	invoices map[string]*entity.Invoice
	details  map[string][]*entity.InvoiceDetail
	errByID  map[string]error
}

func (s *stubInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	s.invoices[inv.ID] = inv
	return nil
}

func (s *stubInvoices) CreateDetail(_ context.Context, d *entity.InvoiceDetail) error {
	s.details[d.InvoiceID] = append(s.details[d.InvoiceID], d)
	return nil
}

func (s *stubInvoices) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	if err := s.errByID[id]; err != nil {
		return nil, err
	}
	return s.invoices[id], nil
}

func (s *stubInvoices) GetDetailsByInvoiceID(_ context.Context, id string) ([]*entity.InvoiceDetail, error) {
	return s.details[id], nil
}

type stubTx struct{ repo *stubInvoices }

func (t stubTx) RunBilling(_ context.Context, fn func(repository.InvoiceRepository) error) error {
	return fn(t.repo)
}

// buildTestApp construye la API completa sobre repositorios en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	products := &stubProducts{list: []*entity.Product{
		{ID: "p-1", CompanyID: testCompanyID, SKU: "ACE-500", Name: "Acetaminofén 500 mg", SellingPrice: decimal.RequireFromString("10")},
	}}
	customers := &stubCustomers{list: []*entity.Customer{
		{ID: "c-1", CompanyID: testCompanyID, Name: "Droguería Central"},
	}}
	invoices := &stubInvoices{
		invoices: map[string]*entity.Invoice{},
		details:  map[string][]*entity.InvoiceDetail{},
		errByID: map[string]error{
			"falla-db":   errors.New("get invoice: dial tcp 10.0.0.5:5432: connect: connection refused"),
			"no-es-uuid": fmt.Errorf("invoice id %q: %w", "no-es-uuid", domain.ErrInvalidInput),
		},
	}

	registry := drafts.NewRegistry(memory.NewKVStore(), drafts.Options{Scheduler: idleScheduler{}})
	t.Cleanup(registry.Close)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CatalogUC: billing.NewCatalogUseCase(testCompanyID, products, customers),
		DraftUC:   billing.NewDraftUseCase(registry, 4),
		ComposerUC: billing.NewComposerUseCase(registry, stubTx{repo: invoices}, products, customers, stubSources{}, invoices,
			billing.ComposerConfig{CompanyID: testCompanyID}, zerolog.Nop()),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, session, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(apphttp.HeaderSessionID, session)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestDrafts_SinSesion_400(t *testing.T) {
	app := buildTestApp(t)
	resp, data := do(t, app, http.MethodGet, "/api/drafts", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_SESSION", decode[dto.ErrorResponse](t, data).Code)
}

func TestDrafts_SesionInvalida_400(t *testing.T) {
	app := buildTestApp(t)
	resp, data := do(t, app, http.MethodGet, "/api/drafts", "a:b", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_SESSION", decode[dto.ErrorResponse](t, data).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borradores
// ──────────────────────────────────────────────────────────────────────────────

func TestDrafts_CapacidadDevuelve409(t *testing.T) {
	app := buildTestApp(t)
	for i := 0; i < 3; i++ {
		resp, _ := do(t, app, http.MethodPost, "/api/drafts", "s1", "")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, data := do(t, app, http.MethodPost, "/api/drafts", "s1", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CAPACITY_EXCEEDED", decode[dto.ErrorResponse](t, data).Code)

	// Otra sesión no se ve afectada.
	resp, data = do(t, app, http.MethodGet, "/api/drafts", "s2", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.DraftListResponse](t, data).Drafts, 1)
}

func TestDrafts_SwitchYRemove(t *testing.T) {
	app := buildTestApp(t)
	_, data := do(t, app, http.MethodGet, "/api/drafts", "s1", "")
	first := decode[dto.DraftListResponse](t, data).ActiveID

	_, data = do(t, app, http.MethodPost, "/api/drafts", "s1", "")
	second := decode[dto.DraftListResponse](t, data).ActiveID
	require.NotEqual(t, first, second)

	resp, data := do(t, app, http.MethodPut, "/api/drafts/active", "s1", `{"draft_id":"`+first+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first, decode[dto.DraftListResponse](t, data).ActiveID)

	resp, data = do(t, app, http.MethodPut, "/api/drafts/active", "s1", `{"draft_id":"nope"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "DRAFT_NOT_FOUND", decode[dto.ErrorResponse](t, data).Code)

	resp, data = do(t, app, http.MethodDelete, "/api/drafts/"+first, "s1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.DraftListResponse](t, data)
	assert.Len(t, list.Drafts, 1)
	assert.Equal(t, second, list.ActiveID)
}

func TestDrafts_CerrarSesion(t *testing.T) {
	app := buildTestApp(t)
	resp, _ := do(t, app, http.MethodDelete, "/api/drafts/session", "s1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Formulario y envío
// ──────────────────────────────────────────────────────────────────────────────

func TestForm_ActualizaYRecalcula(t *testing.T) {
	app := buildTestApp(t)
	body := `{
		"customer_id": "c-1",
		"items": [{"product_id": "p-1", "quantity": 3, "unit_price": "33.3333"}],
		"discount": {"kind": "fixed", "value": 5},
		"tax_rate": 10,
		"vat_rate": 0,
		"payment": {"status": "partial", "amount_paid": 50}
	}`
	resp, data := do(t, app, http.MethodPut, "/api/drafts/active/form", "s1", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	out := decode[dto.FormResponse](t, data)

	assert.Equal(t, "100", out.Form.Items[0].LineTotal.String())
	assert.Equal(t, "100", out.Form.Totals.Subtotal.String())
	assert.Equal(t, "9.5", out.Form.Totals.TaxAmount.String())
	assert.Equal(t, "104.5", out.Form.Totals.GrandTotal.String())
	assert.Equal(t, "54.5", out.BalanceDue.String())
	assert.Equal(t, "dirty", out.State)

	resp, data = do(t, app, http.MethodGet, "/api/drafts/active/form", "s1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "104.5", decode[dto.FormResponse](t, data).Form.Totals.GrandTotal.String())
}

func TestForm_ValidacionDevuelveCampos(t *testing.T) {
	app := buildTestApp(t)
	body := `{"items": [{"product_id": "p-1", "quantity": 1.5, "unit_price": 10}]}`
	resp, data := do(t, app, http.MethodPut, "/api/drafts/active/form", "s1", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[dto.ErrorResponse](t, data)
	assert.Equal(t, "VALIDATION", e.Code)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "items[0].quantity", e.Fields[0].Field)
}

func TestForm_CuerpoInvalido(t *testing.T) {
	app := buildTestApp(t)
	resp, data := do(t, app, http.MethodPut, "/api/drafts/active/form", "s1", `{"items": "x"`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, data).Code)
}

func TestPreview_NoRequiereSesion(t *testing.T) {
	app := buildTestApp(t)
	body := `{"items": [{"quantity": 2, "unit_price": 10}], "discount": {"kind": "percentage", "value": 150}}`
	resp, data := do(t, app, http.MethodPost, "/api/invoices/preview", "", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	out := decode[dto.FormResponse](t, data)
	assert.Equal(t, "100", out.Form.Discount.Value.String())
	assert.True(t, out.Form.Totals.GrandTotal.IsZero())
}

func TestSubmit_CreaFacturaYConsulta(t *testing.T) {
	app := buildTestApp(t)
	body := `{"customer_id": "c-1", "items": [{"product_id": "p-1", "quantity": 2, "unit_price": 10}],
		"payment": {"status": "paid"}}`
	resp, data := do(t, app, http.MethodPut, "/api/drafts/active/form", "s1", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	draftID := decode[dto.FormResponse](t, data).DraftID

	resp, data = do(t, app, http.MethodPost, "/api/drafts/active/submit", "s1", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	out := decode[dto.SubmitResponse](t, data)
	require.NotNil(t, out.Invoice)
	assert.Equal(t, "20", out.Invoice.GrandTotal.String())
	assert.True(t, out.Invoice.BalanceDue.IsZero())
	assert.NotEqual(t, draftID, out.ActiveDraftID)

	resp, data = do(t, app, http.MethodGet, "/api/invoices/"+out.Invoice.ID, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, out.Invoice.Number, decode[dto.InvoiceResponse](t, data).Number)

	resp, _ = do(t, app, http.MethodGet, "/api/invoices/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvoice_ErrorInternoNoExponeDetalle(t *testing.T) {
	app := buildTestApp(t)
	resp, data := do(t, app, http.MethodGet, "/api/invoices/falla-db", "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	e := decode[dto.ErrorResponse](t, data)
	assert.Equal(t, "INTERNAL", e.Code)
	assert.NotContains(t, e.Message, "10.0.0.5")
	assert.NotContains(t, string(data), "connection refused")
}

func TestInvoice_IDMalFormadoDevuelve400(t *testing.T) {
	app := buildTestApp(t)
	resp, data := do(t, app, http.MethodGet, "/api/invoices/no-es-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, data).Code)
}

func TestSubmit_IncompletoDevuelve400(t *testing.T) {
	app := buildTestApp(t)
	resp, data := do(t, app, http.MethodPost, "/api/drafts/active/submit", "s1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decode[dto.ErrorResponse](t, data)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.NotEmpty(t, e.Fields)
}

func TestImport_NoEncontrado(t *testing.T) {
	app := buildTestApp(t)
	resp, data := do(t, app, http.MethodPost, "/api/drafts/active/import", "s1", `{"kind":"order","source_id":"o-1"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, data).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestCatalog_ListaProductos(t *testing.T) {
	app := buildTestApp(t)
	resp, data := do(t, app, http.MethodGet, "/api/products?limit=500", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ProductListResponse](t, data)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 100, out.Page.Limit)
}
