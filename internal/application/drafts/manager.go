package drafts

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-erp-api/internal/domain"
	"github.com/jhoicas/pharma-erp-api/internal/domain/entity"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
	"github.com/jhoicas/pharma-erp-api/internal/domain/totals"
)

// Valores por defecto del conjunto de borradores.
const (
	DefaultMaxDrafts = 4
	DefaultDebounce  = 2 * time.Second
)

// Claves del almacén (se anteponen al KeyPrefix de la sesión).
const (
	KeyDrafts   = "invoice_drafts"
	KeyActiveID = "active_draft_id"
)

// State estado de persistencia del conjunto de borradores.
type State string

const (
	StateIdle       State = "idle"       // sin cambios pendientes
	StateDirty      State = "dirty"      // el formulario cambió desde el último guardado
	StatePersisting State = "persisting" // escritura en curso
)

// Options configuración del Manager. Los campos vacíos toman valores por defecto.
type Options struct {
	KeyPrefix string
	MaxDrafts int
	Debounce  time.Duration
	Scheduler Scheduler
	NewForm   func() totals.InvoiceForm
	Now       func() time.Time
	NewID     func() string
	Logger    *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxDrafts <= 0 {
		o.MaxDrafts = DefaultMaxDrafts
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.Scheduler == nil {
		o.Scheduler = SystemScheduler()
	}
	if o.NewForm == nil {
		o.NewForm = func() totals.InvoiceForm { return totals.NewForm(decimal.Zero, decimal.Zero) }
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = func() string { return uuid.New().String() }
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// Manager mantiene de 1 a MaxDrafts borradores de factura de una sesión, uno activo,
// y replica el conjunto en el almacén clave-valor. Los cambios del formulario activo
// se guardan con debounce; crear, cambiar y eliminar borradores se escriben de inmediato.
type Manager struct {
	mu    sync.Mutex
	store repository.KeyValueStore
	opts  Options
	log   zerolog.Logger

	drafts    []entity.Draft
	activeID  string
	form      totals.InvoiceForm
	persisted map[string]string // último snapshot guardado por borrador
	state     State
	debounce  *Debouncer
	closed    bool
	stored    bool // el conjunto ya existe en el almacén
}

// NewManager restaura los borradores guardados bajo opts.KeyPrefix o crea uno vacío.
func NewManager(store repository.KeyValueStore, opts Options) (*Manager, error) {
	opts = opts.withDefaults()
	m := &Manager{
		store:     store,
		opts:      opts,
		log:       opts.Logger.With().Str("prefix", opts.KeyPrefix).Logger(),
		persisted: make(map[string]string),
		state:     StateIdle,
		debounce:  NewDebouncer(opts.Scheduler, opts.Debounce),
	}
	if err := m.restore(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) key(name string) string { return m.opts.KeyPrefix + name }

func (m *Manager) restore() error {
	raw, ok, err := m.store.Get(m.key(KeyDrafts))
	if err != nil {
		return fmt.Errorf("leer borradores: %w", err)
	}
	repaired := false
	if ok && raw != "" {
		var stored []entity.Draft
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			m.log.Warn().Err(err).Msg("borradores guardados ilegibles, se descartan")
		} else {
			m.drafts = m.usable(stored)
			repaired = len(m.drafts) != len(stored)
		}
		if len(m.drafts) == 0 {
			m.discardStored()
		}
	}

	activeID, _, err := m.store.Get(m.key(KeyActiveID))
	if err != nil {
		return fmt.Errorf("leer borrador activo: %w", err)
	}

	if len(m.drafts) == 0 {
		// Sesión nueva: no se escribe nada hasta la primera mutación.
		d := m.newDraft()
		m.drafts = append(m.drafts, d)
		m.persisted[d.ID] = snapshot(d.Document)
		m.activate(d.ID)
		return nil
	}

	m.stored = true
	for i := range m.drafts {
		doc := &m.drafts[i].Document
		before := snapshot(*doc)
		totals.NormalizeInput(doc)
		totals.Recompute(doc)
		snap := snapshot(*doc)
		if snap != before {
			repaired = true
		}
		m.persisted[m.drafts[i].ID] = snap
	}
	if m.indexOf(activeID) < 0 {
		activeID = m.drafts[0].ID
		repaired = true
	}
	m.activate(activeID)
	if repaired {
		m.writeThrough()
	}
	return nil
}

// usable descarta las entradas guardadas sin id o con id repetido y recorta a MaxDrafts.
func (m *Manager) usable(stored []entity.Draft) []entity.Draft {
	out := make([]entity.Draft, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, d := range stored {
		if d.ID == "" || seen[d.ID] {
			m.log.Warn().Str("draft_id", d.ID).Msg("borrador guardado sin id válido, se descarta")
			continue
		}
		seen[d.ID] = true
		out = append(out, d)
	}
	if len(out) > m.opts.MaxDrafts {
		m.log.Warn().Int("stored", len(out)).Msg("más borradores guardados que el máximo, se recortan")
		out = out[:m.opts.MaxDrafts]
	}
	return out
}

// discardStored borra del almacén un conjunto que no se pudo restaurar.
func (m *Manager) discardStored() {
	for _, name := range []string{KeyDrafts, KeyActiveID} {
		if err := m.store.Remove(m.key(name)); err != nil {
			m.log.Warn().Err(err).Str("key", m.key(name)).Msg("no se pudo borrar la clave descartada")
		}
	}
}

// Drafts devuelve una copia del conjunto de borradores en orden de creación.
func (m *Manager) Drafts() []entity.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Draft, len(m.drafts))
	for i, d := range m.drafts {
		d.Document = d.Document.Clone()
		out[i] = d
	}
	return out
}

// ActiveID id del borrador activo.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Form copia del formulario en edición del borrador activo.
func (m *Manager) Form() totals.InvoiceForm {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form.Clone()
}

// State estado de persistencia actual.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Create agrega un borrador vacío y lo activa. Con MaxDrafts borradores abiertos devuelve
// domain.ErrCapacityExceeded sin modificar nada.
func (m *Manager) Create() (entity.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.drafts) >= m.opts.MaxDrafts {
		m.log.Info().Int("max", m.opts.MaxDrafts).Msg("límite de borradores alcanzado")
		return entity.Draft{}, domain.ErrCapacityExceeded
	}
	d := m.newDraft()
	m.drafts = append(m.drafts, d)
	m.persisted[d.ID] = snapshot(d.Document)
	m.activate(d.ID)
	m.writeThrough()
	m.log.Debug().Str("draft_id", d.ID).Msg("borrador creado")
	return cloneDraft(d), nil
}

// Switch activa otro borrador y carga su documento guardado en el formulario.
// Descarta el guardado pendiente del borrador anterior.
func (m *Manager) Switch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return domain.ErrDraftNotFound
	}
	if id == m.activeID {
		return nil
	}
	m.activate(id)
	m.writeActiveID()
	return nil
}

// Remove elimina un borrador. Si era el activo se activa el primero que quede; si era el
// último se crea uno vacío, de modo que el conjunto nunca queda vacío.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(id) < 0 {
		return domain.ErrDraftNotFound
	}
	m.remove(id)
	m.writeThrough()
	return nil
}

// Update reemplaza el formulario del borrador activo. Si cambiaron líneas, tasa de impuesto,
// tipo o valor de descuento, el conjunto pasa a Dirty y se reprograma el guardado.
// Devuelve true si se programó un guardado.
func (m *Manager) Update(form totals.InvoiceForm) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.form
	m.form = form.Clone()
	if m.closed || !trackedChanged(prev, m.form) {
		return false
	}
	m.state = StateDirty
	m.debounce.Schedule(m.flush)
	return true
}

// CompleteSubmission elimina el borrador draftID tras crear su factura. Si seguía activo,
// el formulario pasa al borrador que queda activo (uno vacío si no quedaba ninguno); si no,
// el activo no cambia. Devuelve false si el borrador ya no existe.
func (m *Manager) CompleteSubmission(draftID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(draftID) < 0 {
		return false
	}
	m.remove(draftID)
	m.writeThrough()
	return true
}

// Close cancela el guardado pendiente. Después de Close, Update no programa más guardados.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.debounce.Cancel()
	m.closed = true
	if m.state == StateDirty {
		m.log.Debug().Str("draft_id", m.activeID).Msg("cambios sin guardar descartados al cerrar")
	}
	m.state = StateIdle
}

// flush se ejecuta al vencer la ventana de debounce.
func (m *Manager) flush(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || !m.debounce.Fire(gen) {
		return
	}
	idx := m.indexOf(m.activeID)
	if idx < 0 {
		m.state = StateIdle
		return
	}

	m.state = StatePersisting
	snap := snapshot(m.form)
	if snap == m.persisted[m.activeID] {
		m.state = StateIdle
		return
	}

	m.drafts[idx].Document = m.form.Clone()
	m.drafts[idx].LastUpdated = m.opts.Now()
	if err := m.writeDrafts(); err != nil {
		m.log.Warn().Err(err).Str("draft_id", m.activeID).Msg("no se pudo guardar el borrador")
		m.state = StateDirty
		return
	}
	if !m.stored {
		m.writeActiveID()
		m.stored = true
	}
	m.persisted[m.activeID] = snap
	m.state = StateIdle
	m.log.Debug().Str("draft_id", m.activeID).Msg("borrador guardado")
}

// activate cambia el borrador activo. Requiere el mutex.
func (m *Manager) activate(id string) {
	m.debounce.Cancel()
	m.activeID = id
	m.form = m.drafts[m.indexOf(id)].Document.Clone()
	m.state = StateIdle
}

// remove aplica la regla de eliminación. Requiere el mutex.
func (m *Manager) remove(id string) {
	idx := m.indexOf(id)
	if idx < 0 {
		return
	}
	wasActive := id == m.activeID
	if wasActive {
		m.debounce.Cancel()
	}
	m.drafts = append(m.drafts[:idx], m.drafts[idx+1:]...)
	delete(m.persisted, id)

	if len(m.drafts) == 0 {
		d := m.newDraft()
		m.drafts = append(m.drafts, d)
		m.persisted[d.ID] = snapshot(d.Document)
		m.activate(d.ID)
		return
	}
	if wasActive {
		m.activate(m.drafts[0].ID)
	}
}

func (m *Manager) newDraft() entity.Draft {
	return entity.Draft{
		ID:          m.opts.NewID(),
		DisplayName: m.nextName(),
		Document:    m.opts.NewForm(),
		LastUpdated: m.opts.Now(),
	}
}

func (m *Manager) nextName() string {
	used := make(map[string]bool, len(m.drafts))
	for _, d := range m.drafts {
		used[d.DisplayName] = true
	}
	for n := len(m.drafts) + 1; ; n++ {
		name := fmt.Sprintf("Borrador %d", n)
		if !used[name] {
			return name
		}
	}
}

func (m *Manager) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, d := range m.drafts {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// writeThrough escribe el conjunto y el id activo. Los fallos se registran: el almacén es
// un espejo y el estado en memoria sigue siendo válido.
func (m *Manager) writeThrough() {
	if err := m.writeDrafts(); err != nil {
		m.log.Warn().Err(err).Msg("no se pudo guardar el conjunto de borradores")
	} else {
		m.stored = true
	}
	m.writeActiveID()
}

func (m *Manager) writeActiveID() {
	if err := m.store.Set(m.key(KeyActiveID), m.activeID); err != nil {
		m.log.Warn().Err(err).Msg("no se pudo guardar el borrador activo")
	}
}

func (m *Manager) writeDrafts() error {
	raw, err := json.Marshal(m.drafts)
	if err != nil {
		return fmt.Errorf("serializar borradores: %w", err)
	}
	if err := m.store.Set(m.key(KeyDrafts), string(raw)); err != nil {
		return fmt.Errorf("guardar borradores: %w", err)
	}
	return nil
}

func snapshot(f totals.InvoiceForm) string {
	raw, err := json.Marshal(f)
	if err != nil {
		return ""
	}
	return string(raw)
}

func cloneDraft(d entity.Draft) entity.Draft {
	d.Document = d.Document.Clone()
	return d
}

// trackedChanged compara las entradas que disparan el guardado: líneas, tasa de impuesto
// y descuento.
func trackedChanged(a, b totals.InvoiceForm) bool {
	if len(a.Items) != len(b.Items) {
		return true
	}
	for i := range a.Items {
		x, y := a.Items[i], b.Items[i]
		if x.ProductID != y.ProductID || !x.Quantity.Equal(y.Quantity) || !x.UnitPrice.Equal(y.UnitPrice) {
			return true
		}
	}
	return !a.TaxRate.Equal(b.TaxRate) ||
		a.Discount.Kind != b.Discount.Kind ||
		!a.Discount.Value.Equal(b.Discount.Value)
}
