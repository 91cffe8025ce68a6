package billing

import (
	"github.com/jhoicas/pharma-erp-api/internal/application/drafts"
	"github.com/jhoicas/pharma-erp-api/internal/application/dto"
)

// DraftUseCase administra el conjunto de borradores de cada sesión.
type DraftUseCase struct {
	registry  *drafts.Registry
	maxDrafts int
}

// NewDraftUseCase construye el caso de uso.
func NewDraftUseCase(registry *drafts.Registry, maxDrafts int) *DraftUseCase {
	if maxDrafts <= 0 {
		maxDrafts = drafts.DefaultMaxDrafts
	}
	return &DraftUseCase{registry: registry, maxDrafts: maxDrafts}
}

// List devuelve los borradores de la sesión.
func (uc *DraftUseCase) List(sessionID string) (*dto.DraftListResponse, error) {
	m, err := uc.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return uc.toList(m), nil
}

// Create abre un borrador nuevo (domain.ErrCapacityExceeded si ya hay el máximo).
func (uc *DraftUseCase) Create(sessionID string) (*dto.DraftListResponse, error) {
	m, err := uc.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := m.Create(); err != nil {
		return nil, err
	}
	return uc.toList(m), nil
}

// Switch activa otro borrador.
func (uc *DraftUseCase) Switch(sessionID, draftID string) (*dto.DraftListResponse, error) {
	m, err := uc.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := m.Switch(draftID); err != nil {
		return nil, err
	}
	return uc.toList(m), nil
}

// Remove elimina un borrador.
func (uc *DraftUseCase) Remove(sessionID, draftID string) (*dto.DraftListResponse, error) {
	m, err := uc.registry.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := m.Remove(draftID); err != nil {
		return nil, err
	}
	return uc.toList(m), nil
}

// Close termina la edición de la sesión y cancela el guardado pendiente.
func (uc *DraftUseCase) Close(sessionID string) {
	uc.registry.Release(sessionID)
}

func (uc *DraftUseCase) toList(m *drafts.Manager) *dto.DraftListResponse {
	activeID := m.ActiveID()
	list := m.Drafts()
	out := &dto.DraftListResponse{
		ActiveID:  activeID,
		State:     string(m.State()),
		MaxDrafts: uc.maxDrafts,
		Drafts:    make([]dto.DraftSummary, 0, len(list)),
	}
	for _, d := range list {
		out.Drafts = append(out.Drafts, dto.DraftSummary{
			ID:          d.ID,
			DisplayName: d.DisplayName,
			Active:      d.ID == activeID,
			ItemCount:   len(d.Document.Items),
			GrandTotal:  d.Document.Totals.GrandTotal,
			LastUpdated: d.LastUpdated,
		})
	}
	return out
}
