package drafts

import (
	"sync"
	"time"

	"github.com/jhoicas/pharma-erp-api/internal/domain"
	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
)

// Registry mantiene un Manager por sesión sobre un mismo almacén; las claves de cada
// sesión llevan el prefijo "session:<id>:".
type Registry struct {
	mu       sync.Mutex
	store    repository.KeyValueStore
	opts     Options
	managers map[string]*Manager
	lastUsed map[string]time.Time
}

// NewRegistry construye el registro. opts.KeyPrefix se ignora (lo define la sesión).
func NewRegistry(store repository.KeyValueStore, opts Options) *Registry {
	return &Registry{
		store:    store,
		opts:     opts,
		managers: make(map[string]*Manager),
		lastUsed: make(map[string]time.Time),
	}
}

func (r *Registry) now() time.Time {
	if r.opts.Now != nil {
		return r.opts.Now()
	}
	return time.Now()
}

// Get devuelve el Manager de la sesión, restaurándolo del almacén la primera vez.
func (r *Registry) Get(sessionID string) (*Manager, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingSession
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastUsed[sessionID] = r.now()
	if m, ok := r.managers[sessionID]; ok {
		return m, nil
	}
	opts := r.opts
	opts.KeyPrefix = "session:" + sessionID + ":"
	m, err := NewManager(r.store, opts)
	if err != nil {
		delete(r.lastUsed, sessionID)
		return nil, err
	}
	r.managers[sessionID] = m
	return m, nil
}

// Release cierra el Manager de la sesión y lo quita del registro; los borradores guardados
// quedan en el almacén.
func (r *Registry) Release(sessionID string) {
	r.mu.Lock()
	m, ok := r.managers[sessionID]
	delete(r.managers, sessionID)
	delete(r.lastUsed, sessionID)
	r.mu.Unlock()
	if ok {
		m.Close()
	}
}

// Close cierra todos los managers (apagado del servicio).
func (r *Registry) Close() {
	r.mu.Lock()
	managers := r.managers
	r.managers = make(map[string]*Manager)
	r.lastUsed = make(map[string]time.Time)
	r.mu.Unlock()
	for _, m := range managers {
		m.Close()
	}
}

// EvictIdle cierra y quita los managers sin uso desde hace más de maxIdle. Los que tienen
// un guardado pendiente se conservan hasta que el conjunto quede guardado.
// Devuelve cuántas sesiones se quitaron.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	cutoff := r.now().Add(-maxIdle)
	var evicted []*Manager
	for id, m := range r.managers {
		if r.lastUsed[id].After(cutoff) || m.State() != StateIdle {
			continue
		}
		evicted = append(evicted, m)
		delete(r.managers, id)
		delete(r.lastUsed, id)
	}
	r.mu.Unlock()
	for _, m := range evicted {
		m.Close()
	}
	return len(evicted)
}

// Len cantidad de sesiones con manager cargado.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}
