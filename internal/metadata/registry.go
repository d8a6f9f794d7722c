package metadata

import "sync"

type Registry struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*Entity)}
}

// GetEntity returns the entity with the given name, or nil.
func (r *Registry) GetEntity(name string) *Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities[name]
}

// MustEntity returns the entity with the given name and panics if it is not
// registered. Used while wiring handlers at startup.
func (r *Registry) MustEntity(name string) *Entity {
	e := r.GetEntity(name)
	if e == nil {
		panic("metadata: entity " + name + " not registered")
	}
	return e
}

// AllEntities returns all registered entities.
func (r *Registry) AllEntities() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entities := make([]*Entity, 0, len(r.entities))
	for _, e := range r.entities {
		entities = append(entities, e)
	}
	return entities
}

// Load replaces all entities in the registry.
func (r *Registry) Load(entities []*Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entities = make(map[string]*Entity, len(entities))
	for _, e := range entities {
		r.entities[e.Name] = e
	}
}
