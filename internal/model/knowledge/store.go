package knowledge

// Store exposes knowledge base entries to the answering service.
type Store interface {
	List() []Entry
	FindByID(id string) (Entry, bool)
}

// MemoryStore implements Store over an in-memory slice.
type MemoryStore struct {
	items []Entry
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied entries.
func NewMemoryStore(items []Entry) *MemoryStore {
	return &MemoryStore{items: append([]Entry(nil), items...)}
}

// List returns the entries in load order.
func (s *MemoryStore) List() []Entry {
	return append([]Entry(nil), s.items...)
}

// FindByID looks up an entry by identifier.
func (s *MemoryStore) FindByID(id string) (Entry, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Entry{}, false
}
