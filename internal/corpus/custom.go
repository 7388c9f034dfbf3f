package corpus

import "jinqiu/internal/model"

// CustomLibrary holds the user-curated category. Members come only from
// runtime actions; nothing is fetched and nothing is persisted.
type CustomLibrary struct {
	poems []model.Poem
	ids   map[string]struct{}
}

// NewCustomLibrary returns an empty custom library.
func NewCustomLibrary() *CustomLibrary {
	return &CustomLibrary{ids: map[string]struct{}{}}
}

// Add inserts a poem at the front of the library. Adding an id that is
// already present leaves the library unchanged and reports false so the
// caller can surface a duplicate notice.
func (l *CustomLibrary) Add(p model.Poem) bool {
	if _, ok := l.ids[p.ID]; ok {
		return false
	}
	l.ids[p.ID] = struct{}{}
	l.poems = append([]model.Poem{p}, l.poems...)
	return true
}

// Remove deletes the poem with the given id, reporting whether it existed.
func (l *CustomLibrary) Remove(id string) bool {
	if _, ok := l.ids[id]; !ok {
		return false
	}
	delete(l.ids, id)
	for i, p := range l.poems {
		if p.ID == id {
			l.poems = append(l.poems[:i], l.poems[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether the id is in the library.
func (l *CustomLibrary) Has(id string) bool {
	_, ok := l.ids[id]
	return ok
}

// Poems returns a copy of the library, newest first.
func (l *CustomLibrary) Poems() []model.Poem {
	out := make([]model.Poem, len(l.poems))
	copy(out, l.poems)
	return out
}

// Len returns the number of poems in the library.
func (l *CustomLibrary) Len() int {
	return len(l.poems)
}
