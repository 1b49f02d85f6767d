package vector

// Hit is the best candidate found by an Index.
type Hit struct {
	Name       string
	Similarity float64
}

// Index answers nearest-neighbour queries over named embeddings.
// Linear is the reference implementation; an approximate index can replace it
// without changing callers as long as ties resolve the same way.
type Index interface {
	// Add inserts or replaces the vector stored under name.
	Add(name string, e Embedding)
	// Nearest returns the most similar entry. ok is false for an empty index.
	Nearest(query Embedding) (hit Hit, ok bool)
	// Len returns the number of indexed entries.
	Len() int
}

// Linear scans every stored embedding on each query.
type Linear struct {
	names   []string
	vectors []Embedding
	pos     map[string]int
}

// NewLinear creates an empty linear index.
func NewLinear() *Linear {
	return &Linear{pos: make(map[string]int)}
}

// Add implements Index.
func (l *Linear) Add(name string, e Embedding) {
	if i, ok := l.pos[name]; ok {
		l.vectors[i] = e.Clone()
		return
	}
	l.pos[name] = len(l.names)
	l.names = append(l.names, name)
	l.vectors = append(l.vectors, e.Clone())
}

// Nearest implements Index. Among equal similarities the lexicographically
// smallest name wins, so the answer does not depend on insertion order.
func (l *Linear) Nearest(query Embedding) (Hit, bool) {
	if len(l.names) == 0 {
		return Hit{}, false
	}
	best := Hit{Name: l.names[0], Similarity: Cosine(query, l.vectors[0])}
	for i := 1; i < len(l.names); i++ {
		sim := Cosine(query, l.vectors[i])
		if sim > best.Similarity || (sim == best.Similarity && l.names[i] < best.Name) {
			best = Hit{Name: l.names[i], Similarity: sim}
		}
	}
	return best, true
}

// Len implements Index.
func (l *Linear) Len() int {
	return len(l.names)
}
