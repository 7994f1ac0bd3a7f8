package zod

// ReferenceSet collects the named schemas an expression depends on. Names
// de-duplicate on insert and come back in first-seen order, which keeps
// generated import blocks stable across runs. One set is scoped to a single
// compile or template build and discarded afterward.
type ReferenceSet struct {
	names []string
	seen  map[string]struct{}
}

// NewReferenceSet returns an empty set.
func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{seen: make(map[string]struct{})}
}

// Add records a name; repeats are ignored.
func (s *ReferenceSet) Add(name string) {
	if name == "" {
		return
	}
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

// Contains reports whether name was recorded.
func (s *ReferenceSet) Contains(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Len returns the number of distinct names recorded.
func (s *ReferenceSet) Len() int { return len(s.names) }

// Names returns the recorded names in first-seen order. The slice is a copy.
func (s *ReferenceSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
