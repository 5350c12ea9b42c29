package testutil

// FakeIfindexResolver implements net.IfindexResolver from a fixed map.
// Interfaces absent from the map resolve as deferred.
type FakeIfindexResolver struct {
	Ifindexes map[string]int
	Err       error
}

// NewFakeIfindexResolver creates a FakeIfindexResolver with the provided
// name to ifindex mapping
func NewFakeIfindexResolver(ifindexes map[string]int) *FakeIfindexResolver {
	return &FakeIfindexResolver{Ifindexes: ifindexes}
}

// IfindexFor implements net.IfindexResolver interface
func (f *FakeIfindexResolver) IfindexFor(name string) (int, bool, error) {
	if f.Err != nil {
		return 0, false, f.Err
	}
	ifindex, ok := f.Ifindexes[name]
	return ifindex, ok, nil
}
