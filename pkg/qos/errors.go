package qos

import "fmt"

const (
	// RefKindPolicy is a reference to a policy
	RefKindPolicy RefKind = "policy"
	// RefKindProfile is a reference to a shaping profile
	RefKindProfile RefKind = "profile"
	// RefKindMarkMap is a reference to a mark-map
	RefKindMarkMap RefKind = "mark-map"
	// RefKindIngressMap is a reference to an ingress-map
	RefKindIngressMap RefKind = "ingress-map"
)

// RefKind is the kind of entity a configuration reference points at
type RefKind string

// ReferenceError reports a name referenced from configuration that cannot be
// found in its registry. It is fatal: the whole snapshot build is aborted and
// no partial graph is published.
type ReferenceError struct {
	// Referrer is the entity holding the dangling reference
	Referrer string
	// Kind is the registry the name was looked up in
	Kind RefKind
	// Name is the missing name
	Name string
}

// Error implements the error interface
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s references undefined %s %q", e.Referrer, e.Kind, e.Name)
}

// newReferenceError creates a ReferenceError for referrer pointing at a
// missing name of the given kind
func newReferenceError(referrer string, kind RefKind, name string) *ReferenceError {
	return &ReferenceError{Referrer: referrer, Kind: kind, Name: name}
}
