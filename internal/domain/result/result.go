// Package result contains the normalized value returned by every provider.
package result

import "encoding/json"

// Result is one ranked content item. It is immutable once constructed.
type Result struct {
	identifier string
	name       string
}

// New builds a Result. Identifier is typically a URL path or a CMS node id.
func New(identifier, name string) Result {
	return Result{identifier: identifier, name: name}
}

// Identifier returns the item identifier.
func (r Result) Identifier() string { return r.identifier }

// Name returns the display name.
func (r Result) Name() string { return r.name }

type wire struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

// MarshalJSON encodes the result as {"identifier": ..., "name": ...}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{Identifier: r.identifier, Name: r.name})
}
