// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bsdf

import (
	"fmt"
	"log/slog"
)

// Extension teaches the codec a type outside the plain value model.
//
// On encode, the first registered extension whose Match returns true
// converts the value with Encode; the result is written with an
// uppercased type tag followed by Name. On decode, a record carrying
// Name is passed through Decode.
//
// Encode must return a plain value (a list, map, blob, string, number
// and so on). That value may contain further extension values, but it
// may not itself require an extension.
type Extension struct {
	// Name identifies the extension on the wire. 1 to 250 bytes.
	Name string

	// Match reports whether this extension handles v.
	Match func(v any) bool

	// Encode converts v to a plain value.
	Encode func(v any) (any, error)

	// Decode reconstructs the original value from its plain form.
	Decode func(v any) (any, error)
}

func (e *Extension) validate() error {
	if e == nil {
		return fmt.Errorf("bsdf: nil extension")
	}
	if len(e.Name) == 0 || len(e.Name) > maxExtensionName {
		return fmt.Errorf("bsdf: extension name %q must be 1 to %d bytes", e.Name, maxExtensionName)
	}
	if e.Match == nil || e.Encode == nil || e.Decode == nil {
		return fmt.Errorf("bsdf: extension %q must define Match, Encode and Decode", e.Name)
	}
	return nil
}

// Registry is an ordered, name-indexed set of extensions. Encoding
// consults extensions in registration order; decoding looks them up by
// name.
//
// A Registry is not synchronized. It may be read by concurrent encode
// and decode calls, but Register and Unregister must not run while any
// call is in flight.
type Registry struct {
	ordered []*Extension
	index   map[string]int
	logger  *slog.Logger
}

// NewRegistry returns an empty registry that reports replaced
// extensions to logger. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		index:  make(map[string]int),
		logger: logger,
	}
}

// Register adds extension. An existing extension with the same name is
// replaced in place, keeping its position in the match order.
func (r *Registry) Register(extension *Extension) error {
	if err := extension.validate(); err != nil {
		return err
	}
	if position, exists := r.index[extension.Name]; exists {
		logger := r.logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("replacing registered BSDF extension", "extension", extension.Name)
		r.ordered[position] = extension
		return nil
	}
	r.index[extension.Name] = len(r.ordered)
	r.ordered = append(r.ordered, extension)
	return nil
}

// Unregister removes the extension with the given name. Removing an
// unknown name is a no-op.
func (r *Registry) Unregister(name string) {
	position, exists := r.index[name]
	if !exists {
		return
	}
	r.ordered = append(r.ordered[:position], r.ordered[position+1:]...)
	delete(r.index, name)
	for i := position; i < len(r.ordered); i++ {
		r.index[r.ordered[i].Name] = i
	}
}

// Lookup returns the extension registered under name.
func (r *Registry) Lookup(name string) (*Extension, bool) {
	position, exists := r.index[name]
	if !exists {
		return nil, false
	}
	return r.ordered[position], true
}

// Match returns the first extension, in registration order, that
// handles v.
func (r *Registry) Match(v any) (*Extension, bool) {
	for _, extension := range r.ordered {
		if extension.Match(v) {
			return extension, true
		}
	}
	return nil, false
}

// Names returns the registered extension names in match order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.ordered))
	for i, extension := range r.ordered {
		names[i] = extension.Name
	}
	return names
}

// Len returns the number of registered extensions.
func (r *Registry) Len() int {
	return len(r.ordered)
}
