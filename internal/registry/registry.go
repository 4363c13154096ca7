// Package registry maps live windows, streams, and file references to
// their opaque rocks so external tooling (save/undo machinery in the
// interpreter) can enumerate live state without raw internal pointers.
package registry

import "sort"

// Class identifies the kind of object a registry entry tracks.
type Class uint8

const (
	// ClassWindow entries track windows.
	ClassWindow Class = iota

	// ClassStream entries track streams.
	ClassStream

	// ClassFileref entries track named file references.
	ClassFileref
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassWindow:
		return "window"
	case ClassStream:
		return "stream"
	case ClassFileref:
		return "fileref"
	default:
		return "unknown"
	}
}

// Entry is one registered object.
type Entry struct {
	Class Class
	ID    int
	Rock  int
}

type key struct {
	class Class
	id    int
}

// Registry is a bidirectional map between object ids and rocks, kept in
// lockstep with object lifetime: registration at creation, removal at
// destruction, never emptied independently.
type Registry struct {
	byID map[key]int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[key]int)}
}

// Register records a live object and its rock. Re-registering an id
// replaces the rock.
func (r *Registry) Register(class Class, id, rock int) {
	r.byID[key{class, id}] = rock
}

// Remove drops an object. Removing an unknown id is a no-op.
func (r *Registry) Remove(class Class, id int) {
	delete(r.byID, key{class, id})
}

// Rock returns the rock registered for an object.
func (r *Registry) Rock(class Class, id int) (int, bool) {
	rock, ok := r.byID[key{class, id}]
	return rock, ok
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	return len(r.byID)
}

// Entries returns every live object of a class, ordered by id.
func (r *Registry) Entries(class Class) []Entry {
	var out []Entry
	for k, rock := range r.byID {
		if k.class == class {
			out = append(out, Entry{Class: k.class, ID: k.id, Rock: rock})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
