package engine

import (
	"errors"

	"github.com/dshills/glkio/internal/registry"
)

// ErrFilerefNotFound indicates an operation on an unknown fileref id.
var ErrFilerefNotFound = errors.New("fileref not found")

// fileref is a named file handle. The engine only tracks the name and
// rock; resolving the name to actual storage is the host's concern.
type fileref struct {
	name string
	rock int
}

// CreateFileref allocates a named file reference and returns its id.
// Names are not required to be unique; each call yields a fresh ref.
func (e *Engine) CreateFileref(name string, rock int) int {
	if e.filerefs == nil {
		e.filerefs = make(map[int]fileref)
	}
	e.nextFileref++
	id := e.nextFileref
	e.filerefs[id] = fileref{name: name, rock: rock}
	e.reg.Register(registry.ClassFileref, id, rock)
	return id
}

// FilerefName returns the name a fileref was created with.
func (e *Engine) FilerefName(id int) (string, bool) {
	f, ok := e.filerefs[id]
	return f.name, ok
}

// DestroyFileref releases a file reference. Streams opened through it
// are unaffected.
func (e *Engine) DestroyFileref(id int) error {
	if _, ok := e.filerefs[id]; !ok {
		return opErr("destroy fileref", id, ErrFilerefNotFound)
	}
	delete(e.filerefs, id)
	e.reg.Remove(registry.ClassFileref, id)
	return nil
}
