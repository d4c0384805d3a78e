// Package viewer tracks which media item is on screen: the ordered list of
// paths and the current index. Navigation wraps at both ends.
package viewer

import (
	"path/filepath"
	"sync"
)

// Item is the currently displayed entry.
type Item struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Context is a snapshot of the viewer state.
type Context struct {
	Paths []string `json:"paths"`
	Index int      `json:"index"`
}

// Viewer holds the navigation state. Safe for concurrent use.
type Viewer struct {
	mu    sync.Mutex
	paths []string
	index int
}

// New returns an empty viewer.
func New() *Viewer {
	return &Viewer{}
}

// Open replaces the path list and positions the cursor at startIndex, clamped
// into range. An empty list resets the index to zero.
func (v *Viewer) Open(paths []string, startIndex int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.paths = append([]string(nil), paths...)
	if len(v.paths) == 0 {
		v.index = 0
		return
	}

	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex > len(v.paths)-1 {
		startIndex = len(v.paths) - 1
	}
	v.index = startIndex
}

// Next advances to the following item, wrapping to the start. Returns false
// when the viewer is empty.
func (v *Viewer) Next() (Item, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.paths) == 0 {
		return Item{}, false
	}
	v.index = (v.index + 1) % len(v.paths)
	return v.currentLocked(), true
}

// Prev moves to the preceding item, wrapping to the end. Returns false when
// the viewer is empty.
func (v *Viewer) Prev() (Item, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.paths) == 0 {
		return Item{}, false
	}
	if v.index == 0 {
		v.index = len(v.paths) - 1
	} else {
		v.index--
	}
	return v.currentLocked(), true
}

// Context returns a copy of the current state.
func (v *Viewer) Context() Context {
	v.mu.Lock()
	defer v.mu.Unlock()

	return Context{
		Paths: append([]string(nil), v.paths...),
		Index: v.index,
	}
}

func (v *Viewer) currentLocked() Item {
	path := v.paths[v.index]
	return Item{Path: path, Name: filepath.Base(path)}
}
