package shell

import (
	"strings"
	"sync"
)

// Location is the addressable fragment the shell keeps in sync with the
// active section.
type Location interface {
	Fragment() string
	SetFragment(fragment string)
	// Listen registers fn for fragment changes and returns its removal.
	Listen(fn func(fragment string)) (stop func())
}

// MemoryLocation is a Location held in memory. Listeners run synchronously
// on the goroutine that changed the fragment.
type MemoryLocation struct {
	mu        sync.Mutex
	fragment  string
	nextID    int
	listeners map[int]func(string)
}

var _ Location = (*MemoryLocation)(nil)

func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: strings.TrimPrefix(fragment, "#"), listeners: map[int]func(string){}}
}

func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// SetFragment notifies listeners only when the fragment actually changes.
func (l *MemoryLocation) SetFragment(fragment string) {
	fragment = strings.TrimPrefix(fragment, "#")
	l.mu.Lock()
	if fragment == l.fragment {
		l.mu.Unlock()
		return
	}
	l.fragment = fragment
	fns := make([]func(string), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(fragment)
	}
}

func (l *MemoryLocation) Listen(fn func(string)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.listeners, id)
			l.mu.Unlock()
		})
	}
}

// Listeners is the number of registered listeners.
func (l *MemoryLocation) Listeners() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.listeners)
}
