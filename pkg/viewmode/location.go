package viewmode

// Location is the page's addressable location. Only the fragment is used.
type Location interface {
	Fragment() string
	SetFragment(f string)
}

// Watcher is implemented by locations that report external fragment
// changes. The returned function stops the watch.
type Watcher interface {
	Watch(fn func(fragment string)) (cancel func())
}

// MemoryLocation is an in-process Location. Like a browser, it notifies
// watchers only when the fragment actually changes, whether the change came
// from SetFragment or Navigate.
type MemoryLocation struct {
	fragment string
	writes   int
	nextID   int
	watchers map[int]func(string)
}

// NewMemoryLocation returns a location holding fragment.
func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: fragment, watchers: make(map[int]func(string))}
}

func (l *MemoryLocation) Fragment() string { return l.fragment }

// SetFragment records a programmatic write.
func (l *MemoryLocation) SetFragment(f string) {
	l.writes++
	l.set(f)
}

// Navigate simulates the user changing the fragment (bookmark, back button).
func (l *MemoryLocation) Navigate(f string) { l.set(f) }

// Writes returns the number of SetFragment calls.
func (l *MemoryLocation) Writes() int { return l.writes }

func (l *MemoryLocation) set(f string) {
	if f == l.fragment {
		return
	}
	l.fragment = f
	last := l.nextID
	for id := 1; id <= last; id++ {
		if fn, ok := l.watchers[id]; ok {
			fn(f)
		}
	}
}

func (l *MemoryLocation) Watch(fn func(string)) func() {
	l.nextID++
	id := l.nextID
	l.watchers[id] = fn
	return func() { delete(l.watchers, id) }
}
