// Package viewmode implements the editor's step navigation and keeps it in
// sync with the page's URL fragment.
//
// The fragment is the external representation of the active [Mode]. A
// change requested by the UI is published: the fragment is rewritten to
// match. A change that arrives from the fragment is applied without being
// published again. The two paths are separate operations on [Controller],
// so a fragment change can never echo back as a fragment write.
package viewmode

// Origin tells where a transition came from.
type Origin int

const (
	// FromUI is a transition requested by an editor action.
	FromUI Origin = iota
	// FromFragment is a transition adopted from the URL fragment.
	FromFragment
)

func (o Origin) String() string {
	if o == FromFragment {
		return "fragment"
	}
	return "ui"
}

// Change describes a completed transition.
type Change struct {
	From   Mode
	To     Mode
	Origin Origin
}

// Controller owns the active view mode. The initial mode is [Start].
type Controller struct {
	mode      Mode
	loc       Location
	adopted   bool
	stopWatch func()
	observers []func(Change)
}

// NewController returns a controller in [Start] that is not yet mounted.
func NewController() *Controller {
	return &Controller{mode: Start}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// IsPreviewMode reports whether the active mode shows a preview.
func (c *Controller) IsPreviewMode() bool { return c.mode.Preview() }

// IsIterationMode reports whether the iteration canvas is mounted.
func (c *Controller) IsIterationMode() bool { return c.mode.Iteration() }

// OnChange registers an observer called after every transition.
func (c *Controller) OnChange(fn func(Change)) {
	if fn != nil {
		c.observers = append(c.observers, fn)
	}
}

// Mount attaches the controller to loc. On the first mount a recognised
// fragment is adopted as the active mode; otherwise, and on every later
// mount, the active mode is published to the fragment. If loc implements
// [Watcher], external fragment changes are followed until [Controller.Unmount].
func (c *Controller) Mount(loc Location) {
	c.Unmount()
	c.loc = loc
	if loc == nil {
		return
	}
	if w, ok := loc.(Watcher); ok {
		c.stopWatch = w.Watch(func(f string) { c.FragmentChanged(f) })
	}

	if !c.adopted {
		c.adopted = true
		if m, ok := ParseFragment(loc.Fragment()); ok {
			c.apply(m, FromFragment)
			return
		}
	}
	c.publish()
}

// Unmount detaches the location.
func (c *Controller) Unmount() {
	if c.stopWatch != nil {
		c.stopWatch()
		c.stopWatch = nil
	}
	c.loc = nil
}

// Request switches to m on behalf of the UI and publishes it to the
// fragment. It returns false for an unknown mode.
func (c *Controller) Request(m Mode) bool {
	if !m.Valid() {
		return false
	}
	c.apply(m, FromUI)
	c.publish()
	return true
}

// FragmentChanged applies an external fragment change. Unrecognised
// fragments are ignored. The fragment is never written back.
func (c *Controller) FragmentChanged(f string) bool {
	m, ok := ParseFragment(f)
	if !ok {
		return false
	}
	c.apply(m, FromFragment)
	return true
}

func (c *Controller) apply(m Mode, origin Origin) {
	if m == c.mode {
		return
	}
	ch := Change{From: c.mode, To: m, Origin: origin}
	c.mode = m
	for _, fn := range c.observers {
		fn(ch)
	}
}

func (c *Controller) publish() {
	if c.loc == nil || !c.mode.FragmentEligible() {
		return
	}
	if f := c.mode.Fragment(); c.loc.Fragment() != f {
		c.loc.SetFragment(f)
	}
}
