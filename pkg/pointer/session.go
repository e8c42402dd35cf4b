package pointer

// Handlers are the callbacks of a gesture session.
type Handlers struct {
	// Move receives every Move event while the session is active.
	Move func(Event)

	// End runs exactly once when the session ends, after the listener has
	// been released. The event is the terminal Up/Cancel/Leave event, or a
	// synthetic Cancel when the session is stopped by its owner.
	End func(Event)
}

// Session is an active gesture holding one surface listener.
type Session struct {
	release func()
	h       Handlers
	active  bool
}

// Begin installs a listener on s for the duration of one gesture.
// It returns nil when the surface is nil or unmounted.
func Begin(s *Surface, h Handlers) *Session {
	if !s.Mounted() {
		return nil
	}
	sess := &Session{h: h, active: true}
	sess.release = s.Listen(sess.handle)
	return sess
}

func (s *Session) handle(ev Event) {
	if !s.active {
		return
	}
	switch {
	case ev.Kind == Move:
		if s.h.Move != nil {
			s.h.Move(ev)
		}
	case ev.Kind.Terminal():
		s.finish(ev)
	}
}

// Active reports whether the session still holds its listener.
func (s *Session) Active() bool { return s != nil && s.active }

// Stop ends the session as if it had been cancelled. Stopping an ended or
// nil session does nothing.
func (s *Session) Stop() {
	if s == nil {
		return
	}
	s.finish(Event{Kind: Cancel})
}

func (s *Session) finish(ev Event) {
	if !s.active {
		return
	}
	s.active = false
	s.release()
	if s.h.End != nil {
		s.h.End(ev)
	}
}
