package scope

// Run executes fn in a fresh, empty slot for the calling unit and restores
// the previous slot when fn returns, fails or panics. The error from fn is
// returned as is.
func (s *Store) Run(fn func() error) error {
	return s.runWith(nil, fn)
}

// RunValue is Run for logic that produces a value.
func RunValue[T any](s *Store, fn func() (T, error)) (T, error) {
	var out T

	err := s.Run(func() error {
		var err error
		out, err = fn()

		return err
	})

	return out, err
}

// runWith installs seed (nil means empty) as the caller's slot for the
// duration of fn. The unit is resolved once so the restore targets the same
// entry even if fn yields.
func (s *Store) runWith(seed *Slot, fn func() error) error {
	u := s.resolver.resolve()
	saved := s.slots.swap(u, seed)

	defer s.slots.swap(u, saved)

	s.runs.Add(1)

	err := fn()
	if err != nil {
		s.runErrors.Add(1)
	}

	return err
}

// Bind captures a copy of the caller's slot and returns a function that runs
// fn with that copy on whichever unit invokes it. Writes made by fn stay in
// its own copy. Each invocation starts from the captured state.
func (s *Store) Bind(fn func()) func() {
	var seed *Slot
	if cur := s.current(); cur.Len() > 0 {
		seed = cur.Clone()
	}

	return func() {
		var slot *Slot
		if seed != nil {
			slot = seed.Clone()
		}

		_ = s.runWith(slot, func() error {
			fn()
			return nil
		})
	}
}

// Go runs fn on a new goroutine that starts with a copy of the caller's slot.
// The goroutine's slot is dropped when fn returns.
func (s *Store) Go(fn func()) {
	go s.Bind(fn)()
}
