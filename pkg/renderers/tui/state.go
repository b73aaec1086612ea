package tui

// State tracks the values typed during a run so a rejected step can be
// re-prompted with the previous answers as defaults.
type State struct {
	values map[string]string
}

// NewState seeds the state with prefilled values.
func NewState(prefill map[string]string) *State {
	values := make(map[string]string, len(prefill))
	for k, v := range prefill {
		values[k] = v
	}
	return &State{values: values}
}

// Get returns the value recorded for field.
func (s *State) Get(field string) string {
	if s == nil {
		return ""
	}
	return s.values[field]
}

// Set records value for field.
func (s *State) Set(field, value string) {
	if s == nil {
		return
	}
	s.values[field] = value
}

// Values returns a copy of every recorded value.
func (s *State) Values() map[string]string {
	if s == nil {
		return nil
	}
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Subset returns the recorded values for names, omitting unknown ones.
func (s *State) Subset(names []string) map[string]string {
	out := make(map[string]string, len(names))
	if s == nil {
		return out
	}
	for _, name := range names {
		if value, ok := s.values[name]; ok {
			out[name] = value
		}
	}
	return out
}

// Reset forgets every value.
func (s *State) Reset() {
	if s == nil {
		return
	}
	s.values = make(map[string]string)
}
