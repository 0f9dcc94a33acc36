// Package dashboard holds the tab and scroll state of the terminal view and
// renders the focused match.
package dashboard

// State is the view state: which match tab has focus and how many innings
// of its scorecard are scrolled past.
type State struct {
	FocusedTab int
	Scroll     int
	Tabs       int
}

// NewState returns a state for the given number of tabs, focused on the
// first one.
func NewState(tabs int) *State {
	return &State{Tabs: tabs}
}

// NextTab moves focus right, wrapping to the first tab.
func (s *State) NextTab() {
	if s.Tabs == 0 {
		return
	}
	s.FocusedTab = (s.FocusedTab + 1) % s.Tabs
	s.Scroll = 0
}

// PrevTab moves focus left, wrapping to the last tab.
func (s *State) PrevTab() {
	if s.Tabs == 0 {
		return
	}
	s.FocusedTab = (s.FocusedTab - 1 + s.Tabs) % s.Tabs
	s.Scroll = 0
}

// ScrollDown skips one more innings.
func (s *State) ScrollDown() {
	s.Scroll++
}

// ScrollUp shows one more innings.
func (s *State) ScrollUp() {
	if s.Scroll > 0 {
		s.Scroll--
	}
}

// ClampScroll keeps at least one of n innings visible.
func (s *State) ClampScroll(n int) {
	limit := n - 1
	if limit < 0 {
		limit = 0
	}
	if s.Scroll > limit {
		s.Scroll = limit
	}
}

// UpdateOnTick adjusts the state after a refresh removed the tabs at the
// given ascending indexes and left total tabs. Focus stays on the same match
// when earlier tabs go away; if the focused match itself went away, focus
// moves to the tab that took its place.
func (s *State) UpdateOnTick(removed []int, total int) {
	focusedRemoved := false
	before := 0
	for _, idx := range removed {
		switch {
		case idx < s.FocusedTab:
			before++
		case idx == s.FocusedTab:
			focusedRemoved = true
		}
	}

	s.FocusedTab -= before
	s.Tabs = total
	if s.FocusedTab >= total {
		s.FocusedTab = total - 1
	}
	if s.FocusedTab < 0 {
		s.FocusedTab = 0
	}
	if focusedRemoved {
		s.Scroll = 0
	}
}
