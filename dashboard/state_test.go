package dashboard

import "testing"

func TestTabNavigationWraps(t *testing.T) {
	st := NewState(3)

	st.PrevTab()
	if st.FocusedTab != 2 {
		t.Fatalf("prev from first = %d, want 2", st.FocusedTab)
	}
	st.NextTab()
	if st.FocusedTab != 0 {
		t.Fatalf("next from last = %d, want 0", st.FocusedTab)
	}
	st.NextTab()
	if st.FocusedTab != 1 {
		t.Fatalf("next = %d, want 1", st.FocusedTab)
	}
}

func TestTabNavigationWithoutTabs(t *testing.T) {
	st := NewState(0)
	st.NextTab()
	st.PrevTab()
	if st.FocusedTab != 0 {
		t.Fatalf("focused = %d, want 0", st.FocusedTab)
	}
}

func TestScrollFloorAndReset(t *testing.T) {
	st := NewState(2)
	st.ScrollUp()
	if st.Scroll != 0 {
		t.Fatalf("scroll = %d, want 0", st.Scroll)
	}
	st.ScrollDown()
	st.ScrollDown()
	if st.Scroll != 2 {
		t.Fatalf("scroll = %d, want 2", st.Scroll)
	}
	st.ClampScroll(2)
	if st.Scroll != 1 {
		t.Fatalf("clamped scroll = %d, want 1", st.Scroll)
	}
	st.NextTab()
	if st.Scroll != 0 {
		t.Fatalf("scroll after tab change = %d, want 0", st.Scroll)
	}
	st.ScrollDown()
	st.ClampScroll(0)
	if st.Scroll != 0 {
		t.Fatalf("scroll with no innings = %d, want 0", st.Scroll)
	}
}

func TestUpdateOnTick(t *testing.T) {
	tests := []struct {
		name        string
		focused     int
		scroll      int
		tabs        int
		removed     []int
		total       int
		wantFocused int
		wantScroll  int
	}{
		{name: "nothing removed", focused: 2, scroll: 1, tabs: 4, total: 4, wantFocused: 2, wantScroll: 1},
		{name: "earlier tabs removed keep match", focused: 3, scroll: 1, tabs: 5, removed: []int{0, 1}, total: 3, wantFocused: 1, wantScroll: 1},
		{name: "later tab removed", focused: 1, scroll: 1, tabs: 3, removed: []int{2}, total: 2, wantFocused: 1, wantScroll: 1},
		{name: "focused removed takes next", focused: 1, scroll: 2, tabs: 3, removed: []int{1}, total: 2, wantFocused: 1, wantScroll: 0},
		{name: "focused last removed clamps", focused: 2, scroll: 1, tabs: 3, removed: []int{2}, total: 2, wantFocused: 1, wantScroll: 0},
		{name: "all removed", focused: 1, tabs: 2, removed: []int{0, 1}, total: 0, wantFocused: 0, wantScroll: 0},
		{name: "tabs added", focused: 0, tabs: 1, total: 3, wantFocused: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &State{FocusedTab: tt.focused, Scroll: tt.scroll, Tabs: tt.tabs}
			st.UpdateOnTick(tt.removed, tt.total)
			if st.FocusedTab != tt.wantFocused {
				t.Fatalf("focused = %d, want %d", st.FocusedTab, tt.wantFocused)
			}
			if st.Scroll != tt.wantScroll {
				t.Fatalf("scroll = %d, want %d", st.Scroll, tt.wantScroll)
			}
			if st.Tabs != tt.total {
				t.Fatalf("tabs = %d, want %d", st.Tabs, tt.total)
			}
		})
	}
}
