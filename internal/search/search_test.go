package search

import "testing"

func TestQuery(t *testing.T) {
	s := New()

	if s.Searching() {
		t.Error("empty store should not be searching")
	}

	s.SetQuery("payment")
	if s.Query() != "payment" {
		t.Errorf("got %q", s.Query())
	}
	if !s.Searching() {
		t.Error("non-blank query should mean searching")
	}

	s.SetQuery("   ")
	if s.Searching() {
		t.Error("blank query should not mean searching")
	}
}

func TestFilters(t *testing.T) {
	s := New()

	if !s.Filters().Empty() {
		t.Error("fresh store should have no filters")
	}

	s.SetWorkType("Bug")
	s.SetWorkFlow("To Do")
	s.SetPriority("Major")

	f := s.Filters()
	if f.WorkType != "Bug" || f.WorkFlow != "To Do" || f.Priority != "Major" {
		t.Errorf("got %+v", f)
	}
	if f.Empty() {
		t.Error("filters should not report empty")
	}

	tf := f.TaskFilters()
	if tf.WorkType != "Bug" || tf.WorkFlow != "To Do" || tf.Priority != "Major" {
		t.Errorf("got task filters %+v", tf)
	}

	s.SetWorkType("")
	if s.Filters().WorkType != "" {
		t.Error("empty value should clear the work type filter")
	}

	s.Clear()
	if !s.Filters().Empty() || s.Query() != "" {
		t.Error("clear should reset the query and every filter")
	}
}
