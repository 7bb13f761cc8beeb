package utils

import "testing"

func TestFirstN(t *testing.T) {
	items := []string{"a", "b", "c"}

	if got := FirstN(items, 2); len(got) != 2 || got[1] != "b" {
		t.Errorf("FirstN(3 items, 2) = %v", got)
	}
	if got := FirstN(items, 3); len(got) != 3 {
		t.Errorf("FirstN(3 items, 3) = %v", got)
	}
	if got := FirstN(items, 10); len(got) != 3 {
		t.Errorf("FirstN(3 items, 10) = %v", got)
	}
	if got := FirstN([]string{}, 5); len(got) != 0 {
		t.Errorf("FirstN(empty, 5) = %v", got)
	}
}
