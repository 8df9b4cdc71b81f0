package assert

import "testing"

func TestThatPassingConditionNeverPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	That(true, "ok")
	Thatf(true, "ok %d", 1)
}

func TestThatFailingCondition(t *testing.T) {
	defer func() {
		r := recover()
		if Enabled && r == nil {
			t.Fatal("expected panic with debug tag")
		}
		if !Enabled && r != nil {
			t.Fatalf("unexpected panic without debug tag: %v", r)
		}
	}()
	That(false, "boom")
}
