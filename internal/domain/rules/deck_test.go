package rules

import "testing"

func TestSlotZIndexRotation(t *testing.T) {
	wantTop := []int{0, 1, 2, 0, 1, 2}
	for consumed, want := range wantTop {
		if got := TopSlot(consumed); got != want {
			t.Fatalf("unexpected top slot after %d swipes: got %d want %d", consumed, got, want)
		}
	}
}

func TestSlotZIndexKeepsOtherLayersOrdered(t *testing.T) {
	// After slot 0 leaves, slot 1 surfaces and slot 2 stays below it.
	if got := SlotZIndex(1, 1); got != TopZIndex {
		t.Fatalf("expected slot 1 on top, got z=%d", got)
	}
	if got := SlotZIndex(2, 1); got != 1 {
		t.Fatalf("expected slot 2 in the middle, got z=%d", got)
	}
	if got := SlotZIndex(0, 1); got != 0 {
		t.Fatalf("expected recycled slot 0 at the bottom, got z=%d", got)
	}
}

func TestSlotZIndexRejectsUnknownSlot(t *testing.T) {
	if got := SlotZIndex(3, 0); got != -1 {
		t.Fatalf("expected -1 for unknown slot, got %d", got)
	}
	if got := SlotZIndex(0, -1); got != -1 {
		t.Fatalf("expected -1 for negative consumed count, got %d", got)
	}
}

func TestShouldPrefetch(t *testing.T) {
	cases := []struct {
		consumed int
		loaded   int
		want     bool
	}{
		{consumed: 7, loaded: 10, want: true},
		{consumed: 6, loaded: 10, want: false},
		{consumed: 8, loaded: 10, want: false},
		{consumed: 0, loaded: 3, want: true},
		{consumed: 0, loaded: 2, want: false},
		{consumed: 0, loaded: 0, want: false},
	}

	for _, tc := range cases {
		if got := ShouldPrefetch(tc.consumed, tc.loaded); got != tc.want {
			t.Fatalf("ShouldPrefetch(%d, %d): got %v want %v", tc.consumed, tc.loaded, got, tc.want)
		}
	}
}
