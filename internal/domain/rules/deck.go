package rules

const (
	DeckSlots = 3
	TopZIndex = DeckSlots - 1
)

var slotZOffsets = [DeckSlots]int{2, 1, 0}

// SlotZIndex returns the layer of a physical slot after consumed swipes.
// Every swipe rotates the layers by one so the next slot in line surfaces
// without reordering the other two.
func SlotZIndex(slot, consumed int) int {
	if slot < 0 || slot >= DeckSlots || consumed < 0 {
		return -1
	}
	return (consumed + slotZOffsets[slot]) % DeckSlots
}

func TopSlot(consumed int) int {
	for slot := 0; slot < DeckSlots; slot++ {
		if SlotZIndex(slot, consumed) == TopZIndex {
			return slot
		}
	}
	return -1
}

// ShouldPrefetch reports whether the next page must be requested now. Three
// cards are always materialised ahead of the consumed count.
func ShouldPrefetch(consumed, loaded int) bool {
	return loaded >= DeckSlots && consumed == loaded-DeckSlots
}
