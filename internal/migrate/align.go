package migrate

import "sort"

// Slot is one position in the aligned ticket sequence. GitHub numbers
// issues 1, 2, 3, ... with no gaps, so every missing Lighthouse number gets a
// placeholder issue to keep the two numberings identical.
type Slot struct {
	Index       int
	Ticket      int
	Placeholder bool
}

// Align turns a set of ticket numbers into a dense sequence indexed from 0 to
// the largest number. Slot i holds ticket i when it exists and a placeholder
// otherwise. Slot 0 is always present and never corresponds to an issue.
func Align(numbers []int) []Slot {
	sorted := make([]int, 0, len(numbers))
	present := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		if n > 0 && !present[n] {
			present[n] = true
			sorted = append(sorted, n)
		}
	}
	sort.Ints(sorted)

	max := 0
	if len(sorted) > 0 {
		max = sorted[len(sorted)-1]
	}

	slots := make([]Slot, max+1)
	for i := range slots {
		if present[i] {
			slots[i] = Slot{Index: i, Ticket: i}
		} else {
			slots[i] = Slot{Index: i, Placeholder: true}
		}
	}
	return slots
}
