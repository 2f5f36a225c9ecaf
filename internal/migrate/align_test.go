package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignFillsGaps(t *testing.T) {
	slots := Align([]int{4, 1, 3})

	assert.Equal(t, []Slot{
		{Index: 0, Placeholder: true},
		{Index: 1, Ticket: 1},
		{Index: 2, Placeholder: true},
		{Index: 3, Ticket: 3},
		{Index: 4, Ticket: 4},
	}, slots)
}

func TestAlignProperties(t *testing.T) {
	inputs := [][]int{
		{1},
		{5},
		{2, 2, 7, 3},
		{10, 9, 8, 1},
		{},
		nil,
		{0, -3, 2},
	}
	for _, in := range inputs {
		present := map[int]bool{}
		max := 0
		for _, n := range in {
			if n > 0 {
				present[n] = true
				if n > max {
					max = n
				}
			}
		}

		slots := Align(in)
		if assert.Len(t, slots, max+1, "input %v", in) {
			assert.True(t, slots[0].Placeholder, "slot 0 must be structural, input %v", in)
			for i, s := range slots {
				assert.Equal(t, i, s.Index)
				if present[i] {
					assert.False(t, s.Placeholder, "input %v slot %d", in, i)
					assert.Equal(t, i, s.Ticket)
				} else {
					assert.True(t, s.Placeholder, "input %v slot %d", in, i)
				}
			}
		}
	}
}

func TestAlignDoesNotModifyInput(t *testing.T) {
	in := []int{3, 1, 2}
	Align(in)
	assert.Equal(t, []int{3, 1, 2}, in)
}
