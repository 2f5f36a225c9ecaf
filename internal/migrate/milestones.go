package migrate

// MilestoneMap translates Lighthouse milestone ids to the GitHub milestones
// created for them. It is filled during the milestone phase and only read
// once ticket processing starts.
type MilestoneMap struct {
	numbers map[int]int
	titles  map[int]string
}

// NewMilestoneMap returns an empty map.
func NewMilestoneMap() *MilestoneMap {
	return &MilestoneMap{
		numbers: make(map[int]int),
		titles:  make(map[int]string),
	}
}

// Record stores the GitHub number and title for a Lighthouse milestone.
func (m *MilestoneMap) Record(id, number int, title string) {
	m.numbers[id] = number
	m.titles[id] = title
}

// Number returns the GitHub milestone number for a Lighthouse id.
func (m *MilestoneMap) Number(id int) (int, bool) {
	n, ok := m.numbers[id]
	return n, ok
}

// Title returns the milestone title for a Lighthouse id.
func (m *MilestoneMap) Title(id int) (string, bool) {
	t, ok := m.titles[id]
	return t, ok
}

// Len returns how many milestones were recorded.
func (m *MilestoneMap) Len() int {
	return len(m.numbers)
}
