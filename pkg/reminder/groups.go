package reminder

// Groups is an insertion-ordered mapping from destination id to the reminders routed there.
type Groups struct {
	order []string
	items map[string][]Reminder
}

// GroupByDestination groups reminders by Destination, keeping first-seen destination order
// and extraction order within each destination.
func GroupByDestination(reminders []Reminder) *Groups {
	g := &Groups{items: make(map[string][]Reminder)}
	for _, r := range reminders {
		g.Add(r)
	}
	return g
}

// Add appends r to the group of its destination.
func (g *Groups) Add(r Reminder) {
	if g.items == nil {
		g.items = make(map[string][]Reminder)
	}
	if _, ok := g.items[r.Destination]; !ok {
		g.order = append(g.order, r.Destination)
	}
	g.items[r.Destination] = append(g.items[r.Destination], r)
}

// Keys returns destinations in first-seen order.
func (g *Groups) Keys() []string {
	return append([]string(nil), g.order...)
}

// Get returns the reminders of a destination in extraction order.
func (g *Groups) Get(destination string) []Reminder {
	return g.items[destination]
}

// Len returns the number of destinations.
func (g *Groups) Len() int {
	return len(g.order)
}
