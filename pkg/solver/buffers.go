package solver

// valueSlots is the explicit two-slot store for the MDP value function.
// Exactly one slot is current at any time; advance hands ownership to the
// other slot after a completed sweep, replacing scattered parity checks.
type valueSlots struct {
	v   [2][]float64
	cur int
}

func newValueSlots(initial []float64) *valueSlots {
	s := &valueSlots{}
	for i := range s.v {
		s.v[i] = make([]float64, len(initial))
		copy(s.v[i], initial)
	}
	return s
}

func (s *valueSlots) current() []float64 { return s.v[s.cur] }
func (s *valueSlots) next() []float64    { return s.v[1-s.cur] }
func (s *valueSlots) advance()           { s.cur = 1 - s.cur }

// alphaSet is one slot of the alpha-vector ping-pong pair: capacity rows are
// allocated once per solve and count tracks how many are live. The rows
// beyond count retain the seeded initial values; row 0 doubles as the
// fallback when an empty explored set has to reject a candidate.
type alphaSet struct {
	vectors [][]float64
	actions []int
	count   int
}

func newAlphaSet(capacity, states int, seed [][]float64) *alphaSet {
	s := &alphaSet{
		vectors: make([][]float64, capacity),
		actions: make([]int, capacity),
	}
	for i := range s.vectors {
		s.vectors[i] = make([]float64, states)
		if i < len(seed) {
			copy(s.vectors[i], seed[i])
		}
	}
	return s
}

// view returns the live vectors.
func (s *alphaSet) view() [][]float64 {
	return s.vectors[:s.count]
}

// add copies an alpha-vector and its action tag into the next live row. The
// caller enforces capacity.
func (s *alphaSet) add(alpha []float64, action int) {
	copy(s.vectors[s.count], alpha)
	s.actions[s.count] = action
	s.count++
}

// alphaSlots pairs the two alpha-vector sets. The current slot is the value
// function of the horizon being swept; the other slot accumulates the next
// horizon's set.
type alphaSlots struct {
	sets [2]*alphaSet
	cur  int
}

func newAlphaSlots(capacity, states int, seed [][]float64) *alphaSlots {
	return &alphaSlots{
		sets: [2]*alphaSet{
			newAlphaSet(capacity, states, seed),
			newAlphaSet(capacity, states, seed),
		},
	}
}

func (s *alphaSlots) current() *alphaSet { return s.sets[s.cur] }
func (s *alphaSlots) next() *alphaSet    { return s.sets[1-s.cur] }
func (s *alphaSlots) advance()           { s.cur = 1 - s.cur }
