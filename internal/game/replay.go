package game

// Replay is the sequence of snapshots a game passed through, for
// step-through viewing. It is kept in memory only.
type Replay struct {
	GameID       string
	States       []GameSnapshot
	CurrentIndex int
}

// NewReplay creates a new replay instance
func NewReplay(gameID string) *Replay {
	return &Replay{
		GameID: gameID,
		States: make([]GameSnapshot, 0),
	}
}

// RecordState appends a snapshot.
func (r *Replay) RecordState(snapshot GameSnapshot) {
	r.States = append(r.States, snapshot)
}

// Start rewinds to the first state.
func (r *Replay) Start() {
	r.CurrentIndex = 0
}

// Next returns the state at the cursor and moves forward.
// Returns false once the end has been reached.
func (r *Replay) Next() (GameSnapshot, bool) {
	if r.CurrentIndex < len(r.States) {
		state := r.States[r.CurrentIndex]
		r.CurrentIndex++
		return state, true
	}
	return GameSnapshot{}, false
}

// Previous moves back one state and returns it.
func (r *Replay) Previous() (GameSnapshot, bool) {
	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.States[r.CurrentIndex], true
	}
	return GameSnapshot{}, false
}

// Skip moves the cursor by count, clamped to the recorded range.
func (r *Replay) Skip(count int) (GameSnapshot, bool) {
	if len(r.States) == 0 {
		return GameSnapshot{}, false
	}
	newIndex := r.CurrentIndex + count
	if newIndex >= len(r.States) {
		newIndex = len(r.States) - 1
	}
	if newIndex < 0 {
		newIndex = 0
	}
	r.CurrentIndex = newIndex
	return r.States[r.CurrentIndex], true
}

// Size returns the number of recorded states
func (r *Replay) Size() int {
	return len(r.States)
}

// GetStateAt returns the state at a specific index
func (r *Replay) GetStateAt(index int) (GameSnapshot, bool) {
	if index >= 0 && index < len(r.States) {
		return r.States[index], true
	}
	return GameSnapshot{}, false
}
