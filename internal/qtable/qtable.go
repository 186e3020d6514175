// Package qtable implements a sparse table of action values indexed by information state, and the
// TD(0) update rule used to learn them.
//
// Rows (one value per action) are created zero-filled on the first get-or-insert access to a state.
// They are never deleted.
package qtable

import (
	"fmt"
	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/qlearner/internal/infostate"
)

// Table of action values for each information state seen.
type Table struct {
	numActions int
	rows       map[infostate.Key][]float32
}

// New creates an empty Table for numActions actions, which must be > 0.
func New(numActions int) *Table {
	if numActions <= 0 {
		exceptions.Panicf("qtable.New(numActions=%d): numActions must be > 0", numActions)
	}
	return &Table{
		numActions: numActions,
		rows:       make(map[infostate.Key][]float32),
	}
}

// NumActions returns the number of actions per state.
func (t *Table) NumActions() int { return t.numActions }

// Len returns the number of states in the table.
func (t *Table) Len() int { return len(t.rows) }

// String implements fmt.Stringer.
func (t *Table) String() string {
	return fmt.Sprintf("qtable(%d states, %d actions)", len(t.rows), t.numActions)
}

func (t *Table) checkAction(action int) {
	if action < 0 || action >= t.numActions {
		exceptions.Panicf("qtable: action %d out of range [0, %d)", action, t.numActions)
	}
}

// row returns the values of the given state, creating it zero-filled if needed.
func (t *Table) row(key infostate.Key) []float32 {
	values, found := t.rows[key]
	if !found {
		values = make([]float32, t.numActions)
		t.rows[key] = values
	}
	return values
}

// GetOrInsert returns the value of the action at the given state. If the state is not yet in the table,
// it is inserted with all values set to 0.
func (t *Table) GetOrInsert(key infostate.Key, action int) float32 {
	t.checkAction(action)
	return t.row(key)[action]
}

// Value implements policy.ValueReader, and it's an alias to GetOrInsert.
func (t *Table) Value(key infostate.Key, action int) float32 {
	return t.GetOrInsert(key, action)
}

// Peek returns the value of the action at the given state, and whether the state is in the table.
// It never changes the table: missing values are returned as 0.
func (t *Table) Peek(key infostate.Key, action int) (value float32, found bool) {
	t.checkAction(action)
	values, found := t.rows[key]
	if !found {
		return 0, false
	}
	return values[action], true
}

// Set the value of an action at the given state. The value must be finite.
func (t *Table) Set(key infostate.Key, action int, value float32) {
	t.checkAction(action)
	if math32.IsNaN(value) || math32.IsInf(value, 0) {
		exceptions.Panicf("qtable: non-finite value %g for action %d at state %s", value, action, key)
	}
	t.row(key)[action] = value
}

// MaxLegal returns the largest value among the legal actions at the given state, inserting the state
// if needed. It returns 0 if there are no legal actions.
func (t *Table) MaxLegal(key infostate.Key, legal []int) float32 {
	if len(legal) == 0 {
		return 0
	}
	maxValue := math32.Inf(-1)
	for _, action := range legal {
		maxValue = math32.Max(maxValue, t.GetOrInsert(key, action))
	}
	return maxValue
}

// TDUpdate moves the value of (key, action) towards target by a fraction stepSize of the difference:
//
//	new = old + stepSize * (target - old)
//
// It returns the new value and the loss (new - target).
func (t *Table) TDUpdate(key infostate.Key, action int, target, stepSize float32) (newValue, loss float32) {
	old := t.GetOrInsert(key, action)
	newValue = old + stepSize*(target-old)
	t.Set(key, action, newValue)
	loss = newValue - target
	return
}

// ReadOnly returns a view of the table that never inserts new states: missing values read as 0.
func (t *Table) ReadOnly() ReadOnlyView {
	return ReadOnlyView{t}
}

// ReadOnlyView implements policy.ValueReader without changing the table.
type ReadOnlyView struct {
	t *Table
}

// Value implements policy.ValueReader.
func (v ReadOnlyView) Value(key infostate.Key, action int) float32 {
	value, _ := v.t.Peek(key, action)
	return value
}

// Snapshot returns a deep copy of the table contents.
func (t *Table) Snapshot() map[infostate.Key][]float32 {
	snapshot := make(map[infostate.Key][]float32, len(t.rows))
	for key, values := range t.rows {
		snapshot[key] = append([]float32(nil), values...)
	}
	return snapshot
}
