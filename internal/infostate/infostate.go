// Package infostate converts the observations in a rl.TimeStep into a Key that can be used to index
// tabular values.
//
// Keys are exact: they hold the bit patterns of the observation values, so two observations yield the
// same Key if and only if they are bit-identical.
package infostate

import (
	"encoding/binary"
	"fmt"
	"github.com/janpfeifer/qlearner/internal/generics"
	"github.com/janpfeifer/qlearner/internal/rl"
	"github.com/pkg/errors"
	"math"
	"strings"
)

// Key is an opaque, comparable representation of an information state.
type Key string

// Values decodes the observation values stored in the key, one slice per player encoded.
// It is meant for debugging and for printing tables.
func (k Key) Values() [][]float32 {
	var values [][]float32
	data := []byte(k)
	for len(data) >= 4 {
		size := int(binary.LittleEndian.Uint32(data))
		data = data[4:]
		if len(data) < 4*size {
			break
		}
		vec := make([]float32, size)
		for ii := range vec {
			vec[ii] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*ii:]))
		}
		data = data[4*size:]
		values = append(values, vec)
	}
	return values
}

// String implements fmt.Stringer.
func (k Key) String() string {
	values := k.Values()
	parts := make([]string, 0, len(values))
	for _, vec := range values {
		parts = append(parts, fmt.Sprintf("%v", vec))
	}
	return strings.Join(parts, "|")
}

// Encoder builds Keys for one player.
type Encoder struct {
	playerID, numPlayers, observationSize int
	centralized                           bool
}

// NewEncoder creates an Encoder for playerID.
//
// If observationSize is > 0, every player's observation must have exactly that size. Otherwise, they
// must simply all have the same, non-zero, size.
//
// If centralized is true, the key is built from the observations of all players (the joint state),
// otherwise only from the player's own observation.
func NewEncoder(playerID, numPlayers, observationSize int, centralized bool) (*Encoder, error) {
	if numPlayers <= 0 {
		return nil, errors.Errorf("numPlayers=%d must be > 0", numPlayers)
	}
	if playerID < 0 || playerID >= numPlayers {
		return nil, errors.Errorf("playerID=%d must be in [0, %d)", playerID, numPlayers)
	}
	if observationSize < 0 {
		return nil, errors.Errorf("observationSize=%d must be >= 0", observationSize)
	}
	return &Encoder{
		playerID:        playerID,
		numPlayers:      numPlayers,
		observationSize: observationSize,
		centralized:     centralized,
	}, nil
}

// Centralized returns whether the encoder uses the joint observations of all players.
func (e *Encoder) Centralized() bool { return e.centralized }

// Validate checks the observations of the TimeStep are consistent with the encoder configuration.
func (e *Encoder) Validate(ts *rl.TimeStep) error {
	if len(ts.InfoStates) != e.numPlayers {
		return errors.Wrapf(rl.ErrInvalidObservation, "got observations for %d players, wanted %d",
			len(ts.InfoStates), e.numPlayers)
	}
	size := e.observationSize
	if size == 0 {
		size = len(ts.InfoStates[0])
		if size == 0 {
			return errors.Wrap(rl.ErrInvalidObservation, "empty observation for player 0")
		}
	}
	for player, obs := range ts.InfoStates {
		if len(obs) != size {
			return errors.Wrapf(rl.ErrInvalidObservation, "observation for player %d has length %d, wanted %d",
				player, len(obs), size)
		}
	}
	return nil
}

// Encode returns the Key of the TimeStep for the encoder's player.
// It returns an error wrapping rl.ErrInvalidObservation if the observations are inconsistent.
func (e *Encoder) Encode(ts *rl.TimeStep) (Key, error) {
	if err := e.Validate(ts); err != nil {
		return "", err
	}
	if !e.centralized {
		return encode(ts.InfoStates[e.playerID : e.playerID+1]), nil
	}
	return encode(ts.InfoStates), nil
}

// ValidateLegalActions checks that the legal actions of the encoder's player are in [0, numActions),
// without repetitions.
func (e *Encoder) ValidateLegalActions(ts *rl.TimeStep, numActions int) ([]int, error) {
	legal, err := ts.Legal(e.playerID)
	if err != nil {
		return nil, err
	}
	seen := make(generics.Set[int], len(legal))
	for _, action := range legal {
		if action < 0 || action >= numActions {
			return nil, errors.Wrapf(rl.ErrInvalidObservation, "legal action %d for player %d out of range [0, %d)",
				action, e.playerID, numActions)
		}
		if seen.Has(action) {
			return nil, errors.Wrapf(rl.ErrInvalidObservation, "legal action %d for player %d repeated in %v",
				action, e.playerID, legal)
		}
		seen.Insert(action)
	}
	return legal, nil
}

// encode each vector prefixed by its length, so concatenations of different splits never collide.
func encode(vectors [][]float32) Key {
	total := 0
	for _, vec := range vectors {
		total += 4 + 4*len(vec)
	}
	buf := make([]byte, 0, total)
	for _, vec := range vectors {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(vec)))
		for _, value := range vec {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(value))
		}
	}
	return Key(buf)
}
