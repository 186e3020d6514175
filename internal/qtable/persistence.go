package qtable

import (
	"encoding/gob"
	"github.com/chewxy/math32"
	"github.com/janpfeifer/qlearner/internal/generics"
	"github.com/janpfeifer/qlearner/internal/infostate"
	"github.com/pkg/errors"
	"io"
	"k8s.io/klog/v2"
	"os"
)

// header is the first record of a saved table.
type header struct {
	NumActions, NumStates int
}

// row is one saved state.
type row struct {
	Key    string
	Values []float32
}

// Save the table to w, with the states in sorted order, so the output is deterministic.
func (t *Table) Save(w io.Writer) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(header{NumActions: t.numActions, NumStates: len(t.rows)}); err != nil {
		return errors.Wrap(err, "failed to encode qtable header")
	}
	for key := range generics.SortedKeys(t.rows) {
		if err := enc.Encode(row{Key: string(key), Values: t.rows[key]}); err != nil {
			return errors.Wrapf(err, "failed to encode qtable state %s", key)
		}
	}
	return nil
}

// Load a table saved with Save.
func Load(r io.Reader) (*Table, error) {
	dec := gob.NewDecoder(r)
	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, errors.Wrap(err, "failed to decode qtable header")
	}
	if h.NumActions <= 0 || h.NumStates < 0 {
		return nil, errors.Errorf("invalid qtable header %+v", h)
	}
	t := New(h.NumActions)
	for ii := range h.NumStates {
		var rec row
		if err := dec.Decode(&rec); err != nil {
			return nil, errors.Wrapf(err, "failed to decode qtable state #%d of %d", ii, h.NumStates)
		}
		if len(rec.Values) != h.NumActions {
			return nil, errors.Errorf("qtable state #%d has %d values, wanted %d", ii, len(rec.Values), h.NumActions)
		}
		for action, value := range rec.Values {
			if math32.IsNaN(value) || math32.IsInf(value, 0) {
				return nil, errors.Errorf("qtable state #%d has non-finite value %g for action %d", ii, value, action)
			}
		}
		for action, value := range rec.Values {
			t.Set(infostate.Key(rec.Key), action, value)
		}
	}
	return t, nil
}

// SaveToFile saves the table to fileName. If the file already exists, it is first renamed to fileName+"~".
func (t *Table) SaveToFile(fileName string) error {
	if _, err := os.Stat(fileName); err == nil {
		err = os.Rename(fileName, fileName+"~")
		if err != nil {
			return errors.Wrapf(err, "failed to rename %s to %s", fileName, fileName+"~")
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", fileName)
	}
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", fileName)
	}
	if err = t.Save(f); err != nil {
		_ = f.Close()
		return errors.WithMessagef(err, "saving to %s", fileName)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", fileName)
	}
	klog.V(1).Infof("Saved %s to %s", t, fileName)
	return nil
}

// LoadFromFile loads a table saved with SaveToFile.
func LoadFromFile(fileName string) (*Table, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", fileName)
	}
	defer func() { _ = f.Close() }()
	t, err := Load(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "loading %s", fileName)
	}
	klog.V(1).Infof("Loaded %s from %s", t, fileName)
	return t, nil
}
