/*
Package jsonfile keeps the ledger state in one JSON document on disk.

The document mirrors the browser variant's local storage: one key per piece
of state.

    {
      "active_loans":   [...],
      "return_history": [...],
      "session_fines":  "1.5",
      "op_counter":     4
    }

Writes go to a temporary file in the same directory which is then renamed
over the target, so a crash mid-save leaves the previous document intact.
*/
package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/warp/library-loans/loans"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store backed by path. The file is created on first Save.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load(ctx context.Context) (*loans.LedgerState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var state loans.LedgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrapf(err, "decode %s", s.path)
	}
	return &state, nil
}

func (s *Store) Save(ctx context.Context, state loans.LedgerState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode ledger state")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrapf(err, "replace %s", s.path)
	}
	return nil
}
