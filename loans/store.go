/*
store.go - Persistence interface for ledger state

PURPOSE:
  The ledger keeps its state in memory and writes the whole of it back after
  every successful mutation. StateStore is the seam between that logic and
  whatever holds the bytes.

CONTRACT:
  - Load returns (nil, nil) when nothing has been saved yet.
  - Save replaces the stored state; last write wins.
  - Return history is append-only: implementations may keep rows they have
    already written and only add the new ones.
  - Dates are stored in ISO form (Date.String) and decimals as strings.

IMPLEMENTATIONS:
  - store/memory:   In-memory, for tests and throwaway sessions
  - store/sqlite:   Default, single file database
  - store/jsonfile: One JSON document on disk
  - store/postgres: Shared PostgreSQL database
*/
package loans

import "context"

type StateStore interface {
	Load(ctx context.Context) (*LedgerState, error)
	Save(ctx context.Context, state LedgerState) error
}
