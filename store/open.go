// Package store opens the loans.StateStore named by configuration.
package store

import (
	"context"
	"fmt"
	"io"

	"github.com/warp/library-loans/loans"
	"github.com/warp/library-loans/store/jsonfile"
	"github.com/warp/library-loans/store/memory"
	"github.com/warp/library-loans/store/postgres"
	"github.com/warp/library-loans/store/sqlite"
)

type Kind string

const (
	KindMemory   Kind = "memory"
	KindSQLite   Kind = "sqlite"
	KindJSONFile Kind = "json"
	KindPostgres Kind = "postgres"
)

// Kinds lists every accepted store kind.
var Kinds = []Kind{KindMemory, KindSQLite, KindJSONFile, KindPostgres}

// Handle is an opened store. Close releases the underlying resources.
type Handle interface {
	loans.StateStore
	io.Closer
}

// Open returns the store of the given kind. dsn is a file path for sqlite and
// json, a connection string for postgres, and ignored for memory.
func Open(ctx context.Context, kind Kind, dsn string) (Handle, error) {
	switch kind {
	case KindMemory:
		return nopCloser{memory.New()}, nil
	case KindSQLite:
		s, err := sqlite.New(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindJSONFile:
		return nopCloser{jsonfile.New(dsn)}, nil
	case KindPostgres:
		s, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q (want one of %v)", kind, Kinds)
	}
}

type nopCloser struct {
	loans.StateStore
}

func (nopCloser) Close() error { return nil }
