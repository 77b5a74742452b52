package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/library-loans/loans"
)

func TestMemory_LoadBeforeSave(t *testing.T) {
	state, err := New().Load(context.Background())

	require.NoError(t, err)
	assert.Nil(t, state)

}

func TestMemory_SaveIsolatesCaller(t *testing.T) {
	ctx := context.Background()
	m := New()
	state := loans.LedgerState{Active: []loans.Loan{{ID: 1, Title: "A"}}, OpCounter: 1}

	require.NoError(t, m.Save(ctx, state))
	state.Active[0].Title = "changed"

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Active[0].Title)
	assert.Equal(t, 1, m.Saves())

	got.Active[0].Title = "changed again"
	again, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Active[0].Title)
}

func TestMemory_NewWithState(t *testing.T) {
	m := NewWithState(loans.LedgerState{OpCounter: 5})

	got, err := m.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(5), got.OpCounter)
	assert.Equal(t, 0, m.Saves())
}
