package tests

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/data/account"
	"github.com/code-payments/code-vault/pkg/database/query"
)

func RunTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testRoundTrip,
		testUpdate,
		testAtomicSave,
		testGetAllByOwner,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s account.Store) {
	ctx := context.Background()

	address, owner := newKey(t), newKey(t)

	actual, err := s.Get(ctx, base58.Encode(address))
	assert.Equal(t, account.ErrAccountNotFound, err)
	assert.Nil(t, actual)

	expected := account.NewRecord(address, owner, 1234, []byte{1, 2, 3})
	expected.Slot = 7
	require.NoError(t, s.Save(ctx, expected))
	assert.EqualValues(t, 1, expected.Id)
	assert.False(t, expected.LastUpdatedAt.IsZero())

	actual, err = s.Get(ctx, base58.Encode(address))
	require.NoError(t, err)
	assertEquivalentRecords(t, expected, actual)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Mutating the returned record does not affect the store
	actual.Data[0] = 9
	actual, err = s.Get(ctx, base58.Encode(address))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, actual.Data)
}

func testUpdate(t *testing.T, s account.Store) {
	ctx := context.Background()

	address, owner, other := newKey(t), newKey(t), newKey(t)

	record := account.NewRecord(address, owner, 10, nil)
	require.NoError(t, s.Save(ctx, record))
	id := record.Id

	record.Lamports = 0
	record.Owner = base58.Encode(other)
	record.Data = []byte{4}
	record.Slot = 3
	require.NoError(t, s.Save(ctx, record))
	assert.Equal(t, id, record.Id)

	actual, err := s.Get(ctx, base58.Encode(address))
	require.NoError(t, err)
	assertEquivalentRecords(t, record, actual)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func testAtomicSave(t *testing.T, s account.Store) {
	ctx := context.Background()

	valid := account.NewRecord(newKey(t), newKey(t), 1, nil)
	invalid := account.NewRecord(newKey(t), newKey(t), 1, nil)
	invalid.Owner = "invalid"

	assert.Error(t, s.Save(ctx, valid, invalid))

	_, err := s.Get(ctx, valid.Address)
	assert.Equal(t, account.ErrAccountNotFound, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	a := account.NewRecord(newKey(t), newKey(t), 1, nil)
	b := account.NewRecord(newKey(t), newKey(t), 2, nil)
	require.NoError(t, s.Save(ctx, a, b))

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func testGetAllByOwner(t *testing.T, s account.Store) {
	ctx := context.Background()

	owner, other := newKey(t), newKey(t)

	_, err := s.GetAllByOwner(ctx, base58.Encode(owner), query.EmptyCursor, 10, query.Ascending)
	assert.Equal(t, account.ErrAccountNotFound, err)

	var records []*account.Record
	for i := 0; i < 5; i++ {
		records = append(records, account.NewRecord(newKey(t), owner, uint64(i), nil))
	}
	records = append(records, account.NewRecord(newKey(t), other, 100, nil))
	require.NoError(t, s.Save(ctx, records...))

	actual, err := s.GetAllByOwner(ctx, base58.Encode(owner), query.EmptyCursor, 10, query.Ascending)
	require.NoError(t, err)
	require.Len(t, actual, 5)
	for i, record := range actual {
		assertEquivalentRecords(t, records[i], record)
	}

	actual, err = s.GetAllByOwner(ctx, base58.Encode(owner), query.EmptyCursor, 2, query.Ascending)
	require.NoError(t, err)
	require.Len(t, actual, 2)
	assert.Equal(t, records[0].Address, actual[0].Address)
	assert.Equal(t, records[1].Address, actual[1].Address)

	actual, err = s.GetAllByOwner(ctx, base58.Encode(owner), query.ToCursor(actual[1].Id), 10, query.Ascending)
	require.NoError(t, err)
	require.Len(t, actual, 3)
	assert.Equal(t, records[2].Address, actual[0].Address)

	actual, err = s.GetAllByOwner(ctx, base58.Encode(owner), query.EmptyCursor, 2, query.Descending)
	require.NoError(t, err)
	require.Len(t, actual, 2)
	assert.Equal(t, records[4].Address, actual[0].Address)
	assert.Equal(t, records[3].Address, actual[1].Address)

	actual, err = s.GetAllByOwner(ctx, base58.Encode(owner), query.ToCursor(records[3].Id), 10, query.Descending)
	require.NoError(t, err)
	require.Len(t, actual, 3)
	assert.Equal(t, records[2].Address, actual[0].Address)
	assert.Equal(t, records[0].Address, actual[2].Address)

	actual, err = s.GetAllByOwner(ctx, base58.Encode(other), query.EmptyCursor, 10, query.Ascending)
	require.NoError(t, err)
	require.Len(t, actual, 1)
	assert.EqualValues(t, 100, actual[0].Lamports)

	_, err = s.GetAllByOwner(ctx, base58.Encode(owner), query.ToCursor(records[4].Id), 10, query.Ascending)
	assert.Equal(t, account.ErrAccountNotFound, err)
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *account.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, obj1.Data, obj2.Data)
	assert.Equal(t, obj1.Executable, obj2.Executable)
	assert.Equal(t, obj1.Slot, obj2.Slot)
	assert.Equal(t, obj1.LastUpdatedAt.Unix(), obj2.LastUpdatedAt.Unix())
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
