package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tba-cache/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	doc := &Document{
		Kind:  model.KindEventTeam,
		Key:   "2024casj_frc254",
		Body:  []byte(`{"key":"2024casj_frc254"}`),
		Index: map[string][]string{"event": {"2024casj"}, "team": {"frc254"}},
	}
	require.NoError(t, store.PutMulti(ctx, []*Document{doc}))
	assert.Equal(t, 1, store.Len())

	got, err := store.GetMulti(ctx, model.KindEventTeam, []string{"missing", "2024casj_frc254"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0])
	assert.Equal(t, doc, got[1])

	got, err = store.GetMulti(ctx, model.KindTeam, []string{"2024casj_frc254"})
	require.NoError(t, err)
	assert.Nil(t, got[0], "kinds are isolated")

	require.NoError(t, store.DeleteMulti(ctx, model.KindEventTeam, []string{"2024casj_frc254", "missing"}))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreCopiesDocuments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	doc := &Document{Kind: model.KindTeam, Key: "frc1", Body: []byte(`{}`)}
	require.NoError(t, store.PutMulti(ctx, []*Document{doc}))
	doc.Body[0] = '['

	got, err := store.GetMulti(ctx, model.KindTeam, []string{"frc1"})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got[0].Body))

	got[0].Body[0] = '['
	again, err := store.GetMulti(ctx, model.KindTeam, []string{"frc1"})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(again[0].Body))
}

func TestMemoryStoreQueryKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.PutMulti(ctx, []*Document{
		{Kind: model.KindEventTeam, Key: "2024casj_frc254", Index: map[string][]string{"team": {"frc254"}}},
		{Kind: model.KindEventTeam, Key: "2024cada_frc254", Index: map[string][]string{"team": {"frc254"}}},
		{Kind: model.KindEventTeam, Key: "2024casj_frc1678", Index: map[string][]string{"team": {"frc1678"}}},
		{Kind: model.KindDistrictTeam, Key: "2024ca_frc254", Index: map[string][]string{"team": {"frc254"}}},
	}))

	keys, err := store.QueryKeys(ctx, model.KindEventTeam, "team", []string{"frc254"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024cada_frc254", "2024casj_frc254"}, keys)

	keys, err = store.QueryKeys(ctx, model.KindEventTeam, "event", []string{"frc254"})
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore()

	_, err := store.GetMulti(ctx, model.KindTeam, []string{"frc1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.PutMulti(ctx, nil), context.Canceled)
	assert.ErrorIs(t, store.DeleteMulti(ctx, model.KindTeam, nil), context.Canceled)
	_, err = store.QueryKeys(ctx, model.KindTeam, "key", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
