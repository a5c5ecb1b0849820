package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tba-cache/model"
)

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	events := NewCollection(store, model.EventSchema)
	assert.Equal(t, model.KindEvent, events.Kind())

	district := "2024ne"
	require.NoError(t, events.PutMulti(ctx, []*model.Event{
		{Key: "2024ctwat", Year: 2024, EventShort: "ctwat", DistrictKey: &district},
		{Key: "2024casj", Year: 2024, EventShort: "casj"},
	}))

	got, err := events.Get(ctx, "2024ctwat")
	require.NoError(t, err)
	assert.Equal(t, "ctwat", got.EventShort)
	assert.Equal(t, "2024ne", *got.DistrictKey)
	assert.False(t, got.State().Dirty())

	all, err := events.GetMulti(ctx, []string{"2024casj", "2024zzzz"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "casj", all[0].EventShort)
	assert.Nil(t, all[1])

	keys, err := events.QueryKeys(ctx, "district_key", []string{"2024ne"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024ctwat"}, keys)

	require.NoError(t, events.DeleteMulti(ctx, []string{"2024ctwat"}))
	_, err = events.Get(ctx, "2024ctwat")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollectionEmptyInputs(t *testing.T) {
	ctx := context.Background()
	teams := NewCollection(NewMemoryStore(), model.TeamSchema)

	got, err := teams.GetMulti(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, teams.PutMulti(ctx, nil))
	assert.NoError(t, teams.DeleteMulti(ctx, nil))

	keys, err := teams.QueryKeys(ctx, "key", nil)
	require.NoError(t, err)
	assert.Nil(t, keys)
}

func TestDecodeRejectsCorruptBody(t *testing.T) {
	_, err := Decode(model.TeamSchema, &Document{Kind: model.KindTeam, Key: "frc1", Body: []byte("{")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Team "frc1"`)
}
