package nucleus

import (
	"testing"

	"github.com/TheBitDrifter/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playerState struct{ Score int }

func TestSingleton_FindsTheOneCarrier(t *testing.T) {
	state := FactoryNewComponent[playerState]()
	storage := Factory.NewStorage(table.Factory.NewSchema())

	entities, err := storage.NewEntities(1, state)
	require.NoError(t, err)
	state.GetFromEntity(entities[0]).Score = 12

	value, ok := Singleton(state, storage)

	require.True(t, ok)
	assert.Equal(t, 12, value.Score)
}

func TestSingleton_AbsentComponent(t *testing.T) {
	state := FactoryNewComponent[playerState]()
	storage := Factory.NewStorage(table.Factory.NewSchema())

	_, ok := Singleton(state, storage)

	assert.False(t, ok)
}

func TestSingleton_MultipleCarriersViolateInvariant(t *testing.T) {
	state := FactoryNewComponent[playerState]()
	storage := Factory.NewStorage(table.Factory.NewSchema())

	_, err := storage.NewEntities(2, state)
	require.NoError(t, err)

	_, ok := Singleton(state, storage)

	assert.False(t, ok)
	assert.False(t, storage.Locked(), "a failed singleton lookup must not leave the storage locked")
}

func TestSingletonMut_SharesLookupBehavior(t *testing.T) {
	state := FactoryNewComponent[playerState]()
	storage := Factory.NewStorage(table.Factory.NewSchema())

	_, err := storage.NewEntities(1, state)
	require.NoError(t, err)

	value, ok := SingletonMut(state, storage)
	require.True(t, ok)

	value.Score = 99
	again, ok := Singleton(state, storage)
	require.True(t, ok)
	assert.Equal(t, 99, again.Score)
}
