package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/liftlog/internal/models"
)

func testSet(id string, weight float64) models.Set {
	return models.Set{
		ID:         models.RemoteID(id),
		SessionID:  1,
		ExerciseID: 42,
		Weight:     models.Float(weight),
		Reps:       models.Int(5),
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, SessionSets(3), SessionSets(3))
	assert.NotEqual(t, SessionSets(3), SessionSummary(3))
	assert.NotEqual(t, SessionSets(3), SessionSets(4))
	assert.Equal(t, "exercise-sets/42", ExerciseSets(42).String())
}

func TestStore_WriteRead(t *testing.T) {
	s := NewStore()
	key := SessionSets(1)

	_, ok := s.Read(key)
	assert.False(t, ok)

	require.NoError(t, s.Write(key, NewCollection(testSet("1", 50), testSet("2", 60))))

	c, ok := s.Read(key)
	require.True(t, ok)
	assert.Equal(t, []models.SetID{models.RemoteID("1"), models.RemoteID("2")}, c.IDs())
	assert.ElementsMatch(t, []Key{key}, s.Keys())
}

func TestStore_WriteRejectsInvalidCollection(t *testing.T) {
	tests := []struct {
		name string
		c    Collection
	}{
		{name: "duplicate id", c: NewCollection(testSet("1", 50), testSet("1", 60))},
		{name: "missing id", c: NewCollection(models.Set{SessionID: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			key := SessionSets(1)
			require.NoError(t, s.Write(key, NewCollection(testSet("7", 10))))

			err := s.Write(key, tt.c)
			assert.ErrorIs(t, err, ErrInvalidCollection)

			// предыдущее значение не тронуто
			c, _ := s.Read(key)
			assert.Equal(t, []models.SetID{models.RemoteID("7")}, c.IDs())
		})
	}
}

func TestStore_InsertPatchRemove(t *testing.T) {
	s := NewStore()
	key := SessionSets(1)
	placeholder := models.LocalID(1)

	s.Insert(key, models.Set{ID: placeholder, SessionID: 1})
	s.Insert(key, testSet("9", 40))

	c, ok := s.Read(key)
	require.True(t, ok)
	assert.Equal(t, []models.SetID{models.RemoteID("9"), placeholder}, c.IDs())

	assert.True(t, s.Patch(key, placeholder, models.SetUpdate{Reps: models.Int(12)}))
	c, _ = s.Read(key)
	got, idx, ok := c.Find(placeholder)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 12, *got.Reps)

	assert.False(t, s.Patch(key, models.RemoteID("missing"), models.SetUpdate{Reps: models.Int(1)}))
	assert.False(t, s.Patch(SessionSets(2), placeholder, models.SetUpdate{Reps: models.Int(1)}))

	assert.True(t, s.Remove(key, placeholder))
	assert.False(t, s.Remove(key, placeholder))
	c, _ = s.Read(key)
	assert.Equal(t, []models.SetID{models.RemoteID("9")}, c.IDs())
}

func TestStore_Reconcile(t *testing.T) {
	placeholder := models.LocalID(1)
	confirmed := testSet("987", 100)

	t.Run("replaces placeholder in place", func(t *testing.T) {
		s := NewStore()
		key := SessionSets(1)
		require.NoError(t, s.Write(key, NewCollection(testSet("5", 1), models.Set{ID: placeholder}, testSet("6", 2))))

		assert.True(t, s.Reconcile(key, placeholder, confirmed))
		c, _ := s.Read(key)
		assert.Equal(t, []models.SetID{models.RemoteID("5"), models.RemoteID("987"), models.RemoteID("6")}, c.IDs())
	})

	t.Run("missing placeholder is not resurrected", func(t *testing.T) {
		s := NewStore()
		key := SessionSets(1)
		require.NoError(t, s.Write(key, NewCollection(testSet("5", 1))))

		assert.False(t, s.Reconcile(key, placeholder, confirmed))
		c, _ := s.Read(key)
		assert.False(t, c.Contains(confirmed.ID))
	})

	t.Run("authoritative id already present", func(t *testing.T) {
		s := NewStore()
		key := SessionSets(1)
		require.NoError(t, s.Write(key, NewCollection(models.Set{ID: placeholder}, testSet("987", 90))))

		assert.True(t, s.Reconcile(key, placeholder, confirmed))
		c, _ := s.Read(key)
		assert.Equal(t, []models.SetID{models.RemoteID("987")}, c.IDs())
		got, _, _ := c.Find(confirmed.ID)
		assert.Equal(t, 100.0, *got.Weight)
	})
}

func TestStore_Generation(t *testing.T) {
	s := NewStore()
	key := SessionSets(1)

	assert.Equal(t, uint64(0), s.Generation(key))
	assert.Equal(t, uint64(1), s.Advance(key))
	assert.Equal(t, uint64(1), s.Generation(key))
	assert.Equal(t, uint64(0), s.Generation(SessionSets(2)))

	require.NoError(t, s.Write(key, NewCollection()))
	s.Clear()
	_, ok := s.Read(key)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), s.Generation(key))
}

func TestStore_CaptureRestore(t *testing.T) {
	s := NewStore()
	key := SessionSets(1)
	before := NewCollection(testSet("1", 50))
	require.NoError(t, s.Write(key, before))

	snap := s.Capture(key)
	assert.True(t, snap.Present())
	assert.Equal(t, key, snap.Key())

	s.Patch(key, models.RemoteID("1"), models.SetUpdate{Weight: models.Float(70)})
	s.Insert(key, models.Set{ID: models.LocalID(3)})

	s.Restore(snap)
	c, _ := s.Read(key)
	assert.True(t, before.Equal(c))

	absent := s.Capture(SessionSets(9))
	assert.False(t, absent.Present())
	s.Insert(SessionSets(9), models.Set{ID: models.LocalID(4)})
	s.Restore(absent)
	_, ok := s.Read(SessionSets(9))
	assert.False(t, ok)
}

func TestCollection_IsImmutable(t *testing.T) {
	c := NewCollection(testSet("1", 50))
	sets := c.Sets()
	*sets[0].Weight = 999

	got, _, _ := c.Find(models.RemoteID("1"))
	assert.Equal(t, 50.0, *got.Weight)

	next, ok := c.Patch(models.RemoteID("1"), models.SetUpdate{Weight: models.Float(60)})
	require.True(t, ok)
	got, _, _ = c.Find(models.RemoteID("1"))
	assert.Equal(t, 50.0, *got.Weight)
	got, _, _ = next.Find(models.RemoteID("1"))
	assert.Equal(t, 60.0, *got.Weight)
}

func TestCollection_PrependKeepsIDsUnique(t *testing.T) {
	c := NewCollection(testSet("1", 50), testSet("2", 60))
	c = c.Prepend(testSet("2", 65))

	assert.Equal(t, []models.SetID{models.RemoteID("1"), models.RemoteID("2")}, c.IDs())
	require.NoError(t, c.Validate())
}

func TestPlaceholders(t *testing.T) {
	var p Placeholders

	first := p.Next()
	second := p.Next()

	assert.True(t, first.IsPlaceholder())
	assert.Equal(t, "temp-1", first.String())
	assert.Equal(t, "temp-2", second.String())
	assert.NotEqual(t, models.RemoteID("1"), first)
}
