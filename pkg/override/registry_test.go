package override

import (
	"sync"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SetGetRemove(t *testing.T) {
	r := New()
	for i := 0; i < 20; i++ {
		owner, viewer, value := faker.UUIDHyphenated(), faker.Username(), faker.Word()

		_, ok := r.Get(owner, viewer)
		require.False(t, ok, "no override before set")

		r.Set(owner, viewer, value)
		got, ok := r.Get(owner, viewer)
		require.True(t, ok)
		require.Equal(t, value, got)
		require.True(t, r.Has(owner, viewer))

		require.True(t, r.Remove(owner, viewer))
		_, ok = r.Get(owner, viewer)
		require.False(t, ok, "no override after remove")
		require.False(t, r.Remove(owner, viewer), "second remove is a no-op")
		require.True(t, r.Known(owner), "owner sub-map survives removal")
	}
}

func TestRegistry_EmptyValueIsAnOverride(t *testing.T) {
	r := New()
	r.Ensure("zombie")
	assert.False(t, r.Has("zombie", "Steve"))

	r.Set("zombie", "Steve", "")
	v, ok := r.Get("zombie", "Steve")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestRegistry_Ensure(t *testing.T) {
	r := New()
	r.Set("zombie", "Steve", "Bob")
	r.Ensure("zombie")
	assert.True(t, r.Has("zombie", "Steve"), "ensure must not reset an existing owner")
	assert.Equal(t, 1, r.Owners())

	r.Ensure("creeper")
	assert.Equal(t, 2, r.Owners())
	assert.Empty(t, r.Viewers("creeper"))
	assert.False(t, r.Remove("skeleton", "Steve"))
	assert.False(t, r.Known("skeleton"))
}

func TestRegistry_ViewersIsCopy(t *testing.T) {
	r := New()
	r.Set("zombie", "Steve", "Bob")
	r.Set("zombie", "Alex", "Rob")

	viewers := r.Viewers("zombie")
	assert.Equal(t, map[string]string{"Steve": "Bob", "Alex": "Rob"}, viewers)
	viewers["Steve"] = "changed"
	v, _ := r.Get("zombie", "Steve")
	assert.Equal(t, "Bob", v)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Set("owner", "viewer", "x")
				r.Get("owner", "viewer")
				r.Remove("owner", "viewer")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, r.Owners())
}
