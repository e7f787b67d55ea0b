package artifact

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/toolmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertions)
var _ core.ArtifactStore = (*InMemoryStore)(nil)

func TestInMemoryStore_SaveGetIsolation(t *testing.T) {
	svc := NewInMemoryStore()
	data := []byte("hello")
	require.NoError(t, svc.Save("s1", "a1", data))

	data[0] = 'H'
	out, err := svc.Get("s1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	out[0] = 'x'
	out2, _ := svc.Get("s1", "a1")
	assert.Equal(t, "hello", string(out2))
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	svc := NewInMemoryStore()
	require.NoError(t, svc.Save("s1", "b", []byte("2")))
	require.NoError(t, svc.Save("s1", "a", []byte("1")))

	ids, err := svc.List("s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, svc.Delete("s1", "a"))
	_, err = svc.Get("s1", "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete("s1", "a"), ErrNotFound)
	assert.ErrorIs(t, svc.Delete("nope", "a"), ErrNotFound)

	ids, _ = svc.List("unknown")
	assert.Empty(t, ids)
	assert.ErrorIs(t, svc.Save("", "a", nil), ErrInvalidID)
}

func TestInMemoryStore_ConcurrentSaves(t *testing.T) {
	svc := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = svc.Save("s1", fmt.Sprintf("a%02d", i), []byte{byte(i)})
		}(i)
	}
	wg.Wait()
	ids, err := svc.List("s1")
	require.NoError(t, err)
	assert.Len(t, ids, 50)
}
