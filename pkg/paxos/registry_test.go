package paxos

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryConstructsOnceUnderConcurrency(t *testing.T) {
	r := NewRegistry(TextCodec)

	n := 64
	results := make([]*Comparator, n)
	start := make(chan struct{})
	wg := &sync.WaitGroup{}

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i] = r.Get()
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, uint64(1), r.Constructed())
	for i := range results {
		assert.NotNil(t, results[i])
		assert.Same(t, results[0], results[i], "every caller should get the same comparator")
	}
}

func TestRegistryShutdownResets(t *testing.T) {
	r := NewRegistry(TextCodec)

	first := r.Get()
	assert.Same(t, first, r.Get())
	assert.Equal(t, first.Name(), r.Get().Name())

	r.Shutdown()
	second := r.Get()
	assert.NotSame(t, first, second, "Get after Shutdown should build a new comparator")
	assert.Equal(t, uint64(2), r.Constructed())
	assert.Equal(t, first.Name(), second.Name())

	// repeated shutdowns are harmless.
	r.Shutdown()
	r.Shutdown()
	assert.NotNil(t, r.Get())
	assert.Equal(t, uint64(3), r.Constructed())
}

func TestRegistrySetCodecAppliesAfterShutdown(t *testing.T) {
	r := NewRegistry(TextCodec)
	assert.Equal(t, ComparatorBaseName, r.Get().Name())

	r.SetCodec(BigEndianCodec)
	assert.Equal(t, ComparatorBaseName, r.Get().Name(), "a built comparator keeps its codec")

	r.Shutdown()
	assert.Equal(t, ComparatorBaseName+".u64be", r.Get().Name())
}

func TestGetComparatorProcessWide(t *testing.T) {
	defer Shutdown()

	a := GetComparator()
	b := GetComparator()
	assert.Same(t, a, b)
	assert.Equal(t, ComparatorBaseName, a.Name())

	Shutdown()
	Configure(BigEndianCodec)
	defer Configure(TextCodec)

	c := GetComparator()
	assert.NotSame(t, a, c)
	assert.Equal(t, ComparatorBaseName+".u64be", c.Name())
}

func TestRegistryNilCodecUsesText(t *testing.T) {
	r := NewRegistry(nil)
	cmp := r.Get()
	assert.NotNil(t, cmp)
	assert.Equal(t, ComparatorBaseName, cmp.Name())
	assert.Equal(t, -1, cmp.Compare([]byte("9"), []byte("10")))

	r.SetCodec(nil)
	r.Shutdown()
	assert.Equal(t, ComparatorBaseName, r.Get().Name())

	assert.Equal(t, TextCodec, NewComparator(nil).Codec())
}
