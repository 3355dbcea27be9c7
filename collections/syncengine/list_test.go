package syncengine_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/observable-collections-go/collections"

	. "github.com/AntonStoeckl/observable-collections-go/testutil/helper"
)

func Test_ObservableList_AddAndGet(t *testing.T) {
	// arrange
	list := GivenObservableList(t)
	defer list.Close() //nolint:errcheck

	// act
	require.NoError(t, list.Add("a"))
	require.NoError(t, list.Add("b"))

	// assert
	count, err := list.Count()
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	second, err := list.Get(1)
	assert.NoError(t, err)
	assert.Equal(t, "b", second)

	_, err = list.Get(-1)
	assert.ErrorIs(t, err, collections.ErrArgumentOutOfRange)

	_, err = list.Get(2)
	assert.ErrorIs(t, err, collections.ErrArgumentOutOfRange)
}

func Test_ObservableList_Add_RaisesCountChanged(t *testing.T) {
	// arrange
	list := GivenObservableList(t)
	defer list.Close() //nolint:errcheck

	var properties []string
	list.SubscribePropertyChanged(func(property string) {
		properties = append(properties, property)
	})

	// act
	require.NoError(t, list.Add("a"))

	// assert
	assert.Equal(t, []string{collections.PropertyCount}, properties)
}

func Test_ObservableList_RemoveAt(t *testing.T) {
	// arrange
	list := GivenObservableList(t, "a", "b", "c")
	defer list.Close() //nolint:errcheck

	// act
	require.NoError(t, list.RemoveAt(1))

	// assert
	snapshot, err := list.ToSlice()
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, snapshot)

	err = list.RemoveAt(5)
	assert.ErrorIs(t, err, collections.ErrArgumentOutOfRange)
}

func Test_ObservableList_ReplaceAll_RaisesExactlyOneReset(t *testing.T) {
	// arrange
	list := GivenObservableList(t, "a", "b")
	defer list.Close() //nolint:errcheck

	var resets atomic.Int32
	list.SubscribeReset(func() {
		resets.Add(1)
	})

	// act
	require.NoError(t, list.ReplaceAll([]string{"x", "y", "z"}))

	// assert
	assert.Equal(t, int32(1), resets.Load())

	snapshot, err := list.ToSlice()
	assert.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, snapshot)
}

func Test_ObservableList_Clear_RaisesExactlyOneReset(t *testing.T) {
	// arrange
	list := GivenObservableList(t, "a", "b")
	defer list.Close() //nolint:errcheck

	var resets atomic.Int32
	list.SubscribeReset(func() {
		resets.Add(1)
	})

	// act
	require.NoError(t, list.Clear())

	// assert
	assert.Equal(t, int32(1), resets.Load())

	count, err := list.Count()
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func Test_ObservableList_Reload_CoalescesToExactlyOneReset(t *testing.T) {
	// arrange: reload clears and bulk-loads, which fires two adapter signals
	list := GivenObservableList(t, "a", "b")
	defer list.Close() //nolint:errcheck

	var resets atomic.Int32
	list.SubscribeReset(func() {
		resets.Add(1)
	})

	// act
	require.NoError(t, list.Reload([]string{"x", "y"}))

	// assert
	assert.Equal(t, int32(1), resets.Load())

	snapshot, err := list.ToSlice()
	assert.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, snapshot)
}

func Test_ObservableList_SnapshotDuringReplace_IsNeverTorn(t *testing.T) {
	// arrange
	size := 64
	allA := make([]string, size)
	allB := make([]string, size)
	for i := range allA {
		allA[i] = "a"
		allB[i] = "b"
	}

	list := GivenObservableList(t, allA...)
	defer list.Close() //nolint:errcheck

	stop := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)

		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}

			next := allA
			if i%2 == 0 {
				next = allB
			}
			assert.NoError(t, list.ReplaceAll(next))
		}
	}()

	// act + assert: every snapshot is homogeneous, never a mix of both states
	for i := 0; i < 200; i++ {
		snapshot, err := list.ToSlice()
		require.NoError(t, err)
		require.Len(t, snapshot, size)

		first := snapshot[0]
		for _, item := range snapshot {
			require.Equal(t, first, item, "snapshot mixes two write generations")
		}
	}

	close(stop)
	<-writerDone
}

func Test_ObservableList_ConcurrentReadersAndWriters(t *testing.T) {
	// arrange
	list := GivenObservableList(t)
	defer list.Close() //nolint:errcheck

	numWriters := 4
	addsPerWriter := 100

	// act
	var wg sync.WaitGroup
	for w := 0; w < numWriters; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := 0; i < addsPerWriter; i++ {
				assert.NoError(t, list.Add("item"))
			}
		}()
	}

	readersDone := make(chan struct{})
	go func() {
		defer close(readersDone)

		for i := 0; i < 200; i++ {
			count, err := list.Count()
			assert.NoError(t, err)
			assert.GreaterOrEqual(t, count, 0)

			_, err = list.Contains("item")
			assert.NoError(t, err)
		}
	}()

	wg.Wait()
	<-readersDone

	// assert
	count, err := list.Count()
	assert.NoError(t, err)
	assert.Equal(t, numWriters*addsPerWriter, count)
}
