package syncengine_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/observable-collections-go/collections"

	. "github.com/AntonStoeckl/observable-collections-go/testutil/helper"
)

func Test_ObservableSet_Add_ReportsWhetherTheItemWasAbsent(t *testing.T) {
	// arrange
	set := GivenObservableSet(t)
	defer set.Close() //nolint:errcheck

	var countChanges atomic.Int32
	set.SubscribePropertyChanged(func(property string) {
		if property == collections.PropertyCount {
			countChanges.Add(1)
		}
	})

	// act + assert
	added, err := set.Add("a")
	assert.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, int32(1), countChanges.Load())

	// a duplicate changes nothing and raises nothing
	added, err = set.Add("a")
	assert.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, int32(1), countChanges.Load())

	count, err := set.Count()
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func Test_ObservableSet_Remove_ReportsWhetherTheItemWasPresent(t *testing.T) {
	// arrange
	set := GivenObservableSet(t, "a", "b")
	defer set.Close() //nolint:errcheck

	// act + assert
	removed, err := set.Remove("a")
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = set.Remove("a")
	assert.NoError(t, err)
	assert.False(t, removed)

	contains, err := set.Contains("a")
	assert.NoError(t, err)
	assert.False(t, contains)

	contains, err = set.Contains("b")
	assert.NoError(t, err)
	assert.True(t, contains)
}

func Test_ObservableSet_SeedAndReplace_KeepDistinctValues(t *testing.T) {
	// arrange
	set := GivenObservableSet(t, "a", "a", "b")
	defer set.Close() //nolint:errcheck

	count, err := set.Count()
	require.NoError(t, err)
	require.Equal(t, 2, count)

	var resets atomic.Int32
	set.SubscribeReset(func() {
		resets.Add(1)
	})

	// act
	require.NoError(t, set.ReplaceAll([]string{"x", "x", "y", "z"}))

	// assert
	assert.Equal(t, int32(1), resets.Load())

	count, err = set.Count()
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	snapshot, err := set.ToSlice()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y", "z"}, snapshot)
}

func Test_ObservableSet_Reload_CoalescesToExactlyOneReset(t *testing.T) {
	// arrange
	set := GivenObservableSet(t, "a", "b")
	defer set.Close() //nolint:errcheck

	var resets atomic.Int32
	set.SubscribeReset(func() {
		resets.Add(1)
	})

	// act
	require.NoError(t, set.Reload([]string{"x", "y"}))

	// assert
	assert.Equal(t, int32(1), resets.Load())

	snapshot, err := set.ToSlice()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, snapshot)
}

func Test_ObservableSet_Clear_EmptiesAndResets(t *testing.T) {
	// arrange
	set := GivenObservableSet(t, "a", "b")
	defer set.Close() //nolint:errcheck

	var resets atomic.Int32
	set.SubscribeReset(func() {
		resets.Add(1)
	})

	// act
	require.NoError(t, set.Clear())

	// assert
	assert.Equal(t, int32(1), resets.Load())

	count, err := set.Count()
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func Test_ObservableSet_Iterator_YieldsEachElementOnce(t *testing.T) {
	// arrange
	set := GivenObservableSet(t, "a", "b", "c")
	defer set.Close() //nolint:errcheck

	it, err := set.Iterator()
	require.NoError(t, err)

	// act
	collected := CollectAll(t, it)

	// assert
	assert.ElementsMatch(t, []string{"a", "b", "c"}, collected)
}
