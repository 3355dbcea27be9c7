package helper

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/observable-collections-go/collections"
	"github.com/AntonStoeckl/observable-collections-go/collections/syncengine"
)

func GivenUniqueID(t testing.TB) uuid.UUID {
	itemID, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return itemID
}

func GivenItems(t testing.TB, numItems int) []string {
	items := make([]string, 0, numItems)
	for i := 0; i < numItems; i++ {
		items = append(items, "item-"+strconv.Itoa(i)+"-"+GivenUniqueID(t).String())
	}

	return items
}

func GivenObservableList(t testing.TB, items ...string) *syncengine.ObservableList[string] {
	list, err := syncengine.NewObservableList(items)
	assert.NoError(t, err, "error in arranging test data")

	return list
}

func GivenObservableSet(t testing.TB, items ...string) *syncengine.ObservableSet[string] {
	set, err := syncengine.NewObservableSet(items)
	assert.NoError(t, err, "error in arranging test data")

	return set
}

func CollectAll[T any](t testing.TB, it collections.Iterator[T]) []T {
	var collected []T
	for it.Next() {
		collected = append(collected, it.Value())
	}

	assert.NoError(t, it.Err(), "error in draining iterator")
	assert.NoError(t, it.Close(), "error in closing iterator")

	return collected
}
