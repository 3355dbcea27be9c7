package syncengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/observable-collections-go/collections"
	"github.com/AntonStoeckl/observable-collections-go/collections/syncengine"
	"github.com/AntonStoeckl/observable-collections-go/testutil/adapterspy"
	"github.com/AntonStoeckl/observable-collections-go/testutil/observability/testdoubles"
)

func Test_Options_AreValidatedAtConstruction(t *testing.T) {
	tests := []struct {
		name        string
		option      syncengine.Option
		expectedErr error
	}{
		{
			name:        "nil_dispatcher_is_rejected",
			option:      syncengine.WithDispatcher(nil),
			expectedErr: collections.ErrNilDispatcher,
		},
		{
			name:        "empty_collection_name_is_rejected",
			option:      syncengine.WithCollectionName(""),
			expectedErr: collections.ErrEmptyCollectionNameSupplied,
		},
		{
			name:   "valid_collection_name_is_accepted",
			option: syncengine.WithCollectionName("inventory"),
		},
		{
			name:   "nil_logger_is_accepted_and_disables_logging",
			option: syncengine.WithLogger(nil),
		},
		{
			name:   "nil_metrics_collector_is_accepted_and_disables_metrics",
			option: syncengine.WithMetrics(nil),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			collection, err := syncengine.NewCollectionFromSlice([]string{"a"}, tc.option)

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, collection)
				return
			}

			require.NoError(t, err)
			assert.NoError(t, collection.Close())
		})
	}
}

func Test_WithCollectionName_AppearsInLogAttributes(t *testing.T) {
	// arrange
	adapter := adapterspy.NewAdapterSpy("a")
	loggerSpy := testdoubles.NewLoggerSpy(true)

	collection, err := syncengine.NewCollection[string](
		adapter,
		syncengine.WithCollectionName("inventory"),
		syncengine.WithLogger(loggerSpy),
	)
	require.NoError(t, err)
	defer collection.Close() //nolint:errcheck

	// act
	adapter.FireMustReset()

	// assert
	records := loggerSpy.GetDebugRecords()
	require.NotEmpty(t, records)
	assert.Contains(t, records[0].Args, "collection_name")
	assert.Contains(t, records[0].Args, "inventory")
	assert.Contains(t, records[0].Args, "collection_id")
}
