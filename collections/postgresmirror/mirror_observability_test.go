package postgresmirror_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/observable-collections-go/collections"
	"github.com/AntonStoeckl/observable-collections-go/collections/postgresmirror"
	"github.com/AntonStoeckl/observable-collections-go/testutil/helper"
	"github.com/AntonStoeckl/observable-collections-go/testutil/observability/testdoubles"
	"github.com/AntonStoeckl/observable-collections-go/testutil/postgresmirror/helper/postgreswrapper"
)

func Test_Mirror_Load_RecordsMetrics_WhenMetricsCollectorConfigured(t *testing.T) {
	// setup
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, postgresmirror.WithMetrics(metricsSpy))
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)
	postgreswrapper.SeedItems(t, wrapper, helper.GivenItems(t, 2)...)

	// act
	_, err := wrapper.GetMirror().Load(context.Background())

	// assert
	assert.NoError(t, err)
	assert.True(t,
		metricsSpy.HasDurationRecordForMetric("mirror_load_duration_seconds").
			WithOperation("load").
			WithStatus("success").
			Assert(),
		"should record load duration with success status")
	assert.True(t,
		metricsSpy.HasValueRecordForMetric("mirror_items_loaded_total").
			WithOperation("load").
			WithStatus("success").
			Assert(),
		"should record the number of items loaded")
}

func Test_Mirror_Load_CreatesSpan_WhenTracingCollectorConfigured(t *testing.T) {
	// setup
	tracingSpy := testdoubles.NewTracingCollectorSpy(true)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, postgresmirror.WithTracing(tracingSpy))
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)
	postgreswrapper.SeedItems(t, wrapper, helper.GivenItems(t, 3)...)

	// act
	_, err := wrapper.GetMirror().Load(context.Background())

	// assert
	assert.NoError(t, err)
	assert.True(t,
		tracingSpy.HasSpanRecordForName("mirror.load").
			WithStatus("success").
			WithStartAttribute("operation", "load").
			WithStartAttribute("table", "mirrored_items").
			WithEndAttribute("item_count", "3").
			Assert(),
		"should record a finished load span")
}

func Test_Mirror_Load_LogsQueryAndCompletion_WhenLoggerConfigured(t *testing.T) {
	// setup
	loggerSpy := testdoubles.NewLoggerSpy(true)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, postgresmirror.WithLogger(loggerSpy))
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)
	postgreswrapper.SeedItems(t, wrapper, helper.GivenItems(t, 2)...)

	// act
	_, err := wrapper.GetMirror().Load(context.Background())

	// assert
	assert.NoError(t, err)
	assert.True(t, loggerSpy.HasDebugLog("executed sql for: load"), "should log the executed query at debug level")

	foundCompletion := false
	for _, record := range loggerSpy.GetInfoRecords() {
		if record.Message == "mirror operation: load completed" {
			foundCompletion = true
		}
	}
	assert.True(t, foundCompletion, "should log the completed load at info level")
}

func Test_Mirror_Load_LogsWithContext_WhenContextualLoggerConfigured(t *testing.T) {
	// setup
	contextualLoggerSpy := testdoubles.NewContextualLoggerSpy(true)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, postgresmirror.WithContextualLogger(contextualLoggerSpy))
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)

	// act
	_, err := wrapper.GetMirror().Load(context.Background())

	// assert
	assert.NoError(t, err)
	assert.True(t, contextualLoggerSpy.HasDebugLog("executed sql for: load"))
	assert.True(t, contextualLoggerSpy.HasInfoLog("mirror operation: load completed"))
}

func Test_Mirror_Load_WithFailingQuery_RecordsErrorObservability(t *testing.T) {
	// setup
	loggerSpy := testdoubles.NewLoggerSpy(true)
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	tracingSpy := testdoubles.NewTracingCollectorSpy(true)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(
		t,
		postgresmirror.WithTableName("this_table_does_not_exist"),
		postgresmirror.WithLogger(loggerSpy),
		postgresmirror.WithMetrics(metricsSpy),
		postgresmirror.WithTracing(tracingSpy),
	)
	defer wrapper.Close()

	// act
	_, err := wrapper.GetMirror().Load(context.Background())

	// assert
	assert.ErrorIs(t, err, collections.ErrLoadingMirrorFailed)
	assert.True(t, loggerSpy.HasErrorLog("database query execution failed"))
	assert.True(t,
		metricsSpy.HasCounterRecordForMetric("mirror_database_errors_total").
			WithOperation("load").
			WithStatus("error").
			WithLabel("error_type", "database_query").
			Assert(),
		"should count the database error")
	assert.True(t,
		metricsSpy.HasDurationRecordForMetric("mirror_load_duration_seconds").
			WithOperation("load").
			WithStatus("error").
			Assert(),
		"should record load duration with error status")
	assert.True(t,
		tracingSpy.HasSpanRecordForName("mirror.load").
			WithStatus("error").
			WithEndAttribute("error_type", "database_query").
			Assert(),
		"should record a failed load span")
}

func Test_Mirror_Load_WithUndecodablePayload_RecordsDecodeErrorType(t *testing.T) {
	// setup
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, postgresmirror.WithMetrics(metricsSpy))
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)
	postgreswrapper.SeedRawPayload(t, wrapper, []byte(`{"other": 1}`))

	// act
	_, err := wrapper.GetMirror().Load(context.Background())

	// assert
	assert.ErrorIs(t, err, collections.ErrDecodingPayloadFailed)
	assert.True(t,
		metricsSpy.HasCounterRecordForMetric("mirror_database_errors_total").
			WithOperation("load").
			WithLabel("error_type", "decode_payload").
			Assert(),
		"should count the decode error with its error type")
}

func Test_Mirror_Purge_RecordsObservability_WhenConfigured(t *testing.T) {
	// setup
	loggerSpy := testdoubles.NewLoggerSpy(true)
	metricsSpy := testdoubles.NewMetricsCollectorSpy(true)
	tracingSpy := testdoubles.NewTracingCollectorSpy(true)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(
		t,
		postgresmirror.WithLogger(loggerSpy),
		postgresmirror.WithMetrics(metricsSpy),
		postgresmirror.WithTracing(tracingSpy),
	)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)
	postgreswrapper.SeedItems(t, wrapper, helper.GivenItems(t, 2)...)

	// act
	rowsAffected, err := wrapper.GetMirror().Purge(context.Background())

	// assert
	assert.NoError(t, err)
	assert.Equal(t, int64(2), rowsAffected)
	assert.True(t, loggerSpy.HasDebugLog("executed sql for: purge"))
	assert.True(t,
		metricsSpy.HasDurationRecordForMetric("mirror_purge_duration_seconds").
			WithOperation("purge").
			WithStatus("success").
			Assert(),
		"should record purge duration with success status")
	assert.True(t,
		metricsSpy.HasValueRecordForMetric("mirror_rows_purged_total").
			WithOperation("purge").
			WithStatus("success").
			Assert(),
		"should record the number of rows purged")
	assert.True(t,
		tracingSpy.HasSpanRecordForName("mirror.purge").
			WithStatus("success").
			WithEndAttribute("rows_affected", "2").
			Assert(),
		"should record a finished purge span")
}

func Test_Mirror_Observability_IsOptional(t *testing.T) {
	// setup: no observability options at all
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	postgreswrapper.CleanUp(t, wrapper)
	postgreswrapper.SeedItems(t, wrapper, helper.GivenItems(t, 1)...)

	// act + assert: operations work without any collector configured
	items, err := wrapper.GetMirror().Load(context.Background())
	assert.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = wrapper.GetMirror().Purge(context.Background())
	assert.NoError(t, err)
}
