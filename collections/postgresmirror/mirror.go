package postgresmirror

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/observable-collections-go/collections"
	"github.com/AntonStoeckl/observable-collections-go/collections/postgresmirror/internal/adapters"
)

const (
	defaultMirrorTableName       = "mirrored_items"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildDeleteQueryFailed = "failed to build delete query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed during purge"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgInvalidPayload         = "mirrored row payload is not valid json"
	logMsgDecodePayloadFailed    = "failed to decode mirrored row payload"
	logMsgRowIterationFailed     = "row iteration ended with an error"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgLoadCompleted          = "load completed"
	logMsgRefreshCompleted       = "refresh completed"
	logMsgPurgeCompleted         = "purge completed"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "mirror operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrItemCount             = "item_count"
	logAttrDurationMS            = "duration_ms"
	logAttrRowsAffected          = "rows_affected"
	logAttrPosition              = "position"
	colPosition                  = "position"
	colPayload                   = "payload"
	dialectPostgres              = "postgres"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// DecodeFunc turns the JSONB payload of one mirrored row into an item.
type DecodeFunc[T any] func(payload []byte) (T, error)

// Reloader is the slice of an observable collection the mirror needs for
// RefreshInto: an atomic replace of the whole contents that surfaces as a
// single coalesced reset notification. Both syncengine.ObservableList and
// syncengine.ObservableSet satisfy it.
type Reloader[T any] interface {
	Reload(items []T) error
}

// Mirror is a read-side loader that materializes the rows of one Postgres
// table into items, ordered by their insert position. It leverages a
// database adapter and supports customizable logging, metrics, tracing,
// and table configuration.
type Mirror[T any] struct {
	db               adapters.DBAdapter
	tableName        string
	decode           DecodeFunc[T]
	logger           collections.Logger
	contextualLogger collections.ContextualLogger
	metricsCollector collections.MetricsCollector
	tracingCollector collections.TracingCollector
}

type loadResultRow struct {
	position int64
	payload  []byte
}

// NewMirrorFromPGXPool creates a new Mirror using a pgx Pool with optional configuration.
func NewMirrorFromPGXPool[T any](db *pgxpool.Pool, decode DecodeFunc[T], options ...Option) (Mirror[T], error) {
	if db == nil {
		return Mirror[T]{}, collections.ErrNilDatabaseConnection
	}

	return newMirror(adapters.NewPGXAdapter(db), decode, options)
}

// NewMirrorFromPGXPoolAndReplica creates a new Mirror using a primary pgx Pool
// for Purge and a replica pgx Pool for Load, with optional configuration.
func NewMirrorFromPGXPoolAndReplica[T any](
	db *pgxpool.Pool,
	replica *pgxpool.Pool,
	decode DecodeFunc[T],
	options ...Option,
) (Mirror[T], error) {

	if db == nil || replica == nil {
		return Mirror[T]{}, collections.ErrNilDatabaseConnection
	}

	return newMirror(adapters.NewPGXAdapterWithReplica(db, replica), decode, options)
}

// NewMirrorFromSQLDB creates a new Mirror using a sql.DB with optional configuration.
func NewMirrorFromSQLDB[T any](db *sql.DB, decode DecodeFunc[T], options ...Option) (Mirror[T], error) {
	if db == nil {
		return Mirror[T]{}, collections.ErrNilDatabaseConnection
	}

	return newMirror(adapters.NewSQLAdapter(db), decode, options)
}

// NewMirrorFromSQLX creates a new Mirror using a sqlx.DB with optional configuration.
func NewMirrorFromSQLX[T any](db *sqlx.DB, decode DecodeFunc[T], options ...Option) (Mirror[T], error) {
	if db == nil {
		return Mirror[T]{}, collections.ErrNilDatabaseConnection
	}

	return newMirror(adapters.NewSQLXAdapter(db), decode, options)
}

func newMirror[T any](db adapters.DBAdapter, decode DecodeFunc[T], options []Option) (Mirror[T], error) {
	if decode == nil {
		return Mirror[T]{}, collections.ErrNilDecodeFunc
	}

	s, err := applyOptions(options)
	if err != nil {
		return Mirror[T]{}, err
	}

	m := Mirror[T]{
		db:               db,
		tableName:        defaultMirrorTableName,
		decode:           decode,
		logger:           s.logger,
		contextualLogger: s.contextualLogger,
		metricsCollector: s.metricsCollector,
		tracingCollector: s.tracingCollector,
	}

	if s.tableName != "" {
		m.tableName = s.tableName
	}

	return m, nil
}

// Load retrieves all rows of the mirror table ordered by position and
// decodes each payload into an item.
func (m Mirror[T]) Load(ctx context.Context) ([]T, error) {
	tracing, ctx := m.startLoadTracing(ctx)
	metrics := m.startLoadMetrics(ctx)
	opStart := time.Now()

	sqlQuery, buildQueryErr := m.buildSelectQuery()
	if buildQueryErr != nil {
		m.logError(logMsgBuildSelectQueryFailed, buildQueryErr)
		m.logErrorContext(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		tracing.finishError(errorTypeBuildQuery, time.Since(opStart))
		metrics.recordError(errorTypeBuildQuery, time.Since(opStart))

		return nil, buildQueryErr
	}

	rows, duration, queryErr := m.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		tracing.finishError(errorTypeDatabaseQuery, time.Since(opStart))
		metrics.recordError(errorTypeDatabaseQuery, time.Since(opStart))

		return nil, queryErr
	}
	defer m.closeRows(rows)

	items, scanErr := m.processLoadResults(ctx, rows)
	if scanErr != nil {
		errorType := errorTypeForLoadError(scanErr)
		tracing.finishError(errorType, time.Since(opStart))
		metrics.recordError(errorType, time.Since(opStart))

		return nil, scanErr
	}

	m.logOperation(
		logMsgLoadCompleted,
		logAttrItemCount, len(items),
		logAttrDurationMS, m.toMilliseconds(duration))
	m.logOperationContext(
		ctx,
		logMsgLoadCompleted,
		logAttrItemCount, len(items),
		logAttrDurationMS, m.toMilliseconds(duration))

	tracing.finishSuccess(len(items), time.Since(opStart))
	metrics.recordSuccess(len(items), time.Since(opStart))

	return items, nil
}

// RefreshInto loads all items and atomically replaces the contents of
// target with them. Observers of the target collection see exactly one
// coalesced reset notification per refresh. It returns the number of
// items loaded.
func (m Mirror[T]) RefreshInto(ctx context.Context, target Reloader[T]) (int, error) {
	items, loadErr := m.Load(ctx)
	if loadErr != nil {
		return 0, loadErr
	}

	if reloadErr := target.Reload(items); reloadErr != nil {
		return 0, reloadErr
	}

	m.logOperation(logMsgRefreshCompleted, logAttrItemCount, len(items))
	m.logOperationContext(ctx, logMsgRefreshCompleted, logAttrItemCount, len(items))

	return len(items), nil
}

// Purge deletes all rows of the mirror table and returns how many rows
// were affected. It is a maintenance helper for tests and tooling, not
// part of the regular refresh cycle.
func (m Mirror[T]) Purge(ctx context.Context) (int64, error) {
	tracing, ctx := m.startPurgeTracing(ctx)
	metrics := m.startPurgeMetrics(ctx)
	opStart := time.Now()

	sqlQuery, buildQueryErr := m.buildDeleteQuery()
	if buildQueryErr != nil {
		m.logError(logMsgBuildDeleteQueryFailed, buildQueryErr)
		m.logErrorContext(ctx, logMsgBuildDeleteQueryFailed, buildQueryErr)
		tracing.finishError(errorTypeBuildQuery, time.Since(opStart))
		metrics.recordError(errorTypeBuildQuery, time.Since(opStart))

		return 0, buildQueryErr
	}

	rowsAffected, duration, execErr := m.executePurge(ctx, sqlQuery)
	if execErr != nil {
		errorType := errorTypeDatabaseExec
		if errors.Is(execErr, collections.ErrGettingRowsAffectedFailed) {
			errorType = errorTypeRowsAffected
		}

		tracing.finishError(errorType, time.Since(opStart))
		metrics.recordError(errorType, time.Since(opStart))

		return 0, execErr
	}

	m.logOperation(
		logMsgPurgeCompleted,
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, m.toMilliseconds(duration))
	m.logOperationContext(
		ctx,
		logMsgPurgeCompleted,
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, m.toMilliseconds(duration))

	tracing.finishSuccess(rowsAffected, time.Since(opStart))
	metrics.recordSuccess(rowsAffected, time.Since(opStart))

	return rowsAffected, nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (m Mirror[T]) executeQuery(ctx context.Context, sqlQuery sqlQueryString) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := m.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	m.logQueryWithDuration(sqlQuery, operationLoad, duration)
	m.logQueryWithDurationContext(ctx, sqlQuery, operationLoad, duration)

	if queryErr != nil {
		m.logError(logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		m.logErrorContext(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(collections.ErrLoadingMirrorFailed, queryErr)
	}

	return rows, duration, nil
}

// executePurge executes the SQL delete statement and returns rows affected with timing information.
func (m Mirror[T]) executePurge(ctx context.Context, sqlQuery sqlQueryString) (
	rowsAffectedInt64,
	queryDuration,
	error,
) {

	start := time.Now()
	result, execErr := m.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	m.logQueryWithDuration(sqlQuery, operationPurge, duration)
	m.logQueryWithDurationContext(ctx, sqlQuery, operationPurge, duration)

	if execErr != nil {
		m.logError(logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		m.logErrorContext(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)

		return 0, duration, errors.Join(collections.ErrPurgingMirrorFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		m.logError(logMsgRowsAffectedFailed, rowsAffectedErr)
		m.logErrorContext(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)

		return 0, duration, errors.Join(collections.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (m Mirror[T]) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		m.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// processLoadResults processes database rows and decodes them into items.
func (m Mirror[T]) processLoadResults(ctx context.Context, rows adapters.DBRows) ([]T, error) {
	result := loadResultRow{}
	items := make([]T, 0)

	for rows.Next() {
		if scanErr := rows.Scan(&result.position, &result.payload); scanErr != nil {
			m.logError(logMsgScanRowFailed, scanErr)
			m.logErrorContext(ctx, logMsgScanRowFailed, scanErr)

			return nil, errors.Join(collections.ErrScanningDBRowFailed, scanErr)
		}

		if !jsoniter.ConfigFastest.Valid(result.payload) {
			m.logError(logMsgInvalidPayload, collections.ErrInvalidPayloadJSON, logAttrPosition, result.position)
			m.logErrorContext(ctx, logMsgInvalidPayload, collections.ErrInvalidPayloadJSON, logAttrPosition, result.position)

			return nil, collections.ErrInvalidPayloadJSON
		}

		item, decodeErr := m.decode(result.payload)
		if decodeErr != nil {
			m.logError(logMsgDecodePayloadFailed, decodeErr, logAttrPosition, result.position)
			m.logErrorContext(ctx, logMsgDecodePayloadFailed, decodeErr, logAttrPosition, result.position)

			return nil, errors.Join(collections.ErrDecodingPayloadFailed, decodeErr)
		}

		items = append(items, item)
	}

	if iterationErr := rows.Err(); iterationErr != nil {
		m.logError(logMsgRowIterationFailed, iterationErr)
		m.logErrorContext(ctx, logMsgRowIterationFailed, iterationErr)

		return nil, errors.Join(collections.ErrLoadingMirrorFailed, iterationErr)
	}

	return items, nil
}

func (m Mirror[T]) buildSelectQuery() (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(m.tableName).
		Select(colPosition, colPayload).
		Order(goqu.I(colPosition).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(collections.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (m Mirror[T]) buildDeleteQuery() (sqlQueryString, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(m.tableName)

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(collections.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// errorTypeForLoadError maps a load failure to the error type label used
// in spans and metrics.
func errorTypeForLoadError(err error) string {
	switch {
	case errors.Is(err, collections.ErrScanningDBRowFailed):
		return errorTypeScanRow
	case errors.Is(err, collections.ErrInvalidPayloadJSON):
		return errorTypeInvalidPayload
	case errors.Is(err, collections.ErrDecodingPayloadFailed):
		return errorTypeDecodePayload
	default:
		return errorTypeRowIteration
	}
}
