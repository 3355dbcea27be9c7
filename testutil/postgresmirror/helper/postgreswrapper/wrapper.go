package postgreswrapper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/observable-collections-go/collections/postgresmirror"
	"github.com/AntonStoeckl/observable-collections-go/testutil/postgresmirror/config"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

const mirrorTableName = "mirrored_items"

const createMirrorTableSQL = `CREATE TABLE IF NOT EXISTS mirrored_items (
	position BIGSERIAL PRIMARY KEY,
	payload JSONB NOT NULL
)`

type seededPayload struct {
	Value string `json:"value"`
}

// DecodeValue decodes the {"value": "..."} payloads the seeding helpers write.
// It fails when the payload does not carry a value field, so decode-failure
// paths can be exercised by seeding a raw payload of a different shape.
func DecodeValue(payload []byte) (string, error) {
	var row struct {
		Value *string `json:"value"`
	}

	if err := jsoniter.ConfigFastest.Unmarshal(payload, &row); err != nil {
		return "", err
	}

	if row.Value == nil {
		return "", errors.New("payload has no value field")
	}

	return *row.Value, nil
}

// EncodeValue builds the payload shape DecodeValue expects.
func EncodeValue(t testing.TB, value string) []byte {
	payload, err := jsoniter.ConfigFastest.Marshal(seededPayload{Value: value})
	assert.NoError(t, err, "error in arranging test data")

	return payload
}

// Wrapper interface to abstract over different adapter types
type Wrapper interface {
	GetMirror() postgresmirror.Mirror[string]
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool   *pgxpool.Pool
	mirror postgresmirror.Mirror[string]
}

func (w *PGXPoolWrapper) GetMirror() postgresmirror.Mirror[string] {
	return w.mirror
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db     *sql.DB
	mirror postgresmirror.Mirror[string]
}

func (w *SQLDBWrapper) GetMirror() postgresmirror.Mirror[string] {
	return w.mirror
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db     *sqlx.DB
	mirror postgresmirror.Mirror[string]
}

func (w *SQLXWrapper) GetMirror() postgresmirror.Mirror[string] {
	return w.mirror
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the
// ADAPTER_TYPE environment variable and makes sure the mirror table exists.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresmirror.Option) Wrapper {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	var wrapper Wrapper

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolSingleConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		mirror, err := postgresmirror.NewMirrorFromPGXPool(connPool, DecodeValue, options...)
		assert.NoError(t, err, "error creating mirror")

		wrapper = &PGXPoolWrapper{pool: connPool, mirror: mirror}

	case typeSQLDB:
		db := config.PostgresSQLDBSingleConfig()

		mirror, err := postgresmirror.NewMirrorFromSQLDB(db, DecodeValue, options...)
		assert.NoError(t, err, "error creating mirror")

		wrapper = &SQLDBWrapper{db: db, mirror: mirror}

	case typeSQLXDB:
		db := config.PostgresSQLXSingleConfig()

		mirror, err := postgresmirror.NewMirrorFromSQLX(db, DecodeValue, options...)
		assert.NoError(t, err, "error creating mirror")

		wrapper = &SQLXWrapper{db: db, mirror: mirror}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}

	EnsureMirrorTable(t, wrapper)

	return wrapper
}

// TryCreateMirrorWithOptions tries to create a mirror with the given options
// and returns the error (for testing error cases).
func TryCreateMirrorWithOptions(t testing.TB, options ...postgresmirror.Option) error {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolSingleConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")
		defer connPool.Close()

		_, err = postgresmirror.NewMirrorFromPGXPool(connPool, DecodeValue, options...)
		return err

	case typeSQLDB:
		db := config.PostgresSQLDBSingleConfig()
		defer func(db *sql.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := postgresmirror.NewMirrorFromSQLDB(db, DecodeValue, options...)
		return err

	case typeSQLXDB:
		db := config.PostgresSQLXSingleConfig()
		defer func(db *sqlx.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := postgresmirror.NewMirrorFromSQLX(db, DecodeValue, options...)
		return err

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}
}

// EnsureMirrorTable creates the mirror table if it does not exist yet.
func EnsureMirrorTable(t testing.TB, wrapper Wrapper) {
	execSQL(t, wrapper, createMirrorTableSQL, "error creating the mirror table in test setup")
}

// CleanUp truncates the mirror table for the given wrapper.
func CleanUp(t testing.TB, wrapper Wrapper) {
	execSQL(t, wrapper, "TRUNCATE TABLE "+mirrorTableName+" RESTART IDENTITY", "error cleaning up the mirror table")
}

// SeedItems inserts one row per item, in the given order, so Load returns
// them in the same order.
func SeedItems(t testing.TB, wrapper Wrapper, items ...string) {
	for _, item := range items {
		SeedRawPayload(t, wrapper, EncodeValue(t, item))
	}
}

// SeedRawPayload inserts one row with the given payload as-is; the payload
// must be valid JSON because the column type is JSONB.
func SeedRawPayload(t testing.TB, wrapper Wrapper, payload []byte) {
	query := "INSERT INTO " + mirrorTableName + " (payload) VALUES ($1)"

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), query, payload)
		assert.NoError(t, err, "error in arranging test data")

	case *SQLDBWrapper:
		_, err := w.db.Exec(query, payload)
		assert.NoError(t, err, "error in arranging test data")

	case *SQLXWrapper:
		_, err := w.db.Exec(query, payload)
		assert.NoError(t, err, "error in arranging test data")

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}

// CountRows returns the number of rows in the mirror table.
func CountRows(t testing.TB, wrapper Wrapper) int {
	var cnt int
	var err error

	query := "SELECT count(*) FROM " + mirrorTableName

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		row := w.pool.QueryRow(context.Background(), query)
		err = row.Scan(&cnt)

	case *SQLDBWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&cnt)

	case *SQLXWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&cnt)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error counting rows in the mirror table")

	return cnt
}

// execSQL executes a statement for the given wrapper and fails the test on error.
func execSQL(t testing.TB, wrapper Wrapper, query string, failureMsg string) {
	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err := w.pool.Exec(context.Background(), query)
		assert.NoError(t, err, failureMsg)

	case *SQLDBWrapper:
		_, err := w.db.Exec(query)
		assert.NoError(t, err, failureMsg)

	case *SQLXWrapper:
		_, err := w.db.Exec(query)
		assert.NoError(t, err, failureMsg)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}
}
