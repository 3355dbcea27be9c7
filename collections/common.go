package collections

import (
	"errors"
)

var ErrDisposed = errors.New("instance is already disposed")
var ErrArgumentOutOfRange = errors.New("argument is out of range")
var ErrConcurrentModification = errors.New("collection was modified during enumeration")
var ErrResetNotSupported = errors.New("iterator does not support reset")
var ErrNilAdapter = errors.New("nil adapter supplied")
var ErrNilDispatcher = errors.New("nil dispatcher supplied")
var ErrEmptyCollectionNameSupplied = errors.New("empty collectionName supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrNilDecodeFunc = errors.New("decode function must not be nil")
var ErrEmptyMirrorTableNameSupplied = errors.New("empty mirrorTableName supplied")
var ErrBuildingQueryFailed = errors.New("building the sql query failed")
var ErrLoadingMirrorFailed = errors.New("loading mirrored items failed")
var ErrScanningDBRowFailed = errors.New("scanning the database row failed")
var ErrInvalidPayloadJSON = errors.New("mirrored payload is not valid json")
var ErrDecodingPayloadFailed = errors.New("decoding the mirrored payload failed")
var ErrPurgingMirrorFailed = errors.New("purging mirrored items failed")
var ErrGettingRowsAffectedFailed = errors.New("getting the rows affected count failed")

// PropertyCount is the property name delivered with change notifications
// when the number of elements may have changed.
const PropertyCount = "Count"
