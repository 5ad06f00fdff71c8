// Package schema holds the data model shared by the index, its stores and the query layer.
package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the storage backend for the revision index.
	DatabaseBackend string

	// Directionality tells whether higher or lower values of a metric are better.
	Directionality string

	// ValueType is the kind of value a metric produces.
	ValueType string

	// EntryKind tags a result entry as a file leaf or an aggregated directory.
	EntryKind string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	CSVOut  OutputMode = "csv"
	JSONOut OutputMode = "json"
)

// All index backends supported.
const (
	FileBackend       DatabaseBackend = "file" // default
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// Metric directionality.
const (
	AimHigh       Directionality = "aim-high"
	AimLow        Directionality = "aim-low"
	Informational Directionality = "informational"
)

// Metric value types.
const (
	NumericValue ValueType = "numeric"
	StringValue  ValueType = "string"
)

// Result entry kinds.
const (
	FileKind      EntryKind = "file"
	DirectoryKind EntryKind = "directory"
)

// ErrorKey is the total key used to record a per-file collector failure.
const ErrorKey = "error"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	CSVOut:  {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid index backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	FileBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}
