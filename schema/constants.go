package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of list output.
	OutputMode string

	// DatabaseBackend represents the database backend for run history.
	DatabaseBackend string

	// PatternSource records where an exclusion pattern came from.
	PatternSource string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All history backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// All pattern sources, in the order they are merged.
const (
	BuiltinSource    PatternSource = "builtin"
	IgnoreFileSource PatternSource = "ignore-file"
	ToggleSource     PatternSource = "toggle"
	CLISource        PatternSource = "cli"
)

// Archive naming.
const (
	ArchivePrefix          = "devian-"
	ArchiveExt             = ".zip"
	ArchiveTimestampFormat = "20060102-150405"
)

// Root markers and build config names.
const (
	BuildConfigName   = "build.json"
	BuildInputDirName = "input"
	VCSDirName        = ".git"
	SkillsDirName     = "skills"
	DefaultIgnoreFile = ".gitignore"
	DefaultTempDir    = "temp"
	GeneratedDirName  = "Generated"
	DataFileExt       = "ndjson"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid history backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
