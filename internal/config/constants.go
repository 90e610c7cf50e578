package config

// ManifestFileName is the default type manifest looked up by the CLI.
const ManifestFileName = "objmodel.yaml"

// ManifestFileExtensions are all recognized manifest file extensions
var ManifestFileExtensions = []string{".yaml", ".yml"}

// Well-known guest member names
const (
	ConstructorName = "__construct"
	DestructorName  = "__destruct"
)

// Compiler-generated storage members. They never surface as guest properties.
var (
	RuntimeFieldsSlotNames = []string{"__peach__runtimeFields", "<runtime_fields>"}
	ContextFieldNames      = []string{"_ctx", "<ctx>"}
)

// DisallowedNameChars can not appear in a guest class, field or method name.
const DisallowedNameChars = "`<>.'\"#!"

// MaxOverloads is the number of candidates one overload set may carry.
// Visibility filtering represents the candidates as bits of a uint64.
const MaxOverloads = 64

// Environment variables read by the CLI
const (
	EnvManifest = "OBJMODEL_MANIFEST"
	EnvAddr     = "OBJMODEL_ADDR"
	EnvDatabase = "OBJMODEL_DB"
	EnvNoColor  = "NO_COLOR"
)

// Defaults for the CLI and the inspection server
const (
	DefaultAddr     = "127.0.0.1:7090"
	DefaultDatabase = "objmodel.db"
	SqliteDriver    = "sqlite"
)
