package pgtype

// builtinScalarCopy maps a builtin scalar's pg_type name to its copy
// flag: fixed-size value types are copy, string/byte/JSON-backed types
// are not.
var builtinScalarCopy = map[string]bool{
	"bool":        true,
	"int2":        true,
	"int4":        true,
	"int8":        true,
	"float4":      true,
	"float8":      true,
	"numeric":     false,
	"uuid":        true,
	"date":        true,
	"time":        true,
	"timetz":      true,
	"timestamp":   true,
	"timestamptz": true,
	"interval":    true,
	"text":        false,
	"varchar":     false,
	"bpchar":      false,
	"name":        false,
	"bytea":       false,
	"json":        false,
	"jsonb":       false,
	"xml":         false,
	"inet":        false,
	"cidr":        false,
	"macaddr":     false,
	"macaddr8":    false,
	"money":       false,
	"bit":         false,
	"varbit":      false,
}

func isStringScalar(name string) bool {
	switch name {
	case "text", "varchar", "bpchar", "name":
		return true
	default:
		return false
	}
}
