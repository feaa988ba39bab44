package typemap

import "github.com/alexrjones/ddltypes/typefile"

// Builtin lists the column types recognised without a datatype file. Names
// are the forms a DDL parser reports after normalisation, so both the SQL
// spellings ("integer") and the Postgres internal names ("int4") appear.
var Builtin = &typefile.Registry{
	Boolean: []string{"bool", "boolean"},
	Integer: []string{
		"bigint", "int", "int2", "int4", "int8", "integer",
		"mediumint", "smallint", "tinyint",
	},
	Serial: []string{
		"bigserial", "serial", "serial2", "serial4", "serial8", "smallserial",
	},
	FloatingPoint: []string{
		"decimal", "double", "double precision", "float", "float4", "float8",
		"numeric", "real",
	},
	Text: []string{
		"bpchar", "char", "character", "character varying", "clob", "enum",
		"json", "jsonb", "longtext", "mediumtext", "nchar", "nvarchar",
		"rational", "set", "text", "tinytext", "varchar",
	},
	Blob: []string{
		"binary", "blob", "bytea", "longblob", "mediumblob", "tinyblob",
		"varbinary",
	},
	Date: []string{"date"},
	DateTime: []string{
		"datetime", "timestamp", "timestamp with time zone",
		"timestamp without time zone", "timestamptz",
	},
	Time: []string{
		"time", "time with time zone", "time without time zone", "timetz",
	},
}
