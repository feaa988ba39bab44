package typemap

import (
	"testing"

	"github.com/alexrjones/ddltypes/typefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *typefile.Registry {
	t.Helper()

	reg, err := typefile.Parse("test.py", []byte(src))
	require.NoError(t, err)
	return reg
}

func TestNormalizeTypeName(t *testing.T) {
	testCases := map[string]string{
		"VARCHAR(255)":                  "varchar",
		"  Integer ":                    "integer",
		"pg_catalog.int4":               "int4",
		"INT(11) UNSIGNED":              "int",
		"int unsigned zerofill":         "int",
		"timestamp(3) with time zone":   "timestamp with time zone",
		"numeric( 10 , 2 )":             "numeric",
		"character   varying (20)":      "character varying",
		"double precision":              "double precision",
		"other_type":                    "other_type",
		"time (6) without   time  zone": "time without time zone",
	}
	for in, expected := range testCases {
		assert.Equal(t, expected, NormalizeTypeName(in), "normalising %q", in)
	}
}

func TestClassifier_Builtin(t *testing.T) {
	c := NewClassifier(nil)
	testCases := map[string]typefile.Category{
		"bool":                        typefile.Boolean,
		"int4":                        typefile.Integer,
		"BIGINT":                      typefile.Integer,
		"bigserial":                   typefile.Serial,
		"float8":                      typefile.FloatingPoint,
		"numeric(10,2)":               typefile.FloatingPoint,
		"varchar(50)":                 typefile.Text,
		"jsonb":                       typefile.Text,
		"bytea":                       typefile.Blob,
		"date":                        typefile.Date,
		"timestamp with time zone":    typefile.DateTime,
		"timestamptz":                 typefile.DateTime,
		"time(3) without time zone":   typefile.Time,
		"pg_catalog.timetz":           typefile.Time,
		"mediumint(8) unsigned":       typefile.Integer,
		"timestamp without time zone": typefile.DateTime,
	}
	for in, expected := range testCases {
		got, err := c.Classify(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, got, "classifying %q", in)
	}
}

func TestClassifier_Unknown(t *testing.T) {
	c := NewClassifier(nil)
	_, err := c.Classify("uuid")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Contains(t, err.Error(), "uuid")
}

func TestClassifier_ExtendedTypes(t *testing.T) {
	c := NewClassifier(mustParse(t, `extendedDdlTextTypes = ["UUID", "other_type"]`))

	cat, err := c.Classify("uuid")
	require.NoError(t, err)
	assert.Equal(t, typefile.Text, cat)

	cat, err = c.Classify("OTHER_TYPE")
	require.NoError(t, err)
	assert.Equal(t, typefile.Text, cat)

	cat, err = c.Classify("int8")
	require.NoError(t, err)
	assert.Equal(t, typefile.Integer, cat)
}

func TestClassifier_ExtendedTakesPrecedence(t *testing.T) {
	c := NewClassifier(mustParse(t, `
extendedDdlTextTypes = ["int8"]
extendedDdlDateTimeTypes = ["varchar(14)"]
`))

	cat, err := c.Classify("int8")
	require.NoError(t, err)
	assert.Equal(t, typefile.Text, cat)

	// verbatim match against the datatype file beats the normalised
	// builtin match
	cat, err = c.Classify("VARCHAR(14)")
	require.NoError(t, err)
	assert.Equal(t, typefile.DateTime, cat)

	cat, err = c.Classify("varchar(20)")
	require.NoError(t, err)
	assert.Equal(t, typefile.Text, cat)
}

func TestBuiltin_HasNoDuplicates(t *testing.T) {
	assert.NoError(t, Builtin.Duplicates())
}

func TestClassifier_Extended(t *testing.T) {
	reg := mustParse(t, `extendedDdlTextTypes = ["UUID"]`)
	assert.Same(t, reg, NewClassifier(reg).Extended())

	empty := NewClassifier(nil).Extended()
	require.NotNil(t, empty)
	assert.Equal(t, 0, empty.Len())
}
