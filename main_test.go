package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexrjones/ddltypes/typefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, contents string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const sampleDatatypes = `extendedDdlTextTypes = ["UUID", "other_type"]
`

func TestShow(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "types.py"), sampleDatatypes)

	out, err := runCmd(t, "show", "--datatype-file", file)
	require.NoError(t, err)

	reg, err := typefile.Parse("out", []byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"UUID", "other_type"}, reg.Text)
	for _, c := range typefile.Categories() {
		assert.True(t, reg.Defined(c))
	}
}

func TestShow_RequiresFile(t *testing.T) {
	_, err := runCmd(t, "show")
	assert.ErrorContains(t, err, "--datatype-file is required")

	out, err := runCmd(t, "show", "--builtin")
	require.NoError(t, err)
	assert.Contains(t, out, `extendedDdlBooleanTypes = ["bool", "boolean"]`)
}

func TestLoadErrorIsReported(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "types.py"), `extendedDdlTextTypes = "UUID"`)

	_, err := runCmd(t, "show", "--datatype-file", file)
	var loadErr *typefile.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "extendedDdlTextTypes", loadErr.Slot)
	assert.Contains(t, err.Error(), file)
}

func TestLookup_Found(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "types.py"), sampleDatatypes)

	out, err := runCmd(t, "lookup", "text", "uuid", "--datatype-file", file)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestLookup_NotFound(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "types.py"), sampleDatatypes)

	out, err := runCmd(t, "lookup", "boolean", "uuid", "--datatype-file", file)
	assert.Equal(t, "false\n", out)
	assert.ErrorIs(t, err, errNotFound)

	out, err = runCmd(t, "lookup", "text", "json", "--datatype-file", file)
	assert.Equal(t, "false\n", out)
	assert.ErrorIs(t, err, errNotFound)
}

func TestLookup_UnknownCategory(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "types.py"), sampleDatatypes)

	_, err := runCmd(t, "lookup", "jsonish", "uuid", "--datatype-file", file)
	assert.NotErrorIs(t, err, errNotFound)
	assert.ErrorContains(t, err, `unknown category "jsonish"`)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, filepath.Join(dir, "ok.py"), sampleDatatypes)
	_, err := runCmd(t, "check", "--datatype-file", ok)
	assert.NoError(t, err)

	dup := writeFile(t, filepath.Join(dir, "dup.py"), `
extendedDdlTextTypes = ["UUID"]
extendedDdlBlobTypes = ["uuid"]
`)
	_, err = runCmd(t, "check", "--datatype-file", dup)
	assert.ErrorContains(t, err, `token "UUID" is listed under text, blob`)
}

func TestResolve(t *testing.T) {
	file := writeFile(t, filepath.Join(t.TempDir(), "types.py"), sampleDatatypes)

	out, err := runCmd(t, "resolve", "VARCHAR(20)", "uuid", "--datatype-file", file)
	require.NoError(t, err)
	assert.Equal(t, "VARCHAR(20)\ttext\nuuid\ttext\n", out)

	_, err = runCmd(t, "resolve", "uuid")
	assert.ErrorContains(t, err, "unknown column type: uuid")
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, filepath.Join(dir, "types.py"), sampleDatatypes)
	migrations := filepath.Join(dir, "migrations")
	writeFile(t, filepath.Join(migrations, "001_users.sql"), `
CREATE TABLE users (
    id SERIAL PRIMARY KEY,
    token UUID NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`)
	writeFile(t, filepath.Join(migrations, "002_users.sql"), `ALTER TABLE users ADD COLUMN active boolean;`)
	writeFile(t, filepath.Join(migrations, "README.md"), `not sql`)

	out, err := runCmd(t, "classify", migrations, "--datatype-file", file)
	require.NoError(t, err)

	var report []tableReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, []tableReport{{
		Table:      "public.users",
		PrimaryKey: []string{"id"},
		Columns: []columnReport{
			{Name: "id", Type: "serial", Category: "serial", MustNotInsert: true, MustNotUpdate: true},
			{Name: "token", Type: "uuid", Category: "text", RequireInsert: true},
			{Name: "created_at", Type: "timestamp", Category: "datetime", CanBeNull: true, HasDefault: true},
			{Name: "active", Type: "bool", Category: "boolean", CanBeNull: true},
		},
	}}, report)
}

func TestClassify_UnknownType(t *testing.T) {
	migrations := t.TempDir()
	sqlFile := writeFile(t, filepath.Join(migrations, "001.sql"), `CREATE TABLE t (id uuid);`)

	_, err := runCmd(t, "classify", migrations)
	assert.ErrorContains(t, err, sqlFile)
	assert.ErrorContains(t, err, "unknown column type: uuid")

	out, err := runCmd(t, "classify", migrations, "--skip-unknown", "--auto-id")
	require.NoError(t, err)
	var report []tableReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	require.Len(t, report, 1)
	assert.Equal(t, []columnReport{{Name: "id", Type: "uuid", CanBeNull: true, MustNotInsert: true, MustNotUpdate: true}}, report[0].Columns)
}

func TestClassify_Dump(t *testing.T) {
	migrations := t.TempDir()
	writeFile(t, filepath.Join(migrations, "001.sql"), `CREATE TABLE dumped (id int);`)

	out, err := runCmd(t, "classify", migrations, "--dump")
	require.NoError(t, err)
	assert.Contains(t, out, "dumped")
	assert.Contains(t, out, "pgmodelparse.Catalog")
}

func TestReadMigrations_Order(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "001.sql"), "select 2;")
	writeFile(t, filepath.Join(dir, "a.sql"), "select 1;")
	writeFile(t, filepath.Join(dir, "c.txt"), "nope")

	migs, err := readMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migs, 2)
	assert.Equal(t, "select 1;", migs[0].sql)
	assert.Equal(t, "select 2;", migs[1].sql)
}
