package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexrjones/ddltypes/pgmodelparse"
	"github.com/samber/lo"
)

type migration struct {
	path string
	sql  string
}

// readMigrations collects the .sql files under dir in lexical path order.
func readMigrations(dir string) ([]migration, error) {

	var migrations []migration
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".sql") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		migrations = append(migrations, migration{path: path, sql: string(data)})
		return nil
	})
	return migrations, err
}

type tableReport struct {
	Table      string         `yaml:"table"`
	PrimaryKey []string       `yaml:"primary_key,omitempty"`
	Columns    []columnReport `yaml:"columns"`
}

type columnReport struct {
	Name          string `yaml:"name"`
	Type          string `yaml:"type"`
	Category      string `yaml:"category"`
	CanBeNull     bool   `yaml:"can_be_null"`
	MustNotInsert bool   `yaml:"must_not_insert"`
	MustNotUpdate bool   `yaml:"must_not_update"`
	RequireInsert bool   `yaml:"require_insert"`
	HasDefault    bool   `yaml:"has_default"`
}

func buildReport(catalog *pgmodelparse.Catalog) []tableReport {

	return lo.Map(catalog.Tables(), func(t *pgmodelparse.Table, _ int) tableReport {
		var pkey []string
		if t.PrimaryKey != nil {
			pkey = t.PrimaryKey.Columns.Names()
		}
		return tableReport{
			Table:      t.FQName(),
			PrimaryKey: pkey,
			Columns: lo.Map(t.Columns.List(), func(c *pgmodelparse.Column, _ int) columnReport {
				return columnReport{
					Name:          c.Name,
					Type:          c.SQLType,
					Category:      c.CategoryName(),
					CanBeNull:     c.Attrs.CanBeNull(),
					MustNotInsert: c.Attrs.MustNotInsert(),
					MustNotUpdate: c.Attrs.MustNotUpdate(),
					RequireInsert: c.Attrs.IsRequired(),
					HasDefault:    c.Attrs.HasExplicitDefault,
				}
			}),
		}
	})
}
