package pgmodelparse

import (
	"fmt"

	"github.com/alexrjones/ddltypes/collections"
	"github.com/alexrjones/ddltypes/typefile"
)

type Catalog struct {
	Schemas *collections.OrderedMap[string, *Schema]
}

func NewCatalog() *Catalog {
	return &Catalog{Schemas: collections.NewOrderedMap[string, *Schema]()}
}

func (c *Catalog) AddSchema(name string) *Schema {
	sch := &Schema{
		Name:   name,
		Tables: collections.NewOrderedMap[string, *Table](),
	}
	c.Schemas.Add(sch.Name, sch)
	return sch
}

func (c *Catalog) AddTable(t *Table) error {

	schema, ok := c.Schemas.Get(t.Schema)
	if !ok {
		return fmt.Errorf("no such schema: %s", t.Schema)
	}
	return schema.AddTable(t)
}

// Tables lists every table of every schema in definition order.
func (c *Catalog) Tables() []*Table {
	var ret []*Table
	for _, sch := range c.Schemas.List() {
		ret = append(ret, sch.Tables.List()...)
	}
	return ret
}

type Schema struct {
	Name   string
	Tables *collections.OrderedMap[string, *Table]
}

func (s *Schema) AddTable(t *Table) error {
	_, ok := s.Tables.Get(t.Name)
	if ok {
		return fmt.Errorf("table already exists: %s", t.Name)
	}
	s.Tables.Add(t.Name, t)
	return nil
}

type Table struct {
	Name       string
	Schema     string
	Columns    *collections.OrderedMap[string, *Column]
	PrimaryKey *PrimaryKey
}

func NewTable(name, schema string) *Table {
	return &Table{
		Name:    name,
		Schema:  schema,
		Columns: collections.NewOrderedMap[string, *Column](),
	}
}

func (t *Table) AddColumn(c *Column) error {
	_, ok := t.Columns.Get(c.Name)
	if ok {
		return fmt.Errorf("column already exists: %s", c.Name)
	}
	t.Columns.Add(c.Name, c)
	return nil
}

func (t *Table) FQName() string {

	if t.Schema == "" {
		return t.Name
	}
	return fmt.Sprintf("%s.%s", t.Schema, t.Name)
}

// SetPrimaryKey marks cols as the table's primary key.
func (t *Table) SetPrimaryKey(name string, cols Columns) error {

	if t.PrimaryKey != nil {
		return fmt.Errorf("multiple primary keys for table %s are not allowed", t.Name)
	}
	t.PrimaryKey = &PrimaryKey{Name: name, Columns: cols}
	for _, col := range cols {
		col.Attrs.Pkey = true
	}
	return nil
}

func (t *Table) DropPrimaryKey() {

	if t.PrimaryKey == nil {
		return
	}
	for _, col := range t.PrimaryKey.Columns {
		col.Attrs.Pkey = false
	}
	t.PrimaryKey = nil
}

type PrimaryKey struct {
	Name    string
	Columns Columns
}

type Column struct {
	Table *Table
	Name  string
	// SQLType is the type as written in the DDL, without the pg_catalog
	// qualifier, e.g. "varchar(50)" or "int4".
	SQLType  string
	Category typefile.Category
	// Unknown is set when SQLType matched no category and the compiler
	// was told to skip unknown types. Category is meaningless then.
	Unknown bool
	Attrs   *ColumnAttributes
}

func (c *Column) FQName() string {

	return c.Table.Schema + "." + c.Table.Name + "." + c.Name
}

// CategoryName is the category name, or "" for unknown types.
func (c *Column) CategoryName() string {
	if c.Unknown {
		return ""
	}
	return c.Category.String()
}

type ColumnAttributes struct {
	NotNull     bool
	Pkey        bool
	HasSequence bool
	// Generated is set for identity and generated columns, and for
	// columns named "id" when the compiler runs with AutoID.
	Generated          bool
	HasExplicitDefault bool
	ColumnDefault      string
}

func (ca ColumnAttributes) IsNotNull() bool {

	return ca.NotNull || ca.Pkey
}

func (ca ColumnAttributes) CanBeNull() bool {

	return !ca.IsNotNull()
}

// MustNotInsert is true for columns the database fills in itself.
func (ca ColumnAttributes) MustNotInsert() bool {

	return ca.HasSequence || ca.Generated
}

// MustNotUpdate is true for columns whose value the database owns.
func (ca ColumnAttributes) MustNotUpdate() bool {

	return ca.MustNotInsert()
}

// IsRequired is true when an insert must supply a value: NOT NULL
// columns with neither a default nor a database-generated value.
func (ca ColumnAttributes) IsRequired() bool {

	return ca.IsNotNull() && !(ca.HasExplicitDefault || ca.MustNotInsert())
}

type Columns []*Column

func (c Columns) Names() []string {
	names := make([]string, 0, len(c))
	for _, col := range c {
		names = append(names, col.Name)
	}
	return names
}
