package pgmodelparse

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/alexrjones/ddltypes/typefile"
	"github.com/alexrjones/ddltypes/typemap"
	pg_query "github.com/pganalyze/pg_query_go/v5"
	"github.com/rs/zerolog/log"
)

// Compiler replays DDL statements into a Catalog, resolving every column
// type to a category with its Classifier.
type Compiler struct {
	SearchPath string
	Catalog    *Catalog
	Classifier *typemap.Classifier
	// AutoID treats columns named "id" as generated by the database.
	AutoID bool
	// SkipUnknownTypes records columns of unrecognised types as Unknown
	// instead of failing.
	SkipUnknownTypes bool
}

func NewCompiler(classifier *typemap.Classifier) *Compiler {
	if classifier == nil {
		classifier = typemap.NewClassifier(nil)
	}
	c := &Compiler{
		SearchPath: "public",
		Catalog:    NewCatalog(),
		Classifier: classifier,
	}
	c.Catalog.AddSchema(c.SearchPath)
	return c
}

func (c *Compiler) ParseRaw(sqlFile string) error {

	parse, err := pg_query.Parse(sqlFile)
	if err != nil {
		return err
	}
	return c.ParseStatements(parse)
}

func (c *Compiler) ParseStatements(parse *pg_query.ParseResult) error {

	for _, stmt := range parse.Stmts {
		switch p := stmt.Stmt.Node.(type) {
		case *pg_query.Node_CreateSchemaStmt:
			{
				err := c.CreateSchema(p.CreateSchemaStmt)
				if err != nil {
					return fmt.Errorf("while creating schema: %w", err)
				}
			}
		case *pg_query.Node_CreateStmt:
			{
				err := c.CreateTable(p.CreateStmt)
				if err != nil {
					return fmt.Errorf("while creating table: %w", err)
				}
			}
		case *pg_query.Node_AlterTableStmt:
			{
				err := c.AlterTable(p.AlterTableStmt)
				if err != nil {
					return fmt.Errorf("while altering table: %w", err)
				}
			}
		case *pg_query.Node_RenameStmt:
			{
				err := c.Rename(p.RenameStmt)
				if err != nil {
					return fmt.Errorf("while renaming: %w", err)
				}
			}
		case *pg_query.Node_DropStmt:
			{
				if p.DropStmt.RemoveType != pg_query.ObjectType_OBJECT_TABLE {
					continue
				}
				for _, tgt := range p.DropStmt.Objects {
					l, ok := tgt.Node.(*pg_query.Node_List)
					if !ok {
						return fmt.Errorf("expected List but got %T", tgt.Node)
					}
					schema, table := TableNameFromNodeList(l.List)
					err := c.DropTable(schema, table, p.DropStmt.MissingOk)
					if err != nil {
						return fmt.Errorf("while dropping table: %w", err)
					}
				}
			}
		default:
			log.Debug().Msgf("skipping statement %T", p)
		}
	}

	return nil
}

func (c *Compiler) CreateSchema(stmt *pg_query.CreateSchemaStmt) error {
	_, exists := c.Catalog.Schemas.Get(stmt.Schemaname)
	if exists && !stmt.IfNotExists {
		return fmt.Errorf("schema %s already exists", stmt.Schemaname)
	} else if exists {
		return nil
	}
	c.Catalog.AddSchema(stmt.Schemaname)
	return nil
}

func (c *Compiler) CreateTable(stmt *pg_query.CreateStmt) error {
	name := stmt.Relation.Relname
	schemaName := c.SchemaOrSearchPath(stmt.Relation.Schemaname)
	if _, err := c.FindTable(schemaName, name); err == nil && stmt.IfNotExists {
		return nil
	}
	table := NewTable(name, schemaName)
	err := c.Catalog.AddTable(table)
	if err != nil {
		return err
	}
	for _, n := range stmt.TableElts {
		switch p := n.Node.(type) {
		case *pg_query.Node_ColumnDef:
			{
				err = c.DefineColumn(table, p.ColumnDef)
				if err != nil {
					return fmt.Errorf("defining column on table %s: %w", table.FQName(), err)
				}
			}
		case *pg_query.Node_Constraint:
			{
				err = c.DefineConstraint(table, "", p.Constraint)
				if err != nil {
					return fmt.Errorf("defining constraint on table %s: %w", table.FQName(), err)
				}
			}
		}
	}
	return nil
}

func (c *Compiler) DropTable(schema, table string, missingOk bool) error {

	tab, err := c.FindTable(schema, table)
	if err != nil {
		if missingOk {
			return nil
		}
		return err
	}
	sch, _ := c.Catalog.Schemas.Get(tab.Schema) // Must be ok
	sch.Tables.Remove(tab.Name)
	return nil
}

func (c *Compiler) AlterTable(stmt *pg_query.AlterTableStmt) error {

	if stmt.Objtype != pg_query.ObjectType_OBJECT_TABLE {
		return nil
	}
	tab, err := c.FindTableFromRangeVar(stmt.Relation)
	if err != nil {
		if stmt.MissingOk {
			return nil
		}
		return err
	}

	for _, cmd := range stmt.Cmds {
		atc, ok := cmd.Node.(*pg_query.Node_AlterTableCmd)
		if !ok {
			return fmt.Errorf("expected AlterTableCmd but got %T", cmd.Node)
		}
		err = c.alterTableCmd(tab, atc.AlterTableCmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) alterTableCmd(tab *Table, cmd *pg_query.AlterTableCmd) error {

	switch cmd.Subtype {
	case pg_query.AlterTableType_AT_AddColumn:
		{
			col, ok := cmd.Def.Node.(*pg_query.Node_ColumnDef)
			if !ok {
				return fmt.Errorf("expected ColumnDef but got %T", cmd.Def.Node)
			}
			if _, exists := tab.Columns.Get(col.ColumnDef.Colname); exists && cmd.MissingOk {
				return nil
			}
			return c.DefineColumn(tab, col.ColumnDef)
		}
	case pg_query.AlterTableType_AT_DropColumn:
		{
			return c.DropColumn(tab, cmd.Name, cmd.MissingOk)
		}
	case pg_query.AlterTableType_AT_AddConstraint:
		{
			conDef, ok := cmd.Def.Node.(*pg_query.Node_Constraint)
			if !ok {
				return fmt.Errorf("expected Constraint but got %T", cmd.Def.Node)
			}
			return c.DefineConstraint(tab, "", conDef.Constraint)
		}
	case pg_query.AlterTableType_AT_DropConstraint:
		{
			if tab.PrimaryKey != nil && tab.PrimaryKey.Name == cmd.Name {
				tab.DropPrimaryKey()
			}
			return nil
		}
	case pg_query.AlterTableType_AT_AlterColumnType:
		{
			col, err := ColumnFromColName(tab, cmd.Name)
			if err != nil {
				return err
			}
			def, ok := cmd.Def.Node.(*pg_query.Node_ColumnDef)
			if !ok {
				return fmt.Errorf("expected ColumnDef but got %T", cmd.Def.Node)
			}
			return c.setColumnType(col, TypeNameFromNode(def.ColumnDef.TypeName))
		}
	case pg_query.AlterTableType_AT_ColumnDefault:
		{
			col, err := ColumnFromColName(tab, cmd.Name)
			if err != nil {
				return err
			}
			if cmd.Def != nil {
				col.Attrs.HasExplicitDefault = true
				col.Attrs.ColumnDefault = c.ExprToString(cmd.Def)
				return nil
			}
			return c.dropDefault(col)
		}
	case pg_query.AlterTableType_AT_SetNotNull:
		{
			col, err := ColumnFromColName(tab, cmd.Name)
			if err != nil {
				return err
			}
			col.Attrs.NotNull = true
			return nil
		}
	case pg_query.AlterTableType_AT_DropNotNull:
		{
			col, err := ColumnFromColName(tab, cmd.Name)
			if err != nil {
				return err
			}
			if col.Attrs.Pkey {
				return fmt.Errorf("can't drop not null constraint from primary key column %s.%s", tab.Name, col.Name)
			}
			col.Attrs.NotNull = false
			return nil
		}
	case pg_query.AlterTableType_AT_AddIdentity:
		{
			col, err := ColumnFromColName(tab, cmd.Name)
			if err != nil {
				return err
			}
			col.Attrs.Generated = true
			col.Attrs.NotNull = true
			return nil
		}
	case pg_query.AlterTableType_AT_DropIdentity:
		{
			col, err := ColumnFromColName(tab, cmd.Name)
			if err != nil {
				return err
			}
			col.Attrs.Generated = c.AutoID && col.Name == "id"
			return nil
		}
	}
	log.Debug().Str("table", tab.FQName()).Msgf("skipping alter table command %s", cmd.Subtype)
	return nil
}

func (c *Compiler) Rename(stmt *pg_query.RenameStmt) error {

	switch stmt.RenameType {
	case pg_query.ObjectType_OBJECT_TABLE:
		{
			tab, err := c.FindTableFromRangeVar(stmt.Relation)
			if err != nil {
				if stmt.MissingOk {
					return nil
				}
				return err
			}
			sch, _ := c.Catalog.Schemas.Get(tab.Schema)
			if !sch.Tables.Rename(tab.Name, stmt.Newname) {
				return fmt.Errorf("table already exists: %s", stmt.Newname)
			}
			tab.Name = stmt.Newname
			return nil
		}
	case pg_query.ObjectType_OBJECT_COLUMN:
		{
			tab, err := c.FindTableFromRangeVar(stmt.Relation)
			if err != nil {
				if stmt.MissingOk {
					return nil
				}
				return err
			}
			col, err := ColumnFromColName(tab, stmt.Subname)
			if err != nil {
				return err
			}
			if !tab.Columns.Rename(col.Name, stmt.Newname) {
				return fmt.Errorf("column already exists: %s", stmt.Newname)
			}
			col.Name = stmt.Newname
			return nil
		}
	}
	return nil
}

func (c *Compiler) DefineColumn(t *Table, def *pg_query.ColumnDef) error {
	name := def.Colname
	col := &Column{
		Table: t,
		Name:  name,
		Attrs: &ColumnAttributes{NotNull: def.IsNotNull},
	}
	err := c.setColumnType(col, TypeNameFromNode(def.TypeName))
	if err != nil {
		return fmt.Errorf("column %s: %w", name, err)
	}
	col.Attrs.HasSequence = !col.Unknown && col.Category == typefile.Serial
	if c.AutoID && name == "id" {
		col.Attrs.Generated = true
	}
	err = t.AddColumn(col)
	if err != nil {
		return err
	}
	return c.DefineConstraints(t, name, def.Constraints)
}

func (c *Compiler) setColumnType(col *Column, sqlType string) error {

	cat, err := c.Classifier.Classify(sqlType)
	if err != nil {
		if !c.SkipUnknownTypes || !errors.Is(err, typemap.ErrUnknownType) {
			return err
		}
		log.Warn().Str("column", col.Name).Str("type", sqlType).Msg("skipping column of unknown type")
		col.SQLType, col.Category, col.Unknown = sqlType, 0, true
		return nil
	}
	col.SQLType, col.Category, col.Unknown = sqlType, cat, false
	return nil
}

// serialBaseTypes maps serial pseudo-types to the integer type backing
// them once their sequence default is removed.
var serialBaseTypes = map[string]string{
	"smallserial": "int2",
	"serial2":     "int2",
	"serial":      "int4",
	"serial4":     "int4",
	"bigserial":   "int8",
	"serial8":     "int8",
}

func (c *Compiler) dropDefault(col *Column) error {

	col.Attrs.HasExplicitDefault = false
	col.Attrs.ColumnDefault = ""
	if !col.Attrs.HasSequence {
		return nil
	}
	col.Attrs.HasSequence = false
	if base, ok := serialBaseTypes[typemap.NormalizeTypeName(col.SQLType)]; ok {
		return c.setColumnType(col, base)
	}
	return nil
}

func (c *Compiler) DropColumn(t *Table, colName string, missingOk bool) error {

	col, ok := t.Columns.Get(colName)
	if !ok {
		if missingOk {
			return nil
		}
		return fmt.Errorf("column %s does not exist", colName)
	}
	if t.PrimaryKey != nil && slices.Contains(t.PrimaryKey.Columns, col) {
		t.DropPrimaryKey()
	}
	t.Columns.Remove(col.Name)
	return nil
}

// FindTableFromRangeVar looks up an existing table from the provided RangeVar.
func (c *Compiler) FindTableFromRangeVar(r *pg_query.RangeVar) (*Table, error) {

	return c.FindTable(r.Schemaname, r.Relname)
}

func (c *Compiler) FindTable(schema, table string) (*Table, error) {

	schema = c.SchemaOrSearchPath(schema)
	s, ok := c.Catalog.Schemas.Get(schema)
	if !ok {
		return nil, fmt.Errorf("schema %s not found", schema)
	}
	t, ok := s.Tables.Get(table)
	if !ok {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return t, nil
}

// TypeNameFromNode renders a parsed type back to text: qualified name
// without pg_catalog, integer type modifiers and array brackets.
func TypeNameFromNode(tn *pg_query.TypeName) string {

	var parts []string
	for _, n := range tn.Names {
		val := StringOrPanic(n)
		if val == "pg_catalog" {
			continue
		}
		parts = append(parts, val)
	}
	name := strings.Join(parts, ".")

	var mods []string
	for _, m := range tn.Typmods {
		if ac, ok := m.Node.(*pg_query.Node_AConst); ok {
			if iv, ok := ac.AConst.Val.(*pg_query.A_Const_Ival); ok {
				mods = append(mods, strconv.FormatInt(int64(iv.Ival.Ival), 10))
			}
		}
	}
	if len(mods) > 0 {
		name += "(" + strings.Join(mods, ",") + ")"
	}
	return name + strings.Repeat("[]", len(tn.ArrayBounds))
}

func (c *Compiler) DefineConstraints(t *Table, colName string, constraints []*pg_query.Node) error {
	for _, n := range constraints {
		v, ok := n.Node.(*pg_query.Node_Constraint)
		if !ok {
			return fmt.Errorf("expected Constraint but got %T", n.Node)
		}
		err := c.DefineConstraint(t, colName, v.Constraint)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) DefineConstraint(t *Table, colName string, v *pg_query.Constraint) error {

	switch v.Contype {
	case pg_query.ConstrType_CONSTR_PRIMARY:
		{
			cols, err := ColumnsFromColNames(t, StringsOrPanic(v.Keys))
			if err != nil {
				return err
			}
			if len(cols) == 0 {
				col, err := ColumnFromColName(t, colName)
				if err != nil {
					return err
				}
				cols = append(cols, col)
			}
			name := v.Conname
			if name == "" {
				name = t.Name + "_" + "pkey"
			}
			return t.SetPrimaryKey(name, cols)
		}
	case pg_query.ConstrType_CONSTR_NOTNULL:
		{
			col, err := ColumnFromColName(t, colName)
			if err != nil {
				return err
			}
			col.Attrs.NotNull = true
			return nil
		}
	case pg_query.ConstrType_CONSTR_DEFAULT:
		{
			col, err := ColumnFromColName(t, colName)
			if err != nil {
				return err
			}
			col.Attrs.HasExplicitDefault = true
			col.Attrs.ColumnDefault = c.ExprToString(v.RawExpr)
			return nil
		}
	case pg_query.ConstrType_CONSTR_IDENTITY, pg_query.ConstrType_CONSTR_GENERATED:
		{
			col, err := ColumnFromColName(t, colName)
			if err != nil {
				return err
			}
			col.Attrs.Generated = true
			if v.Contype == pg_query.ConstrType_CONSTR_IDENTITY {
				col.Attrs.NotNull = true
			}
			return nil
		}
	case pg_query.ConstrType_CONSTR_NULL,
		pg_query.ConstrType_CONSTR_CHECK,
		pg_query.ConstrType_CONSTR_UNIQUE,
		pg_query.ConstrType_CONSTR_FOREIGN,
		pg_query.ConstrType_CONSTR_EXCLUSION:
		{
			// No bearing on column categories or traits
			return nil
		}
	case pg_query.ConstrType_CONSTR_ATTR_DEFERRABLE,
		pg_query.ConstrType_CONSTR_ATTR_NOT_DEFERRABLE,
		pg_query.ConstrType_CONSTR_ATTR_DEFERRED,
		pg_query.ConstrType_CONSTR_ATTR_IMMEDIATE:
		{
			return nil
		}
	}
	return fmt.Errorf("not yet able to process constraint type %v", v.Contype)
}

// ExprToString renders simple default expressions; anything else comes
// back as "".
func (c *Compiler) ExprToString(n *pg_query.Node) string {

	if n == nil {
		return ""
	}
	switch x := n.Node.(type) {
	case *pg_query.Node_SqlvalueFunction:
		{
			// A value function is e.g. CURRENT_TIMESTAMP -
			// looks like a value but behaves like a function
			return strings.TrimPrefix(x.SqlvalueFunction.Op.String(), "SVFOP_")
		}
	case *pg_query.Node_FuncCall:
		{
			args := make([]string, 0, len(x.FuncCall.Args))
			for _, a := range x.FuncCall.Args {
				args = append(args, c.ExprToString(a))
			}
			return fmt.Sprintf("%s(%s)", strings.Join(StringsOrPanic(x.FuncCall.Funcname), "."), strings.Join(args, ", "))
		}
	case *pg_query.Node_TypeCast:
		{
			return fmt.Sprintf("%s::%s", c.ExprToString(x.TypeCast.Arg), TypeNameFromNode(x.TypeCast.TypeName))
		}
	case *pg_query.Node_AConst:
		{
			return ConstantAsString(x.AConst)
		}
	}

	return ""
}

func ConstantAsString(aConst *pg_query.A_Const) string {

	if aConst.Isnull {
		return "NULL"
	}

	switch sv := aConst.Val.(type) {
	case *pg_query.A_Const_Sval:
		{
			return "'" + strings.ReplaceAll(sv.Sval.Sval, "'", "''") + "'"
		}
	case *pg_query.A_Const_Boolval:
		{
			return strconv.FormatBool(sv.Boolval.Boolval)
		}
	case *pg_query.A_Const_Ival:
		{
			return strconv.FormatInt(int64(sv.Ival.Ival), 10)
		}
	case *pg_query.A_Const_Fval:
		{
			return sv.Fval.Fval
		}
	case *pg_query.A_Const_Bsval:
		{
			return sv.Bsval.Bsval
		}
	}
	return ""
}

func (c *Compiler) SchemaOrSearchPath(schema string) string {
	if schema == "" {
		return c.SearchPath
	}
	return schema
}

func TableNameFromNodeList(l *pg_query.List) (schema string, table string) {

	if len(l.Items) == 1 {
		table = StringOrPanic(l.Items[0])
		return
	}
	if len(l.Items) == 2 {
		schema = StringOrPanic(l.Items[0])
		table = StringOrPanic(l.Items[1])
	}
	return
}

func StringsOrPanic(ns []*pg_query.Node) []string {

	ret := make([]string, 0, len(ns))
	for _, n := range ns {
		ret = append(ret, StringOrPanic(n))
	}
	return ret
}

func StringOrPanic(n *pg_query.Node) string {

	s, ok := n.Node.(*pg_query.Node_String_)
	if !ok {
		panic("unknown how to parse node " + n.String())
	}
	return s.String_.Sval
}

func ColumnFromColName(t *Table, name string) (*Column, error) {
	col, ok := t.Columns.Get(name)
	if !ok {
		return nil, fmt.Errorf("column %s not found", name)
	}
	return col, nil
}

func ColumnsFromColNames(t *Table, names []string) (Columns, error) {
	ret := make(Columns, 0, len(names))
	for _, name := range names {
		col, err := ColumnFromColName(t, name)
		if err != nil {
			return nil, err
		}
		ret = append(ret, col)
	}
	return ret, nil
}
