/**
 * Copyright 2026 The SqueefDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package catalog

import (
	"github.com/dr0pdb/squeefdb/pkg/common"
)

// Column defines a single column of a table.
//
// The flags are independent. A column may be both a primary and a foreign key,
// which is how self-referencing keys are described.
type Column struct {
	Name         string `yaml:"name"`
	Type         Type   `yaml:"type"`
	IsOptional   bool   `yaml:"optional,omitempty"`
	IsArray      bool   `yaml:"array,omitempty"`
	IsPrimaryKey bool   `yaml:"primary_key,omitempty"`
	IsForeignKey bool   `yaml:"foreign_key,omitempty"`
}

// NewColumn creates a required, scalar, non key column.
func NewColumn(name string, typ Type) Column {
	return Column{Name: name, Type: typ}
}

// Optional returns a copy of the column that accepts missing values.
func (c Column) Optional() Column {
	c.IsOptional = true
	return c
}

// Array returns a copy of the column holding a sequence of values.
func (c Column) Array() Column {
	c.IsArray = true
	return c
}

// PrimaryKey returns a copy of the column flagged as (part of) the primary key.
func (c Column) PrimaryKey() Column {
	c.IsPrimaryKey = true
	return c
}

// ForeignKey returns a copy of the column flagged as a foreign key.
func (c Column) ForeignKey() Column {
	c.IsForeignKey = true
	return c
}

// Validate checks that the column has a name and a known type.
func (c Column) Validate() error {
	if c.Name == "" {
		return common.NewInvalidSchemaError("column name cannot be empty")
	}
	if !c.Type.Valid() {
		return common.NewInvalidSchemaError("column [%s] has invalid type %s", c.Name, c.Type)
	}
	return nil
}

// UnmarshalYAML reads a column from a schema definition. The type key is required.
func (c *Column) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		Name         string `yaml:"name"`
		Type         *Type  `yaml:"type"`
		IsOptional   bool   `yaml:"optional"`
		IsArray      bool   `yaml:"array"`
		IsPrimaryKey bool   `yaml:"primary_key"`
		IsForeignKey bool   `yaml:"foreign_key"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw.Type == nil {
		return common.NewInvalidSchemaError("column [%s] has no type", raw.Name)
	}

	*c = Column{
		Name:         raw.Name,
		Type:         *raw.Type,
		IsOptional:   raw.IsOptional,
		IsArray:      raw.IsArray,
		IsPrimaryKey: raw.IsPrimaryKey,
		IsForeignKey: raw.IsForeignKey,
	}
	return nil
}

// Table is a named, ordered list of columns.
// The column order is the field order of a row.
type Table struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// NewTable creates a table. The columns are copied; an empty list is stored as nil.
func NewTable(name string, columns ...Column) Table {
	return Table{Name: name, Columns: copyColumns(columns)}
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	return NewTable(t.Name, t.Columns...)
}

// Column returns the first column called name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnList returns a copy of the columns in table order.
func (t Table) ColumnList() []Column {
	return copyColumns(t.Columns)
}

// Equal reports whether both tables have the same name and the same columns in the same order.
func (t Table) Equal(other Table) bool {
	if t.Name != other.Name || len(t.Columns) != len(other.Columns) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}

// PrimaryKey returns the primary key columns in table order.
func (t Table) PrimaryKey() []Column {
	var res []Column
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			res = append(res, c)
		}
	}
	return res
}

// Validate checks the table name and every column. Column names must be unique.
func (t Table) Validate() error {
	if t.Name == "" {
		return common.NewInvalidSchemaError("table name cannot be empty")
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if err := c.Validate(); err != nil {
			return common.NewInvalidSchemaError("table [%s]: %s", t.Name, err)
		}
		if seen[c.Name] {
			return common.NewDuplicateNameError("column name [" + t.Name + "::" + c.Name + "] already in use")
		}
		seen[c.Name] = true
	}
	return nil
}

// Database is a named, ordered list of tables.
type Database struct {
	Name   string  `yaml:"name"`
	Tables []Table `yaml:"tables"`
}

// NewDatabase creates a database. The tables are deep copied.
func NewDatabase(name string, tables ...Table) Database {
	db := Database{Name: name}
	if len(tables) > 0 {
		db.Tables = make([]Table, len(tables))
		for i := range tables {
			db.Tables[i] = tables[i].Clone()
		}
	}
	return db
}

// Clone returns a deep copy of the database.
func (d Database) Clone() Database {
	return NewDatabase(d.Name, d.Tables...)
}

// Table returns the first table called name.
func (d Database) Table(name string) (Table, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t.Clone(), true
		}
	}
	return Table{}, false
}

// TableList returns a deep copy of the tables in database order.
func (d Database) TableList() []Table {
	return d.Clone().Tables
}

// Equal reports whether both databases have the same name and equal tables in the same order.
func (d Database) Equal(other Database) bool {
	if d.Name != other.Name || len(d.Tables) != len(other.Tables) {
		return false
	}
	for i := range d.Tables {
		if !d.Tables[i].Equal(other.Tables[i]) {
			return false
		}
	}
	return true
}

// Validate checks the database name and every table. Table names must be unique.
func (d Database) Validate() error {
	if d.Name == "" {
		return common.NewInvalidSchemaError("database name cannot be empty")
	}

	seen := make(map[string]bool, len(d.Tables))
	for _, t := range d.Tables {
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Name] {
			return common.NewDuplicateNameError("table name [" + d.Name + "::" + t.Name + "] already in use")
		}
		seen[t.Name] = true
	}
	return nil
}

func copyColumns(columns []Column) []Column {
	if len(columns) == 0 {
		return nil
	}
	res := make([]Column, len(columns))
	copy(res, columns)
	return res
}
