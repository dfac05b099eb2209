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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// Querier runs a query against postgres. *pgxpool.Pool and *pgx.Conn satisfy it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Introspector builds a Database from the information_schema of a postgres database.
type Introspector struct {
	q            Querier
	schema       string
	queryTimeout time.Duration
}

// NewIntrospector creates an introspector reading the tables of the given postgres schema.
func NewIntrospector(q Querier, schema string, queryTimeout time.Duration) *Introspector {
	if schema == "" {
		schema = "public"
	}
	return &Introspector{q: q, schema: schema, queryTimeout: queryTimeout}
}

const columnsQuery = `
	SELECT
		c.table_name,
		c.column_name,
		c.data_type,
		c.udt_name,
		c.is_nullable = 'YES' AS is_optional,
		EXISTS (
			SELECT 1
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema = kcu.table_schema
			 AND tc.table_name = kcu.table_name
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_schema = c.table_schema
			  AND tc.table_name = c.table_name
			  AND kcu.column_name = c.column_name
		) AS is_primary_key,
		EXISTS (
			SELECT 1
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema = kcu.table_schema
			 AND tc.table_name = kcu.table_name
			WHERE tc.constraint_type = 'FOREIGN KEY'
			  AND tc.table_schema = c.table_schema
			  AND tc.table_name = c.table_name
			  AND kcu.column_name = c.column_name
		) AS is_foreign_key
	FROM information_schema.columns c
	JOIN information_schema.tables t
	  ON t.table_schema = c.table_schema
	 AND t.table_name = c.table_name
	WHERE c.table_schema = $1
	  AND t.table_type = 'BASE TABLE'
	ORDER BY c.table_name, c.ordinal_position
`

// Database reads every base table of the schema into a Database called name.
func (i *Introspector) Database(ctx context.Context, name string) (Database, error) {
	log.WithFields(log.Fields{"database": name, "schema": i.schema}).Info("catalog::postgres::Database; started")
	if i.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.queryTimeout)
		defer cancel()
	}

	rows, err := i.q.Query(ctx, columnsQuery, i.schema)
	if err != nil {
		return Database{}, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	db := Database{Name: name}
	for rows.Next() {
		var tableName, dataType, udtName string
		var col Column
		if err := rows.Scan(&tableName, &col.Name, &dataType, &udtName, &col.IsOptional, &col.IsPrimaryKey, &col.IsForeignKey); err != nil {
			return Database{}, fmt.Errorf("failed to scan column: %w", err)
		}

		col.Type, col.IsArray, err = MapPostgresType(dataType, udtName)
		if err != nil {
			return Database{}, fmt.Errorf("column %s.%s: %w", tableName, col.Name, err)
		}

		// rows are ordered by table, so a new table always starts at the end
		n := len(db.Tables)
		if n == 0 || db.Tables[n-1].Name != tableName {
			db.Tables = append(db.Tables, Table{Name: tableName})
			n++
		}
		db.Tables[n-1].Columns = append(db.Tables[n-1].Columns, col)
	}
	if err := rows.Err(); err != nil {
		return Database{}, err
	}

	if err := db.Validate(); err != nil {
		return Database{}, err
	}

	log.WithFields(log.Fields{"database": name, "tables": len(db.Tables)}).Info("catalog::postgres::Database; done")
	return db, nil
}

var postgresTypes = map[string]Type{
	"char":    TypeChar,
	"bool":    TypeBoolean,
	"int2":    TypeSint16,
	"int4":    TypeSint32,
	"int8":    TypeSint64,
	"float4":  TypeFloat32,
	"float8":  TypeFloat64,
	"text":    TypeString,
	"varchar": TypeString,
	"bpchar":  TypeString,
	"name":    TypeString,
	"uuid":    TypeString,
	"citext":  TypeString,
}

// MapPostgresType maps an information_schema data_type/udt_name pair to a column type.
// Array columns report the element type.
func MapPostgresType(dataType, udtName string) (Type, bool, error) {
	isArray := strings.EqualFold(dataType, "ARRAY")
	udt := udtName
	if isArray {
		udt = strings.TrimPrefix(udtName, "_")
	}

	t, ok := postgresTypes[udt]
	if !ok {
		return 0, false, fmt.Errorf("unsupported postgres type %s (%s)", dataType, udtName)
	}
	return t, isArray, nil
}
