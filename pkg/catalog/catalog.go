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

// Package catalog holds the schema metadata model: databases made of tables made of typed columns.
package catalog

import (
	"fmt"
	"sync"

	"github.com/dr0pdb/squeefdb/pkg/common"
	log "github.com/sirupsen/logrus"
)

// Catalog is the registry of databases known to the server.
// Names are unique: creating a database or table whose name is in use fails.
type Catalog struct {
	mu        sync.RWMutex
	databases []Database
}

// NewCatalog creates a catalog holding the given databases.
func NewCatalog(databases ...Database) (*Catalog, error) {
	c := &Catalog{}
	for _, db := range databases {
		if err := c.AddDatabase(db); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// CreateDatabase adds an empty database.
func (c *Catalog) CreateDatabase(name string) error {
	return c.AddDatabase(NewDatabase(name))
}

// AddDatabase validates db and adds a copy of it.
func (c *Catalog) AddDatabase(db Database) error {
	log.WithFields(log.Fields{"database": db.Name}).Debug("catalog::catalog::AddDatabase; started")
	if err := db.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(db.Name) != -1 {
		return common.NewDuplicateNameError(fmt.Sprintf("Failed to create database. Name [%s] already in use", db.Name))
	}
	c.databases = append(c.databases, db.Clone())

	log.WithFields(log.Fields{"database": db.Name, "tables": len(db.Tables)}).Debug("catalog::catalog::AddDatabase; done")
	return nil
}

// DropDatabase removes the database called name.
func (c *Catalog) DropDatabase(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(name)
	if idx == -1 {
		return common.NewNotFoundError(fmt.Sprintf("Failed to drop database. No database with name [%s]", name))
	}
	c.databases = append(c.databases[:idx], c.databases[idx+1:]...)
	return nil
}

// Database returns a copy of the database called name.
func (c *Catalog) Database(name string) (Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	idx := c.indexOf(name)
	if idx == -1 {
		return Database{}, common.NewNotFoundError(fmt.Sprintf("Failed to open database. No database with name [%s]", name))
	}
	return c.databases[idx].Clone(), nil
}

// CreateTable adds table to the database called dbName.
func (c *Catalog) CreateTable(dbName string, table Table) error {
	if err := table.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(dbName)
	if idx == -1 {
		return common.NewNotFoundError(fmt.Sprintf("CREATE TABLE failed. No database with name [%s]", dbName))
	}
	db := &c.databases[idx]
	if _, ok := db.Table(table.Name); ok {
		return common.NewDuplicateNameError(fmt.Sprintf("CREATE TABLE failed. Name [%s::%s] already in use", db.Name, table.Name))
	}
	db.Tables = append(db.Tables, table.Clone())
	return nil
}

// Databases returns a copy of every database in creation order.
func (c *Catalog) Databases() []Database {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]Database, len(c.databases))
	for i := range c.databases {
		res[i] = c.databases[i].Clone()
	}
	return res
}

// must be called with the lock held
func (c *Catalog) indexOf(name string) int {
	for i := range c.databases {
		if c.databases[i].Name == name {
			return i
		}
	}
	return -1
}
