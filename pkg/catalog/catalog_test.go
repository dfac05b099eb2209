package catalog

import (
	"errors"
	"testing"

	"github.com/dr0pdb/squeefdb/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreateAndOpen(t *testing.T) {
	c, err := NewCatalog()
	require.Nil(t, err)

	require.Nil(t, c.CreateDatabase("my_db"))
	require.Nil(t, c.CreateTable("my_db", NewTable("my_table", NewColumn("id", TypeUint32).PrimaryKey())))

	db, err := c.Database("my_db")
	require.Nil(t, err)
	assert.Equal(t, "my_db", db.Name)
	require.Equal(t, 1, len(db.Tables))
	assert.Equal(t, "my_table", db.Tables[0].Name)

	db.Tables[0].Name = "changed"
	again, _ := c.Database("my_db")
	assert.Equal(t, "my_table", again.Tables[0].Name, "the catalog hands out copies")
}

func TestCatalogRejectsDuplicates(t *testing.T) {
	c, err := NewCatalog(NewDatabase("my_db", NewTable("my_table")))
	require.Nil(t, err)

	var duplicate common.DuplicateNameError

	err = c.CreateDatabase("my_db")
	assert.True(t, errors.As(err, &duplicate))
	assert.Equal(t, "Failed to create database. Name [my_db] already in use", err.Error())

	err = c.CreateTable("my_db", NewTable("my_table"))
	assert.True(t, errors.As(err, &duplicate))
	assert.Equal(t, "CREATE TABLE failed. Name [my_db::my_table] already in use", err.Error())

	_, err = NewCatalog(NewDatabase("a"), NewDatabase("a"))
	assert.True(t, errors.As(err, &duplicate))

	assert.Equal(t, 1, len(c.Databases()))
}

func TestCatalogNotFound(t *testing.T) {
	c, err := NewCatalog()
	require.Nil(t, err)

	var notFound common.NotFoundError

	_, err = c.Database("nope")
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Failed to open database. No database with name [nope]", err.Error())

	err = c.CreateTable("nope", NewTable("t"))
	assert.True(t, errors.As(err, &notFound))

	err = c.DropDatabase("nope")
	assert.True(t, errors.As(err, &notFound))
}

func TestCatalogDropKeepsOrder(t *testing.T) {
	c, err := NewCatalog(NewDatabase("a"), NewDatabase("b"), NewDatabase("c"))
	require.Nil(t, err)

	require.Nil(t, c.DropDatabase("b"))

	var names []string
	for _, db := range c.Databases() {
		names = append(names, db.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)

	require.Nil(t, c.CreateDatabase("b"), "a dropped name can be reused")
}

func TestCatalogRejectsInvalidSchema(t *testing.T) {
	c, err := NewCatalog()
	require.Nil(t, err)

	var invalid common.InvalidSchemaError
	err = c.AddDatabase(NewDatabase("db", NewTable("t", NewColumn("", TypeString))))
	assert.True(t, errors.As(err, &invalid))
	assert.Equal(t, 0, len(c.Databases()))
}
