package model

import (
	"slices"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartitionTable quotes a partition name as a single identifier. Category
// labels may contain dots, quotes and backticks, none of which may be read as
// a schema separator or as SQL.
func PartitionTable(name string) clause.Table {
	return clause.Table{Name: `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, Raw: true}
}

// Partition scopes db to the table backing a partition.
func Partition(db *gorm.DB, name string) *gorm.DB {
	tx := db.Table("?", PartitionTable(name))
	tx.Statement.Table = name
	return tx
}

// MigratePartition creates the table backing a partition. It does nothing if
// the table is already there, and fails if another connection creates it
// between the check and the create.
func MigratePartition(db *gorm.DB, table string) error {
	tables, err := db.Migrator().GetTables()
	if err != nil {
		return err
	}
	if slices.Contains(tables, table) {
		return nil
	}

	return Partition(db, table).Migrator().CreateTable(&Recipe{})
}
