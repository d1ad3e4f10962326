package db

import (
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// Dialect builds Postgres statements. All helpers below emit prepared SQL
// ($n placeholders) so values travel as pgx arguments.
var Dialect = goqu.Dialect("postgres")

// From accepts a table name or an aliased expression such as
// goqu.T("appointments").As("a").
func From(table interface{}) *goqu.SelectDataset { return Dialect.From(table).Prepared(true) }

func Insert(table string) *goqu.InsertDataset { return Dialect.Insert(table).Prepared(true) }

func Update(table string) *goqu.UpdateDataset { return Dialect.Update(table).Prepared(true) }

func Delete(table string) *goqu.DeleteDataset { return Dialect.Delete(table).Prepared(true) }

// Nullable converts an optional string to a goqu value (NULL when nil).
func Nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
