package harness

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// Registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/filtertree/internal/engine"
	"github.com/roach88/filtertree/internal/field"
	"github.com/roach88/filtertree/internal/query"
	"github.com/roach88/filtertree/internal/querysql"
)

const (
	defaultTable = "records"

	// rowColumn keys each inserted record by its position.
	rowColumn = "__row"
)

// sqlIDs loads the scenario records into an in-memory SQLite table, runs
// the compiled WHERE fragment with placeholders and returns the ids of the
// selected records in record order.
func sqlIDs(scenario *Scenario, root *query.Group) ([]any, error) {
	table := scenario.Table
	if table == "" {
		table = defaultTable
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	defs := scenario.FieldSet().Definitions()
	if _, err := db.Exec(createTable(table, defs)); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	insert := insertStatement(table, defs)
	for i, record := range scenario.Records {
		args := make([]any, 0, len(defs)+1)
		args = append(args, i)
		for _, def := range defs {
			v, err := columnValue(engine.Resolve(record, def.Key))
			if err != nil {
				return nil, fmt.Errorf("records[%d].%s: %w", i, def.Key, err)
			}
			args = append(args, v)
		}
		if _, err := db.Exec(insert, args...); err != nil {
			return nil, fmt.Errorf("failed to insert records[%d]: %w", i, err)
		}
	}

	where, params := querysql.NewSQLCompiler(querysql.WithPlaceholders()).Where(root, table)
	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s",
		querysql.QuoteIdent(rowColumn), querysql.QuoteIdent(table), where, querysql.QuoteIdent(rowColumn))

	rows, err := db.Query(stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", where, err)
	}
	defer rows.Close()

	ids := []any{}
	for rows.Next() {
		var row int
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		ids = append(ids, scenario.Records[row]["id"])
	}
	return ids, rows.Err()
}

func createTable(table string, defs []field.Definition) string {
	cols := []string{querysql.QuoteIdent(rowColumn) + " INTEGER PRIMARY KEY"}
	for _, def := range defs {
		cols = append(cols, querysql.QuoteIdent(def.Key)+" "+affinity(def.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", querysql.QuoteIdent(table), strings.Join(cols, ", "))
}

func insertStatement(table string, defs []field.Definition) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(defs)+1), ", ")
	return fmt.Sprintf("INSERT INTO %s VALUES (%s)", querysql.QuoteIdent(table), marks)
}

func affinity(t field.Type) string {
	switch t {
	case field.TypeNumber:
		return "NUMERIC"
	case field.TypeBoolean:
		return "BOOLEAN"
	}
	return "TEXT"
}

// columnValue converts a resolved record value into a database/sql
// argument. Nested values are stored as JSON text.
func columnValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, int, int64, float64:
		return val, nil
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano), nil
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
	return fmt.Sprint(v), nil
}
