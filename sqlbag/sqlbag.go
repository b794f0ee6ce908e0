// Package sqlbag turns SQL result rows into stencil bags.
//
// Each row becomes one bag keyed by column name in select order, ready to be
// handed to an engine in list mode:
//
//	bags, err := sqlbag.Query(ctx, db, "SELECT name, capital FROM countries")
//	countries, err := stencil.New[Country](bags, nil).MapList()
package sqlbag

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/stencil"
)

// FromRows reads every remaining row. []byte column values are converted to
// strings; drivers return text columns that way. The caller closes rows.
func FromRows(rows *sqlx.Rows) ([]*stencil.Bag, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	bags := []*stencil.Bag{}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", len(bags), err)
		}
		bag := stencil.NewBag()
		for i, col := range cols {
			bag.Set(col, columnValue(values[i]))
		}
		bags = append(bags, bag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return bags, nil
}

// Query runs query and returns one bag per row.
func Query(ctx context.Context, db sqlx.QueryerContext, query string, args ...any) ([]*stencil.Bag, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return FromRows(rows)
}

func columnValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
