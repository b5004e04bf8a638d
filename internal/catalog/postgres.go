package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"southern-night/internal/database"
	"southern-night/internal/models"
)

// Querier is the subset of the database handle the loader needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// LoadFromDB reads the menu once. The returned catalog does not track later
// changes to the table.
func LoadFromDB(ctx context.Context, db Querier) (*Catalog, error) {
	rows, err := db.Query(ctx, database.ListMenuEntriesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu entries: %w", err)
	}
	defer rows.Close()

	var entries []models.MenuEntry
	for rows.Next() {
		var e models.MenuEntry
		var category string
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Price, &category, &e.Image); err != nil {
			return nil, fmt.Errorf("failed to scan menu entry: %w", err)
		}
		e.Category = models.Category(category)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read menu entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("menu_items table is empty")
	}

	return New(entries)
}
