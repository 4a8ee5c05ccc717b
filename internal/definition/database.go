package definition

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const selectDefinitions = `SELECT id, name, element_types, filter FROM definition ORDER BY id`

// FetchFromDatabase loads and initializes all definitions of the definition table.
//
// Fails if any of the stored definitions is malformed.
func FetchFromDatabase(ctx context.Context, db *sqlx.DB) ([]*Definition, error) {
	var definitions []*Definition
	if err := db.SelectContext(ctx, &definitions, db.Rebind(selectDefinitions)); err != nil {
		return nil, err
	}

	for _, d := range definitions {
		if err := d.Init(); err != nil {
			return nil, err
		}
	}

	return definitions, nil
}

// Fetcher returns a fetch function for Registry.Update bound to the given database.
func Fetcher(db *sqlx.DB) func(ctx context.Context) ([]*Definition, error) {
	return func(ctx context.Context) ([]*Definition, error) {
		return FetchFromDatabase(ctx, db)
	}
}
