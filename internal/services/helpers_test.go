package service_test

import (
	"database/sql"
	"fmt"
)

func sqlNoRows() error {
	return fmt.Errorf("query: %w", sql.ErrNoRows)
}
