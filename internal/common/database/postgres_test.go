package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfilesTable(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  string
	}{
		{"plain name", "profiles", `CREATE TABLE IF NOT EXISTS "profiles" (`},
		{"hostile name stays one identifier", `profiles"; DROP TABLE users; --`, `CREATE TABLE IF NOT EXISTS "profiles""; DROP TABLE users; --" (`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(regexp.QuoteMeta(tt.want)).WillReturnResult(sqlmock.NewResult(0, 0))

			c := &PostgresClient{DB: db}
			require.NoError(t, c.EnsureProfilesTable(context.Background(), tt.table))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
