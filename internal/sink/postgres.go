package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mobile-forms/internal/common/auth"
	commonerrors "mobile-forms/internal/common/errors"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/profileform"

	"github.com/lib/pq"
)

// PasswordHasher turns the plaintext password into the stored form.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// PostgresSink inserts one row per submission. Only the argon2id hash of the
// password reaches the table.
type PostgresSink struct {
	db     *sql.DB
	table  string
	hasher PasswordHasher
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresSink(db *sql.DB, table string, hasher PasswordHasher, log logger.Logger) *PostgresSink {
	if hasher == nil {
		hasher = auth.NewHasher(auth.DefaultParams)
	}
	return &PostgresSink{
		db:     db,
		table:  table,
		hasher: hasher,
		logger: log,
		now:    time.Now,
	}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Submit(ctx context.Context, values profileform.FormValues) error {
	rec := newRecord(values, s.now())

	hash, err := s.hasher.Hash(values.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(id, full_name, email, phone, passport_number, password_hash, avatar_uri, accepted_terms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, pq.QuoteIdentifier(s.table))

	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.FullName,
		rec.Email,
		nullString(rec.Phone),
		rec.PassportNumber,
		hash,
		nullString(rec.AvatarURI),
		rec.AcceptTerms,
		rec.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", commonerrors.NewDatabaseInsertFailedError(err), err)
	}

	s.logger.Info("profile stored", map[string]interface{}{
		"id":    rec.ID,
		"table": s.table,
	})
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
