package postgres

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/hightouchio/portmanager/keystore"
	"github.com/hightouchio/portmanager/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// TableName is created by the embedded migrations.
const TableName = "portmanager.backups"

// Keystore shares backups through a Postgres table.
type Keystore struct {
	db        *sqlx.DB
	tableName string
}

// Connect opens the database at uri and applies the backup schema migrations.
func Connect(ctx context.Context, uri string) (Keystore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", uri)
	if err != nil {
		return Keystore{}, errors.Wrap(err, "could not connect to postgres")
	}

	applied, err := ApplyMigrations(db.DB)
	if err != nil {
		_ = db.Close()
		return Keystore{}, errors.Wrap(err, "could not apply migrations")
	}
	if applied {
		log.GetLogger(ctx).WithField("table", TableName).Info("applied keystore migrations")
	}
	return New(db), nil
}

func New(db *sqlx.DB) Keystore {
	return Keystore{
		db:        db,
		tableName: TableName,
	}
}

func (p Keystore) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	query, args, err := psql.Select("contents").From(p.tableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return []byte{}, errors.Wrap(err, "could not generate SQL")
	}

	var contents []byte
	switch err := p.db.QueryRowxContext(ctx, query, args...).Scan(&contents); err {
	case nil:
		return contents, nil
	case sql.ErrNoRows:
		return []byte{}, keystore.ErrNotFound
	default:
		return []byte{}, err
	}
}

func (p Keystore) Set(ctx context.Context, id uuid.UUID, contents []byte) error {
	query, args, err := psql.Insert(p.tableName).
		Columns("id", "contents").
		Values(id, contents).
		Suffix("ON CONFLICT(id) DO UPDATE SET contents = EXCLUDED.contents").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "could not generate SQL")
	}
	_, err = p.db.ExecContext(ctx, query, args...)
	return err
}

func (p Keystore) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := psql.Delete(p.tableName).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "could not generate SQL")
	}
	_, err = p.db.ExecContext(ctx, query, args...)
	return err
}

func (p Keystore) Close() error {
	return p.db.Close()
}
