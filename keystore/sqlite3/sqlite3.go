package sqlite3

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/hightouchio/portmanager/keystore"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Sqlite3 keeps backups in a local database file, which makes it the default
// backend for a single machine.
type Sqlite3 struct {
	db        *sql.DB
	tableName string
	builder   sq.StatementBuilderType
}

func New(path string, tableName string) (*Sqlite3, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "could not create database directory")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open sqlite3 file")
	}

	k := &Sqlite3{
		db:        db,
		tableName: tableName,
		builder:   sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	if err := k.initTables(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "could not init tables")
	}

	return k, nil
}

// init the internal schema
func (k *Sqlite3) initTables() error {
	_, err := k.db.Exec(`CREATE TABLE IF NOT EXISTS ` + k.tableName + `(
		id       VARCHAR(36) NOT NULL PRIMARY KEY,
		contents BLOB
	);`)
	return err
}

func (k *Sqlite3) Get(ctx context.Context, id uuid.UUID) ([]byte, error) {
	query, args, err := k.builder.Select("contents").From(k.tableName).Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return []byte{}, errors.Wrap(err, "could not generate SQL")
	}

	var contents []byte
	switch err := k.db.QueryRowContext(ctx, query, args...).Scan(&contents); err {
	case nil:
		return contents, nil
	case sql.ErrNoRows:
		return []byte{}, keystore.ErrNotFound
	default:
		return []byte{}, err
	}
}

func (k *Sqlite3) Set(ctx context.Context, id uuid.UUID, contents []byte) error {
	query, args, err := k.builder.Insert(k.tableName).
		Columns("id", "contents").
		Values(id.String(), contents).
		Suffix("ON CONFLICT(id) DO UPDATE SET contents = excluded.contents").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "could not generate SQL")
	}
	_, err = k.db.ExecContext(ctx, query, args...)
	return err
}

func (k *Sqlite3) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := k.builder.Delete(k.tableName).Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return errors.Wrap(err, "could not generate SQL")
	}
	_, err = k.db.ExecContext(ctx, query, args...)
	return err
}

func (k *Sqlite3) Close() error {
	return k.db.Close()
}
