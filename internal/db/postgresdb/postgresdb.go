// Package postgresdb provides a PostgreSQL-based implementation of the
// record storage. Insertion order is kept by a surrogate serial column,
// since record ids are not guaranteed to be unique.
package postgresdb

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/usuaris/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	migrationsDir            = "migrations"
	defaultConnectionTimeout = 10 * time.Second
)

// PostgresDB is a PostgreSQL-backed record storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

type InitOption func(*initOptions)

// WithDBPreReset drops every table of the service before migrating, which
// gives tests an empty collection.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if connectionTimeout <= 0 {
		connectionTimeout = defaultConnectionTimeout
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `result.Ping()` calling: %w",
				err,
			)
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.UpContext(ctx, result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.Up()` calling: %w",
				err,
			)
	}

	return result, nil
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`DROP TABLE IF EXISTS usuaris, usuaris_id_counter, goose_db_version`,
	)
	return err
}

// Ping checks the connection within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctx)
}

// Close closes the underlying database connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

// ListUsers returns every record in insertion order.
func (db *PostgresDB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, nom, attr FROM usuaris ORDER BY pos`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.User{}
	for rows.Next() {
		var usr models.User
		if err := rows.Scan(&usr.ID, &usr.Nom, &usr.Attr); err != nil {
			return nil, err
		}
		result = append(result, usr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CountUsers returns the number of stored records.
func (db *PostgresDB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := db.database.QueryRowContext(ctx, `SELECT COUNT(*) FROM usuaris`).Scan(&count)

	return count, err
}

// InsertUser appends a record and moves the id counter past its id.
func (db *PostgresDB) InsertUser(ctx context.Context, usr models.User) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			WITH inserted AS (
				INSERT INTO usuaris (id, nom, attr) VALUES ($1, $2, $3) RETURNING id
			)
			UPDATE usuaris_id_counter
				SET value = GREATEST(value, (SELECT id FROM inserted))
		`,
		usr.ID,
		usr.Nom,
		usr.Attr,
	)

	return err
}

// FindUserByID returns the earliest inserted record carrying id.
func (db *PostgresDB) FindUserByID(ctx context.Context, id int64) (models.User, bool, error) {
	var usr models.User
	err := db.database.QueryRowContext(
		ctx,
		`SELECT id, nom, attr FROM usuaris WHERE id = $1 ORDER BY pos LIMIT 1`,
		id,
	).Scan(&usr.ID, &usr.Nom, &usr.Attr)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}

	return usr, true, nil
}

// ReplaceUser overwrites nom and attr of the earliest record carrying id.
func (db *PostgresDB) ReplaceUser(
	ctx context.Context,
	id int64,
	payload models.UserPayload,
) (models.User, bool, error) {
	var usr models.User
	err := db.database.QueryRowContext(
		ctx,
		`
			UPDATE usuaris
				SET nom = $2, attr = $3
				WHERE pos = (SELECT pos FROM usuaris WHERE id = $1 ORDER BY pos LIMIT 1)
				RETURNING id, nom, attr
		`,
		id,
		payload.Nom,
		payload.Attr,
	).Scan(&usr.ID, &usr.Nom, &usr.Attr)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}

	return usr, true, nil
}

// DeleteUserByID removes the earliest record carrying id.
func (db *PostgresDB) DeleteUserByID(ctx context.Context, id int64) (bool, error) {
	result, err := db.database.ExecContext(
		ctx,
		`
			DELETE FROM usuaris
				WHERE pos = (SELECT pos FROM usuaris WHERE id = $1 ORDER BY pos LIMIT 1)
		`,
		id,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// NextSequenceID bumps the persistent counter past every stored id.
func (db *PostgresDB) NextSequenceID(ctx context.Context) (int64, error) {
	var next int64
	err := db.database.QueryRowContext(
		ctx,
		`
			UPDATE usuaris_id_counter
				SET value = GREATEST(value, (SELECT COALESCE(MAX(id), 0) FROM usuaris)) + 1
				RETURNING value
		`,
	).Scan(&next)

	return next, err
}
