// Package mysqldb stores the record collection in MySQL through gorm.
// The schema is created with AutoMigrate.
package mysqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/patric-chuzhbe/usuaris/internal/models"
)

const (
	defaultConnectionTimeout = 10 * time.Second
	counterName              = "usuaris"
)

type userRow struct {
	Pos    uint64  `gorm:"column:pos;primaryKey;autoIncrement"`
	UserID int64   `gorm:"column:id;not null;index:usuaris_id_idx"`
	Nom    *string `gorm:"column:nom;type:text"`
	Attr   *int64  `gorm:"column:attr"`
}

func (userRow) TableName() string {
	return "usuaris"
}

func (row userRow) toModel() models.User {
	return models.User{
		ID:   row.UserID,
		Nom:  row.Nom,
		Attr: row.Attr,
	}
}

type idCounterRow struct {
	Name  string `gorm:"column:name;primaryKey;size:32"`
	Value int64  `gorm:"column:value;not null"`
}

func (idCounterRow) TableName() string {
	return "usuaris_id_counter"
}

// MySQLDB is a gorm-backed record storage.
type MySQLDB struct {
	db                *gorm.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

type InitOption func(*initOptions)

// WithDBPreReset drops the service tables before migrating.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New opens the MySQL connection described by dsn and migrates the schema.
func New(
	ctx context.Context,
	dsn string,
	connectionTimeout time.Duration,
	optionsProto ...InitOption,
) (*MySQLDB, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if connectionTimeout <= 0 {
		connectionTimeout = defaultConnectionTimeout
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("in internal/db/mysqldb/mysqldb.go/New(): error while `gorm.Open()` calling: %w", err)
	}

	result := &MySQLDB{
		db:                db,
		connectionTimeout: connectionTimeout,
	}

	if err := result.Ping(ctx); err != nil {
		return nil, fmt.Errorf("in internal/db/mysqldb/mysqldb.go/New(): error while `result.Ping()` calling: %w", err)
	}

	migrator := db.WithContext(ctx).Migrator()
	if options.DBPreReset {
		if err := migrator.DropTable(&userRow{}, &idCounterRow{}); err != nil {
			return nil, fmt.Errorf("in internal/db/mysqldb/mysqldb.go/New(): error while `DropTable()` calling: %w", err)
		}
	}

	if err := migrator.AutoMigrate(&userRow{}, &idCounterRow{}); err != nil {
		return nil, fmt.Errorf("in internal/db/mysqldb/mysqldb.go/New(): error while `AutoMigrate()` calling: %w", err)
	}

	return result, nil
}

func (s *MySQLDB) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.connectionTimeout)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

func (s *MySQLDB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *MySQLDB) ListUsers(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := s.db.WithContext(ctx).Order("pos").Find(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]models.User, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}

	return result, nil
}

func (s *MySQLDB) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&userRow{}).Count(&count).Error

	return count, err
}

func (s *MySQLDB) InsertUser(ctx context.Context, usr models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Create(&userRow{
			UserID: usr.ID,
			Nom:    usr.Nom,
			Attr:   usr.Attr,
		}).Error
		if err != nil {
			return err
		}

		counter, err := lockCounter(tx)
		if err != nil {
			return err
		}
		if usr.ID <= counter.Value {
			return nil
		}

		counter.Value = usr.ID
		return tx.Save(counter).Error
	})
}

func lockCounter(tx *gorm.DB) (*idCounterRow, error) {
	counter := idCounterRow{Name: counterName}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		FirstOrCreate(&counter, idCounterRow{Name: counterName}).Error
	if err != nil {
		return nil, err
	}

	return &counter, nil
}

func (s *MySQLDB) firstRow(tx *gorm.DB, id int64) (*userRow, error) {
	var row userRow
	err := tx.Where("id = ?", id).Order("pos").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (s *MySQLDB) FindUserByID(ctx context.Context, id int64) (models.User, bool, error) {
	row, err := s.firstRow(s.db.WithContext(ctx), id)
	if err != nil || row == nil {
		return models.User{}, false, err
	}

	return row.toModel(), true, nil
}

func (s *MySQLDB) ReplaceUser(
	ctx context.Context,
	id int64,
	payload models.UserPayload,
) (models.User, bool, error) {
	var result *userRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.firstRow(tx, id)
		if err != nil || row == nil {
			return err
		}

		row.Nom = payload.Nom
		row.Attr = payload.Attr
		if err := tx.Save(row).Error; err != nil {
			return err
		}

		result = row
		return nil
	})
	if err != nil || result == nil {
		return models.User{}, false, err
	}

	return result.toModel(), true, nil
}

func (s *MySQLDB) DeleteUserByID(ctx context.Context, id int64) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.firstRow(tx, id)
		if err != nil || row == nil {
			return err
		}

		if err := tx.Delete(row).Error; err != nil {
			return err
		}

		deleted = true
		return nil
	})

	return deleted, err
}

func (s *MySQLDB) NextSequenceID(ctx context.Context) (int64, error) {
	var next int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		counter, err := lockCounter(tx)
		if err != nil {
			return err
		}

		var maxID int64
		if err := tx.Model(&userRow{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}

		if maxID > counter.Value {
			counter.Value = maxID
		}
		counter.Value++

		if err := tx.Save(counter).Error; err != nil {
			return err
		}

		next = counter.Value
		return nil
	})

	return next, err
}
