// Package jsondb keeps the record collection in memory and persists it to
// a JSON file when the storage is closed.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/patric-chuzhbe/usuaris/internal/models"
)

type JSONDB struct {
	fileName string
	Cache    CacheStruct
}

type CacheStruct struct {
	Users     []models.User
	LastSeqID int64
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": [],
	"LastSeqID": 0
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	if _, err = file.Write(jsonData); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New loads the collection from fileName, creating an empty file when it
// does not exist yet.
func New(fileName string) (*JSONDB, error) {
	db := JSONDB{
		fileName: fileName,
		Cache:    CacheStruct{},
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("in internal/db/jsondb/jsondb.go/New(): error while `parseJSONFile()` calling: %w", err)
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}

	return &db, nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

func (db *JSONDB) Close() error {
	return writeToJSONFile(db.fileName, db.Cache)
}

func (db *JSONDB) ListUsers(ctx context.Context) ([]models.User, error) {
	result := make([]models.User, len(db.Cache.Users))
	copy(result, db.Cache.Users)

	return result, nil
}

func (db *JSONDB) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(db.Cache.Users)), nil
}

func (db *JSONDB) InsertUser(ctx context.Context, usr models.User) error {
	db.Cache.Users = append(db.Cache.Users, usr)
	if usr.ID > db.Cache.LastSeqID {
		db.Cache.LastSeqID = usr.ID
	}

	return nil
}

func (db *JSONDB) indexOf(id int64) int {
	for i, usr := range db.Cache.Users {
		if usr.ID == id {
			return i
		}
	}
	return -1
}

func (db *JSONDB) FindUserByID(ctx context.Context, id int64) (models.User, bool, error) {
	index := db.indexOf(id)
	if index == -1 {
		return models.User{}, false, nil
	}

	return db.Cache.Users[index], true, nil
}

func (db *JSONDB) ReplaceUser(
	ctx context.Context,
	id int64,
	payload models.UserPayload,
) (models.User, bool, error) {
	index := db.indexOf(id)
	if index == -1 {
		return models.User{}, false, nil
	}

	db.Cache.Users[index].Nom = payload.Nom
	db.Cache.Users[index].Attr = payload.Attr

	return db.Cache.Users[index], true, nil
}

func (db *JSONDB) DeleteUserByID(ctx context.Context, id int64) (bool, error) {
	index := db.indexOf(id)
	if index == -1 {
		return false, nil
	}

	db.Cache.Users = append(db.Cache.Users[:index], db.Cache.Users[index+1:]...)

	return true, nil
}

func (db *JSONDB) NextSequenceID(ctx context.Context) (int64, error) {
	next := db.Cache.LastSeqID
	for _, usr := range db.Cache.Users {
		if usr.ID > next {
			next = usr.ID
		}
	}
	next++
	db.Cache.LastSeqID = next

	return next, nil
}
