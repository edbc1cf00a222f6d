// Package examples shows how the record store is driven directly, without
// a transport in front of it.
package examples

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/usuaris/internal/db/memorystorage"
	"github.com/patric-chuzhbe/usuaris/internal/models"
	"github.com/patric-chuzhbe/usuaris/internal/service"
)

func newSeededStore(idPolicy string) *service.Service {
	db, err := memorystorage.New()
	if err != nil {
		panic(err)
	}

	store, err := service.New(db, idPolicy)
	if err != nil {
		panic(err)
	}

	if _, err := store.Seed(context.Background(), models.SeedUsers()); err != nil {
		panic(err)
	}

	return store
}

func ptr[T any](v T) *T {
	return &v
}

func printUser(format models.RecordFormat, usr models.User) {
	body, err := format.MarshalUser(usr)
	if err != nil {
		panic(err)
	}
	fmt.Println(string(body))
}

func Example_filter() {
	ctx := context.Background()
	store := newSeededStore(models.IDPolicyLength)

	users, err := store.Filter(ctx, models.Filter{Nom: ptr("Maria"), Attr: ptr("25")})
	if err != nil {
		panic(err)
	}
	fmt.Println(len(users), *users[0].Nom)

	_, err = store.Filter(ctx, models.Filter{Nom: ptr("Pere")})
	fmt.Println(errors.Is(err, service.ErrNoUsersMatched))

	// Output:
	// 1 Maria
	// true
}

func Example_lengthPolicyReusesIDs() {
	ctx := context.Background()
	store := newSeededStore(models.IDPolicyLength)
	format := models.NewRecordFormat("edat")

	if err := store.Delete(ctx, 1); err != nil {
		panic(err)
	}

	usr, err := store.Create(ctx, models.UserPayload{Nom: ptr("Ramon"), Attr: ptr(int64(50))})
	if err != nil {
		panic(err)
	}
	printUser(format, usr)

	// Output:
	// {"id":2,"nom":"Ramon","edat":50}
}

func Example_monotonicPolicy() {
	ctx := context.Background()
	store := newSeededStore(models.IDPolicyMonotonic)
	format := models.NewRecordFormat("alcada")

	if err := store.Delete(ctx, 1); err != nil {
		panic(err)
	}

	usr, err := store.Create(ctx, models.UserPayload{Nom: ptr("Ramon"), Attr: ptr(int64(180))})
	if err != nil {
		panic(err)
	}
	printUser(format, usr)

	// Output:
	// {"id":3,"nom":"Ramon","alcada":180}
}

func Example_fullReplace() {
	ctx := context.Background()
	store := newSeededStore(models.IDPolicyLength)
	format := models.NewRecordFormat("edat")

	usr, err := store.Update(ctx, 1, models.UserPayload{Nom: ptr("Jana")})
	if err != nil {
		panic(err)
	}
	printUser(format, usr)

	_, err = store.Update(ctx, 9, models.UserPayload{})
	fmt.Println(errors.Is(err, service.ErrUserNotFound))

	// Output:
	// {"id":1,"nom":"Jana"}
	// true
}
