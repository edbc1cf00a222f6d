package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/patric-chuzhbe/usuaris/internal/db/memorystorage"
	"github.com/patric-chuzhbe/usuaris/internal/models"
	"github.com/patric-chuzhbe/usuaris/internal/service"
)

func newExampleServer() *httptest.Server {
	db, err := memorystorage.New()
	if err != nil {
		panic(err)
	}

	store, err := service.New(db, models.IDPolicyLength)
	if err != nil {
		panic(err)
	}

	if _, err := store.Seed(context.Background(), models.SeedUsers()); err != nil {
		panic(err)
	}

	theRouter, err := New(store, models.DefaultAttributeName)
	if err != nil {
		panic(err)
	}

	return httptest.NewServer(theRouter)
}

func printResponse(resp *http.Response) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}

	fmt.Println("Status Code:", resp.StatusCode)
	fmt.Println("Body:", string(body))
}

func ExampleRouter_GetUsuaris() {
	server := newExampleServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/usuaris?nom=Maria&edat=25")
	if err != nil {
		panic(err)
	}
	printResponse(resp)

	// Output:
	// Status Code: 200
	// Body: [{"id":2,"nom":"Maria","edat":25}]
}

func ExampleRouter_PostUsuaris() {
	server := newExampleServer()
	defer server.Close()

	resp, err := http.Post(server.URL+"/usuaris", "application/json", strings.NewReader(`{"nom":"Ramon","edat":50}`))
	if err != nil {
		panic(err)
	}
	printResponse(resp)

	// Output:
	// Status Code: 201
	// Body: {"id":3,"nom":"Ramon","edat":50}
}

func ExampleRouter_DeleteUsuari() {
	server := newExampleServer()
	defer server.Close()

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/usuaris/1", nil)
	if err != nil {
		panic(err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	printResponse(resp)

	resp, err = http.Get(server.URL + "/usuaris/1")
	if err != nil {
		panic(err)
	}
	printResponse(resp)

	// Output:
	// Status Code: 200
	// Body: Usuari 1 esborrat
	// Status Code: 404
	// Body: Usuari no trobat
}
