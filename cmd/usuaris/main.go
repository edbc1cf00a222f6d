// Command usuaris runs the user records service.
package main

import (
	"log"

	"github.com/patric-chuzhbe/usuaris/internal/app"
	"github.com/patric-chuzhbe/usuaris/internal/config"
)

func run(configOptions ...config.InitOption) error {
	application, err := app.New(configOptions...)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Run()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
