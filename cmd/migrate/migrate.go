package main

import (
	"log"

	"fitfest/pkg/bootstrap"
	"fitfest/pkg/model"
)

func main() {
	env := bootstrap.NewEnv()
	db := bootstrap.NewDB(env)
	err := db.AutoMigrate(
		&model.User{},
		&model.AuthAuditLog{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
