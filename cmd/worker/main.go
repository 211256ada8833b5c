package main

import (
	"log"

	"fitfest/pkg/bootstrap"
	"fitfest/pkg/worker"

	"github.com/hibiken/asynq"
)

func main() {
	// init config
	app := bootstrap.App()

	// Create an asynq server.
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: app.Cache.Options().Addr},
		asynq.Config{Concurrency: 10},
	)

	mux := asynq.NewServeMux()

	handler := worker.NewAuditTaskHandler(app.Conn)
	worker.RegisterTaskHandler(mux, handler)

	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
