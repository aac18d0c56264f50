package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lobforge/internal/engine"
	"lobforge/internal/wire"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	address := flag.String("address", "0.0.0.0", "address to listen on")
	port := flag.Int("port", 9001, "port to listen on")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	book := engine.New[string, int64, uint64]()
	srv := wire.New(*address, *port, book)

	srv.Run(ctx)
}
