package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"akifune.dev/relay"
)

var (
	flagAddr   = flag.String("addr", ":8787", "listen address")
	flagOrigin = flag.String("origin", relay.DefaultOrigin, "upstream origin to relay to")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	handler := relay.New()
	handler.Origin = *flagOrigin

	server := &http.Server{
		Addr:              *flagAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("relay: listening", "addr", *flagAddr, "origin", *flagOrigin)
	return server.ListenAndServe()
}
