package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	err := newRootCmd().Execute()
	if errors.Is(err, errNotFound) {
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
