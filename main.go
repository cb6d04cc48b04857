package main

import (
	"context"
	"os"

	"perpus/cmd"
	"perpus/log"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.GetLogger(context.Background()).WithError(err).Errorln("perpus failed")
		os.Exit(1)
	}
}
