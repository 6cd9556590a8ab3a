package main

import (
	"os"

	"calendar-service/core/logger"
	"calendar-service/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
		os.Exit(1)
	}
}
