package main

import (
	"github.com/JayKakadiya/ui-plugin-samples/internal/server"
	"github.com/JayKakadiya/ui-plugin-samples/internal/util"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  util.GetEnvBool("DEBUG", false),
		JSON:   util.GetEnvString("LOG_FORMAT", "text") == "json",
		Prefix: "server",
	})
	logger.Init(consoleLogger)

	server.Init()
}
