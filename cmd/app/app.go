package main

import (
	"os"

	"github.com/DRSN-tech/starmatch-backend/internal/app"
	config "github.com/DRSN-tech/starmatch-backend/internal/cfg"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
)

//	@title			StarMatch API
//	@version		1.0
//	@description	Подбор знаменитостей для брендов по эмбеддингам.
//	@BasePath		/api/v1
func main() {
	logCfg := config.LoadLogCfg()
	log := logger.NewZerologLogger(logger.Config{
		Level:  logCfg.Level,
		Format: logCfg.Format,
		Output: os.Stderr,
	})

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
