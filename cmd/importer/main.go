// Команда importer загружает CSV-выгрузку датасета в PostgreSQL, заменяя текущие данные.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"time"

	config "github.com/DRSN-tech/starmatch-backend/internal/cfg"
	"github.com/DRSN-tech/starmatch-backend/internal/importer"
	"github.com/DRSN-tech/starmatch-backend/internal/repository/pgdb"
	"github.com/DRSN-tech/starmatch-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/DRSN-tech/starmatch-backend/pkg/postgres"
)

func main() {
	dir := flag.String("dir", "assets/data", "directory with the csv export")
	joined := flag.String("joined", "joined.csv", "co-occurrence table file name")
	personas := flag.String("personas", "personas.csv", "artist persona file name, empty to skip")
	brands := flag.String("brands", "brand_descriptions.csv", "brand description file name, empty to skip")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall import timeout")
	flag.Parse()

	logCfg := config.LoadLogCfg()
	log := logger.NewZerologLogger(logger.Config{Level: logCfg.Level, Format: logCfg.Format, Output: os.Stderr})

	if err := run(log, *dir, *joined, *personas, *brands, *timeout); err != nil {
		log.Errorf(err, "import failed")
		os.Exit(1)
	}
}

func run(log logger.Logger, dir, joined, personas, brands string, timeout time.Duration) error {
	if joined == "" {
		return errors.New("joined file name is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	dbCfg, err := config.LoadPGDBCfg(log)
	if err != nil {
		return err
	}

	db, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(log); err != nil {
		return err
	}

	var closers []func() error
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	open := func(name string) (*importer.Source, error) {
		if name == "" {
			return nil, nil
		}
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		closers = append(closers, f.Close)
		return &importer.Source{Name: name, Reader: f}, nil
	}

	joinedSrc, err := open(joined)
	if err != nil {
		return err
	}
	personaSrc, err := open(personas)
	if err != nil {
		return err
	}
	brandSrc, err := open(brands)
	if err != nil {
		return err
	}

	repo := pgdb.NewDatasetRepo(db.Pool, converter.NewDatasetConverter())
	imp := importer.NewImporter(db.Pool, repo, log)

	start := time.Now()
	ds, err := imp.Import(ctx, importer.Sources{
		Joined:            *joinedSrc,
		Personas:          personaSrc,
		BrandDescriptions: brandSrc,
	})
	if err != nil {
		return err
	}

	log.Infof("Import finished: rows=%d, personas=%d, brand_descriptions=%d, took=%s",
		len(ds.Rows), len(ds.Personas), len(ds.BrandDescriptions), time.Since(start))
	return nil
}
