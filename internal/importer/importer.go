// Package importer загружает выгрузку датасета из CSV в PostgreSQL одной транзакцией.
package importer

import (
	"context"
	"io"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/DRSN-tech/starmatch-backend/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
)

// DatasetWriter заменяет весь датасет. Транзакция передаётся через контекст.
type DatasetWriter interface {
	ReplaceDataset(ctx context.Context, dataset *catalog.Dataset) error
}

// Source — именованный CSV-поток. Name используется в сообщениях об ошибках.
type Source struct {
	Name   string
	Reader io.Reader
}

// Sources — три файла выгрузки. Personas и BrandDescriptions необязательны.
type Sources struct {
	Joined            Source
	Personas          *Source
	BrandDescriptions *Source
}

type Importer struct {
	dbPool transaction.Transactional
	writer DatasetWriter
	logger logger.Logger
}

func NewImporter(dbPool transaction.Transactional, writer DatasetWriter, logger logger.Logger) *Importer {
	return &Importer{
		dbPool: dbPool,
		writer: writer,
		logger: logger,
	}
}

// Import разбирает все файлы и только затем заменяет данные в БД.
// Ошибка разбора любого файла оставляет БД без изменений.
func (i *Importer) Import(ctx context.Context, src Sources) (*catalog.Dataset, error) {
	const op = "Importer.Import"

	dataset, err := parse(src)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	i.logger.Infof("Parsed dataset: rows=%d, personas=%d, brand_descriptions=%d",
		len(dataset.Rows), len(dataset.Personas), len(dataset.BrandDescriptions))

	err = tr.Run(ctx, i.dbPool, i.logger, func(ctx context.Context) error {
		return i.writer.ReplaceDataset(ctx, dataset)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return dataset, nil
}

func parse(src Sources) (*catalog.Dataset, error) {
	rows, err := ParseJoined(src.Joined.Reader, src.Joined.Name)
	if err != nil {
		return nil, err
	}

	dataset := &catalog.Dataset{Rows: rows}

	if src.Personas != nil {
		if dataset.Personas, err = ParsePersonas(src.Personas.Reader, src.Personas.Name); err != nil {
			return nil, err
		}
	}

	if src.BrandDescriptions != nil {
		if dataset.BrandDescriptions, err = ParseBrandDescriptions(src.BrandDescriptions.Reader, src.BrandDescriptions.Name); err != nil {
			return nil, err
		}
	}

	return dataset, nil
}
