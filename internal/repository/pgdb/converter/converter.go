package converter

import (
	"fmt"

	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
)

// DatasetConverter преобразует строки датасета между domain и моделями PostgreSQL.
type DatasetConverter struct{}

func NewDatasetConverter() DatasetConverter {
	return DatasetConverter{}
}

// ToEntity проверяет размерности массивов и собирает domain.JoinedRow.
func (DatasetConverter) ToEntity(model *JoinedRowModel) (*domain.JoinedRow, error) {
	if len(model.AgeBuckets) != domain.AgeBucketCount {
		return nil, fmt.Errorf("%w: row %d has %d age buckets", e.ErrDimensionMismatch, model.RowIdx, len(model.AgeBuckets))
	}
	if len(model.Categories) != domain.CategoryDim {
		return nil, fmt.Errorf("%w: row %d has %d categories", e.ErrDimensionMismatch, model.RowIdx, len(model.Categories))
	}

	var buckets [domain.AgeBucketCount]float32
	copy(buckets[:], model.AgeBuckets)
	var cats [domain.CategoryDim]float32
	copy(cats[:], model.Categories)

	return domain.NewJoinedRow(model.Brand, model.Artist, model.BrandVector, model.Gender, buckets, cats, model.ArtistVector), nil
}

// ToModel превращает строку датасета с индексом idx в модель таблицы.
func (DatasetConverter) ToModel(idx int, row *domain.JoinedRow) *JoinedRowModel {
	return &JoinedRowModel{
		RowIdx:       idx,
		Brand:        row.Brand,
		Artist:       row.Artist,
		BrandVector:  row.BrandVector,
		Gender:       row.Gender,
		AgeBuckets:   row.AgeBuckets[:],
		Categories:   row.Categories[:],
		ArtistVector: row.ArtistVector,
	}
}
