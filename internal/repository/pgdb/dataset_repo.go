package pgdb

import (
	"context"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// Querier — часть API пула, нужная репозиторию (pgxpool.Pool или pgxmock).
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var joinedRowColumns = []string{
	"row_idx", "brand", "artist", "brand_vector", "gender", "age_buckets", "categories", "artist_vector",
}

// DatasetRepo читает и перезаписывает табличный датасет в PostgreSQL.
type DatasetRepo struct {
	pool Querier
	conv converter.DatasetConverter
}

func NewDatasetRepo(pool Querier, conv converter.DatasetConverter) *DatasetRepo {
	return &DatasetRepo{
		pool: pool,
		conv: conv,
	}
}

// LoadDataset возвращает все строки в порядке датасета вместе с описаниями.
func (d *DatasetRepo) LoadDataset(ctx context.Context) (*catalog.Dataset, error) {
	rows, err := d.loadRows(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	personas, err := d.loadPersonas(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	descs, err := d.loadBrandDescriptions(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &catalog.Dataset{
		Rows:              rows,
		Personas:          personas,
		BrandDescriptions: descs,
	}, nil
}

func (d *DatasetRepo) loadRows(ctx context.Context) ([]domain.JoinedRow, error) {
	query := `
		SELECT row_idx, COALESCE(brand, ''), artist, brand_vector, gender, age_buckets, categories, artist_vector
		FROM joined_rows
		ORDER BY row_idx
	`

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.JoinedRow, 0)
	for rows.Next() {
		var m converter.JoinedRowModel
		if err := rows.Scan(&m.RowIdx, &m.Brand, &m.Artist, &m.BrandVector, &m.Gender,
			&m.AgeBuckets, &m.Categories, &m.ArtistVector); err != nil {
			return nil, err
		}

		row, err := d.conv.ToEntity(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, *row)
	}

	return result, rows.Err()
}

func (d *DatasetRepo) loadPersonas(ctx context.Context) ([]domain.Persona, error) {
	rows, err := d.pool.Query(ctx, `SELECT artist, persona FROM artist_personas ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Persona, 0)
	for rows.Next() {
		var m converter.PersonaModel
		if err := rows.Scan(&m.Artist, &m.Persona); err != nil {
			return nil, err
		}
		result = append(result, domain.Persona{Artist: m.Artist, Text: m.Persona})
	}

	return result, rows.Err()
}

func (d *DatasetRepo) loadBrandDescriptions(ctx context.Context) ([]domain.BrandDescription, error) {
	rows, err := d.pool.Query(ctx, `SELECT brand, description FROM brand_descriptions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.BrandDescription, 0)
	for rows.Next() {
		var m converter.BrandDescriptionModel
		if err := rows.Scan(&m.Brand, &m.Description); err != nil {
			return nil, err
		}
		result = append(result, domain.BrandDescription{Brand: m.Brand, Text: m.Description})
	}

	return result, rows.Err()
}

// ReplaceDataset заменяет весь датасет. Вызывается внутри транзакции из контекста.
func (d *DatasetRepo) ReplaceDataset(ctx context.Context, dataset *catalog.Dataset) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := tx.Exec(ctx, `TRUNCATE joined_rows, artist_personas, brand_descriptions RESTART IDENTITY`); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	joined := make([][]any, len(dataset.Rows))
	for i := range dataset.Rows {
		m := d.conv.ToModel(i, &dataset.Rows[i])
		var brand any
		if m.Brand != "" {
			brand = m.Brand
		}
		joined[i] = []any{m.RowIdx, brand, m.Artist, m.BrandVector, m.Gender, m.AgeBuckets, m.Categories, m.ArtistVector}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"joined_rows"}, joinedRowColumns, pgx.CopyFromRows(joined)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	personas := make([][]any, len(dataset.Personas))
	for i, p := range dataset.Personas {
		personas[i] = []any{p.Artist, p.Text}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"artist_personas"}, []string{"artist", "persona"}, pgx.CopyFromRows(personas)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	descs := make([][]any, len(dataset.BrandDescriptions))
	for i, bd := range dataset.BrandDescriptions {
		descs[i] = []any{bd.Brand, bd.Text}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"brand_descriptions"}, []string{"brand", "description"}, pgx.CopyFromRows(descs)); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
