// Package catalog содержит неизменяемые справочные данные сервиса: таблицу пар бренд–артист,
// описания, предвычисленную таблицу эмбеддингов знаменитостей и модель brand encoder.
// Catalog строится один раз при старте и безопасно разделяется между запросами без блокировок.
package catalog

import (
	"fmt"
	"math"

	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
)

// Projector — проекционная модель: входной вектор признаков -> эмбеддинг.
type Projector interface {
	Project(features []float32) []float32
}

// ProjectorFunc адаптирует функцию к интерфейсу Projector.
type ProjectorFunc func(features []float32) []float32

func (f ProjectorFunc) Project(features []float32) []float32 {
	return f(features)
}

// Dataset — табличные данные, загруженные из хранилища.
type Dataset struct {
	Rows              []domain.JoinedRow
	Personas          []domain.Persona
	BrandDescriptions []domain.BrandDescription
}

// Catalog — объект-значение со всеми справочными данными.
type Catalog struct {
	rows         []domain.JoinedRow
	byBrand      map[string][]int
	byArtist     map[string][]int
	personas     map[string]string
	brandDescs   map[string]string
	embeddings   [][]float32 // строка i соответствует rows[i], L2-нормирована или нулевая
	brandEncoder Projector
}

// New собирает Catalog. embeddings[i] должен соответствовать dataset.Rows[i].
func New(dataset Dataset, embeddings [][]float32, brandEncoder Projector) (*Catalog, error) {
	const op = "catalog.New"

	if len(embeddings) != len(dataset.Rows) {
		return nil, e.Wrap(op, fmt.Errorf("%w: %d embeddings for %d rows", e.ErrEmbeddingsMismatch, len(embeddings), len(dataset.Rows)))
	}

	c := &Catalog{
		rows:         dataset.Rows,
		byBrand:      make(map[string][]int),
		byArtist:     make(map[string][]int),
		personas:     make(map[string]string, len(dataset.Personas)),
		brandDescs:   make(map[string]string, len(dataset.BrandDescriptions)),
		embeddings:   make([][]float32, len(embeddings)),
		brandEncoder: brandEncoder,
	}

	embDim := -1
	for i, row := range dataset.Rows {
		if len(row.BrandVector) != domain.BrandDim {
			return nil, e.Wrap(op, fmt.Errorf("%w: row %d brand vector has %d dims", e.ErrDimensionMismatch, i, len(row.BrandVector)))
		}

		if embDim == -1 {
			embDim = len(embeddings[i])
		}
		if len(embeddings[i]) != embDim {
			return nil, e.Wrap(op, fmt.Errorf("%w: embedding %d has %d dims, want %d", e.ErrDimensionMismatch, i, len(embeddings[i]), embDim))
		}

		c.embeddings[i] = Normalize(embeddings[i])
		if row.Brand != "" {
			c.byBrand[row.Brand] = append(c.byBrand[row.Brand], i)
		}
		c.byArtist[row.Artist] = append(c.byArtist[row.Artist], i)
	}

	if embDim > 0 && brandEncoder != nil {
		if out := len(brandEncoder.Project(make([]float32, domain.BrandFeatureDim))); out != embDim {
			return nil, e.Wrap(op, fmt.Errorf("%w: brand encoder yields %d dims, embeddings have %d", e.ErrDimensionMismatch, out, embDim))
		}
	}

	// Как и в исходных таблицах, берётся первая запись по ключу
	for _, p := range dataset.Personas {
		if _, ok := c.personas[p.Artist]; !ok {
			c.personas[p.Artist] = p.Text
		}
	}
	for _, d := range dataset.BrandDescriptions {
		if _, ok := c.brandDescs[d.Brand]; !ok {
			c.brandDescs[d.Brand] = d.Text
		}
	}

	return c, nil
}

// ProjectCelebrities проецирует векторы артистов всех строк и нормирует результат.
func ProjectCelebrities(rows []domain.JoinedRow, projector Projector) ([][]float32, error) {
	const op = "catalog.ProjectCelebrities"

	out := make([][]float32, len(rows))
	for i, row := range rows {
		if len(row.ArtistVector) != domain.CelebrityDim {
			return nil, e.Wrap(op, fmt.Errorf("%w: row %d artist vector has %d dims", e.ErrDimensionMismatch, i, len(row.ArtistVector)))
		}
		out[i] = Normalize(projector.Project(row.ArtistVector))
	}

	return out, nil
}

// Len возвращает число строк таблицы эмбеддингов.
func (c *Catalog) Len() int {
	return len(c.rows)
}

// Identity возвращает артиста строки i.
func (c *Catalog) Identity(i int) string {
	return c.rows[i].Artist
}

// Embedding возвращает нормированный эмбеддинг строки i. Срез нельзя изменять.
func (c *Catalog) Embedding(i int) []float32 {
	return c.embeddings[i]
}

// Row возвращает строку i.
func (c *Catalog) Row(i int) domain.JoinedRow {
	return c.rows[i]
}

// BrandRows возвращает все строки бренда.
func (c *Catalog) BrandRows(brand string) ([]domain.JoinedRow, bool) {
	idx, ok := c.byBrand[brand]
	if !ok {
		return nil, false
	}

	rows := make([]domain.JoinedRow, len(idx))
	for i, j := range idx {
		rows[i] = c.rows[j]
	}

	return rows, true
}

// ArtistRowIndexes возвращает индексы строк артиста в порядке датасета.
func (c *Catalog) ArtistRowIndexes(artist string) ([]int, bool) {
	idx, ok := c.byArtist[artist]
	return idx, ok
}

// ArtistRows возвращает все строки артиста.
func (c *Catalog) ArtistRows(artist string) ([]domain.JoinedRow, bool) {
	idx, ok := c.byArtist[artist]
	if !ok {
		return nil, false
	}

	rows := make([]domain.JoinedRow, len(idx))
	for i, j := range idx {
		rows[i] = c.rows[j]
	}

	return rows, true
}

// Persona возвращает описание артиста.
func (c *Catalog) Persona(artist string) (string, bool) {
	p, ok := c.personas[artist]
	return p, ok
}

// BrandDescription возвращает описание бренда.
func (c *Catalog) BrandDescription(brand string) (string, bool) {
	d, ok := c.brandDescs[brand]
	return d, ok
}

// EncodeBrand прогоняет вектор признаков бренда через brand encoder.
func (c *Catalog) EncodeBrand(features []float32) []float32 {
	return c.brandEncoder.Project(features)
}

// Normalize возвращает L2-нормированную копию вектора. Нулевой вектор (и вектор с NaN/Inf
// в норме) становится нулевым, поэтому его сходство с любым вектором равно 0.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return out
	}

	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}

	return out
}
