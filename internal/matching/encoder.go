package matching

import (
	"strings"

	"github.com/DRSN-tech/starmatch-backend/internal/domain"
)

// Смещения блоков в векторе признаков бренда.
const (
	genderOffset   = domain.BrandDim
	ageOffset      = domain.BrandDim + 1
	categoryOffset = domain.BrandDim + domain.DemographicDim
)

// Значения признака пола при синтезе вектора бренда.
const (
	genderMaleValue    = 1.0
	genderFemaleValue  = 0.0
	genderNeutralValue = 0.5
)

// EncodeBrandRow строит вектор признаков бренда из строки таблицы.
// Раскладка: [эмбеддинг бренда][пол][8 возрастных корзин][13 категорий].
func EncodeBrandRow(row domain.JoinedRow) []float32 {
	feat := make([]float32, domain.BrandFeatureDim)

	copy(feat[:domain.BrandDim], row.BrandVector)
	feat[genderOffset] = row.Gender
	for i, v := range row.AgeBuckets {
		feat[ageOffset+i] = v
	}
	for i, v := range row.Categories {
		feat[categoryOffset+i] = v
	}

	return feat
}

// EncodeBrandFromEmbedding синтезирует вектор признаков бренда для свободного текста,
// когда строки в таблице нет. Эмбеддинг обрезается или дополняется нулями до BrandDim,
// неизвестные категории игнорируются.
//
// Возрастные корзины здесь — мягкий сигнал: корзина включается при любом пересечении с окном.
// Без возрастного фильтра все корзины остаются нулевыми.
func EncodeBrandFromEmbedding(embedding []float32, gender domain.Gender, window domain.AgeWindow, categories []string) []float32 {
	feat := make([]float32, domain.BrandFeatureDim)

	n := min(len(embedding), domain.BrandDim)
	copy(feat[:n], embedding[:n])

	switch gender {
	case domain.GenderMale:
		feat[genderOffset] = genderMaleValue
	case domain.GenderFemale:
		feat[genderOffset] = genderFemaleValue
	default:
		feat[genderOffset] = genderNeutralValue
	}

	if window.IsSet() {
		for i, bucket := range domain.AgeBuckets {
			if bucketOverlaps(bucket, window) {
				feat[ageOffset+i] = 1
			}
		}
	}

	for _, name := range categories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for i, vocab := range domain.ProductCategories {
			if strings.EqualFold(vocab, name) {
				feat[categoryOffset+i] = 1
			}
		}
	}

	return feat
}

// bucketOverlaps — нестрогая проверка пересечения корзины [lo, hi) с окном.
// Отсутствующая граница окна заменяется соответствующей границей самой корзины.
func bucketOverlaps(bucket domain.AgeBucket, window domain.AgeWindow) bool {
	qMin, qMax := bucket.Lo, bucket.Hi
	if window.Min != nil {
		qMin = *window.Min
	}
	if window.Max != nil {
		qMax = *window.Max
	}

	return !(bucket.Hi <= qMin || bucket.Lo >= qMax)
}

// bucketContained — строгая проверка: корзина целиком лежит внутри окна.
// Отсутствующая граница окна считается неограниченной.
func bucketContained(bucket domain.AgeBucket, window domain.AgeWindow) bool {
	const unbounded = 1_000_000_000

	qMin, qMax := -unbounded, unbounded
	if window.Min != nil {
		qMin = *window.Min
	}
	if window.Max != nil {
		qMax = *window.Max
	}

	return bucket.Lo >= qMin && bucket.Hi <= qMax
}
