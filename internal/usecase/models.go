package usecase

import "github.com/DRSN-tech/starmatch-backend/internal/domain"

// RECOMMEND USECASE

// RecommendForBrandReq — запрос кандидатов для бренда из таблицы.
type RecommendForBrandReq struct {
	Brand   string
	TopK    int
	Filters domain.Filters
}

func NewRecommendForBrandReq(brand string, topK int, filters domain.Filters) *RecommendForBrandReq {
	return &RecommendForBrandReq{Brand: brand, TopK: topK, Filters: filters}
}

// RecommendRes — ранжированный список кандидатов.
type RecommendRes struct {
	Brand   string
	Results []domain.Candidate
}

func NewRecommendRes(brand string, results []domain.Candidate) *RecommendRes {
	return &RecommendRes{Brand: brand, Results: results}
}

// RecommendForDescriptionReq — запрос кандидатов по свободному описанию бренда.
type RecommendForDescriptionReq struct {
	Description string
	Categories  []string
	TopK        int
	Filters     domain.Filters
}

func NewRecommendForDescriptionReq(description string, categories []string, topK int, filters domain.Filters) *RecommendForDescriptionReq {
	return &RecommendForDescriptionReq{
		Description: description,
		Categories:  categories,
		TopK:        topK,
		Filters:     filters,
	}
}

// DescriptionRes — ответ на запрос по описанию. PrimaryBrand и SimilarBrands
// сохраняются для совместимости клиентов и всегда пусты.
type DescriptionRes struct {
	PrimaryBrand  string
	SimilarBrands []string
	Results       []domain.Candidate
}

func NewDescriptionRes(results []domain.Candidate) *DescriptionRes {
	return &DescriptionRes{SimilarBrands: []string{}, Results: results}
}

// CandidateDetailReq — запрос карточки артиста. Brand необязателен.
type CandidateDetailReq struct {
	Artist string
	Brand  string
}

func NewCandidateDetailReq(artist, brand string) *CandidateDetailReq {
	return &CandidateDetailReq{Artist: artist, Brand: brand}
}

// CandidateDetailRes — карточка артиста.
type CandidateDetailRes struct {
	Name           string
	Score          float64
	Persona        string
	ReasonText     string
	PastBrands     []string
	SimilarArtists []string
}

// ExplainReq — запрос текста-обоснования для пары бренд/артист.
// BrandDescription и Score переопределяют значения из каталога.
type ExplainReq struct {
	Brand            string
	Artist           string
	BrandDescription string
	Score            *float64
}

func NewExplainReq(brand, artist, brandDescription string, score *float64) *ExplainReq {
	return &ExplainReq{
		Brand:            brand,
		Artist:           artist,
		BrandDescription: brandDescription,
		Score:            score,
	}
}

// ExplainRes — текст-обоснование. Error заполнен, если генерация не удалась и использован шаблон.
type ExplainRes struct {
	Brand  string
	Artist string
	Reason string
	Score  float64
	Error  string
}

// INFRASTRUCTURE

// PitchContext — собранный контекст для генератора текста. Пустые строки и срезы
// означают отсутствие данных.
type PitchContext struct {
	Brand            string
	BrandDescription string
	Artist           string
	Persona          string
	PastBrands       []string
	SimilarArtists   []string
	Score            float64
}
