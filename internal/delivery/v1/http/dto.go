package http

import (
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/internal/usecase"
)

// recommendQuery — параметры ранжирования из query-строки или тела запроса.
type recommendQuery struct {
	TopK         int    `json:"topK" validate:"min=1,max=50"`
	ArtistGender string `json:"artistGender" validate:"omitempty,oneof=m f male female"`
	MinAge       *int   `json:"minAge" validate:"omitempty,min=10,max=90"`
	MaxAge       *int   `json:"maxAge" validate:"omitempty,min=10,max=90"`
}

func (q *recommendQuery) filters() domain.Filters {
	return domain.NewFilters(domain.ParseGender(q.ArtistGender), domain.NewAgeWindow(q.MinAge, q.MaxAge))
}

// DescriptionRequest — тело POST /recommendations/description.
type DescriptionRequest struct {
	Description  string   `json:"description" example:"運動飲料品牌，主打年輕族群"`
	Categories   []string `json:"categories" example:"運動健身戶外"`
	TopK         *int     `json:"topK" example:"10"`
	ArtistGender string   `json:"artistGender" example:"F"`
	MinAge       *int     `json:"minAge" example:"20"`
	MaxAge       *int     `json:"maxAge" example:"40"`
}

type RecommendationItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type RecommendationResponse struct {
	Brand   string               `json:"brand"`
	Results []RecommendationItem `json:"results"`
}

type DescriptionResponse struct {
	PrimaryBrand  string               `json:"primaryBrand"`
	SimilarBrands []string             `json:"similarBrands"`
	Results       []RecommendationItem `json:"results"`
}

type CandidateDetailResponse struct {
	Name           string   `json:"name"`
	Score          float64  `json:"score"`
	Persona        string   `json:"persona"`
	ReasonText     string   `json:"reasonText"`
	PastBrands     []string `json:"pastBrands"`
	SimilarArtists []string `json:"similarArtists"`
}

type ExplanationResponse struct {
	Brand                string  `json:"brand"`
	Artist               string  `json:"artist"`
	RecommendationReason string  `json:"recommendation_reason"`
	Score                float64 `json:"score"`
	Error                string  `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func toItems(cands []domain.Candidate) []RecommendationItem {
	items := make([]RecommendationItem, len(cands))
	for i, c := range cands {
		items[i] = RecommendationItem{ID: c.ID, Name: c.Name, Score: c.Score}
	}
	return items
}

func toRecommendationResponse(res *usecase.RecommendRes) *RecommendationResponse {
	return &RecommendationResponse{Brand: res.Brand, Results: toItems(res.Results)}
}

func toDescriptionResponse(res *usecase.DescriptionRes) *DescriptionResponse {
	similar := res.SimilarBrands
	if similar == nil {
		similar = []string{}
	}
	return &DescriptionResponse{
		PrimaryBrand:  res.PrimaryBrand,
		SimilarBrands: similar,
		Results:       toItems(res.Results),
	}
}

func toCandidateDetailResponse(res *usecase.CandidateDetailRes) *CandidateDetailResponse {
	return &CandidateDetailResponse{
		Name:           res.Name,
		Score:          res.Score,
		Persona:        res.Persona,
		ReasonText:     res.ReasonText,
		PastBrands:     nonNil(res.PastBrands),
		SimilarArtists: nonNil(res.SimilarArtists),
	}
}

func toExplanationResponse(res *usecase.ExplainRes) *ExplanationResponse {
	return &ExplanationResponse{
		Brand:                res.Brand,
		Artist:               res.Artist,
		RecommendationReason: res.Reason,
		Score:                res.Score,
		Error:                res.Error,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
