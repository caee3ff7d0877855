package usecase

import (
	"context"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
)

type RecommendUC interface {
	RecommendForBrand(ctx context.Context, req *RecommendForBrandReq) (*RecommendRes, error)
	RecommendForDescription(ctx context.Context, req *RecommendForDescriptionReq) (*DescriptionRes, error)
	CandidateDetail(ctx context.Context, req *CandidateDetailReq) (*CandidateDetailRes, error)
	Explain(ctx context.Context, req *ExplainReq) (*ExplainRes, error)
}

type CatalogUC interface {
	Build(ctx context.Context) (*catalog.Catalog, error)
}
