package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/internal/matching"
	"github.com/DRSN-tech/starmatch-backend/internal/metrics"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
)

const (
	// similarArtistsInContext — сколько похожих артистов попадает в карточку и в контекст генератора.
	similarArtistsInContext = 5

	personaPlaceholder = "（此藝人尚無詳細介紹）"
	pitchFailurePrefix = "(LLM 生成失敗，使用備用描述) "

	cacheWriteTimeout = 500 * time.Millisecond
)

// RecommendConfig — таймауты внешних вызовов. Нулевое значение отключает таймаут.
type RecommendConfig struct {
	EmbeddingTimeout time.Duration
	PitchTimeout     time.Duration
}

// RecommendUseCase реализует подбор артистов, карточку кандидата и генерацию обоснования.
type RecommendUseCase struct {
	catalog   *catalog.Catalog
	embedder  TextEmbedder
	pitchGen  PitchGenerator
	cacheRepo CacheRepository
	cfg       RecommendConfig
	logger    logger.Logger
}

func NewRecommendUC(
	catalog *catalog.Catalog,
	embedder TextEmbedder,
	pitchGen PitchGenerator,
	cacheRepo CacheRepository,
	cfg RecommendConfig,
	logger logger.Logger,
) *RecommendUseCase {
	return &RecommendUseCase{
		catalog:   catalog,
		embedder:  embedder,
		pitchGen:  pitchGen,
		cacheRepo: cacheRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

// RecommendForBrand возвращает кандидатов для бренда из таблицы. Неизвестный бренд не является ошибкой.
func (r *RecommendUseCase) RecommendForBrand(_ context.Context, req *RecommendForBrandReq) (*RecommendRes, error) {
	start := time.Now()
	defer func() { metrics.RecordRanking("brand", time.Since(start)) }()

	results := matching.RankForBrand(r.catalog, req.Brand, req.TopK, req.Filters)

	return NewRecommendRes(req.Brand, results), nil
}

// RecommendForDescription подбирает артистов по свободному описанию бренда.
// Пустое описание даёт пустой результат без обращения к провайдеру эмбеддингов.
func (r *RecommendUseCase) RecommendForDescription(ctx context.Context, req *RecommendForDescriptionReq) (*DescriptionRes, error) {
	const op = "RecommendUseCase.RecommendForDescription"

	text := strings.TrimSpace(req.Description)
	if text == "" {
		return NewDescriptionRes([]domain.Candidate{}), nil
	}

	embedding, err := r.embed(ctx, text)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	start := time.Now()
	results := matching.RankForEmbedding(r.catalog, embedding, req.TopK, req.Filters, req.Categories)
	metrics.RecordRanking("description", time.Since(start))

	return NewDescriptionRes(results), nil
}

// CandidateDetail собирает карточку артиста. Без бренда оценка считается по первому
// прошлому бренду артиста, а при его отсутствии берётся оценка по умолчанию.
func (r *RecommendUseCase) CandidateDetail(_ context.Context, req *CandidateDetailReq) (*CandidateDetailRes, error) {
	start := time.Now()
	defer func() { metrics.RecordRanking("candidate", time.Since(start)) }()

	pastBrands := matching.PastBrandsFor(r.catalog, req.Artist)

	score := domain.DefaultMatchScore
	switch {
	case req.Brand != "":
		score = matching.BestScore(r.catalog, req.Artist, req.Brand)
	case len(pastBrands) > 0:
		score = matching.BestScore(r.catalog, req.Artist, pastBrands[0])
	}

	persona := matching.PersonaFor(r.catalog, req.Artist)
	if persona == "" {
		persona = personaPlaceholder
	}

	return &CandidateDetailRes{
		Name:           req.Artist,
		Score:          score,
		Persona:        persona,
		PastBrands:     pastBrands,
		SimilarArtists: matching.SimilarArtists(r.catalog, req.Artist, similarArtistsInContext),
	}, nil
}

// Explain генерирует текст-обоснование для пары бренд/артист. Сбой генератора не возвращается
// как ошибка: текст заменяется шаблоном, причина сбоя попадает в поле Error.
func (r *RecommendUseCase) Explain(ctx context.Context, req *ExplainReq) (*ExplainRes, error) {
	const op = "RecommendUseCase.Explain"

	pc := r.pitchContext(req)
	res := &ExplainRes{
		Brand:  req.Brand,
		Artist: req.Artist,
		Score:  pc.Score,
	}

	reason, err := r.generatePitch(ctx, pc)
	if err != nil {
		r.logger.Warnf("Pitch generation failed, using fallback. brand: %s, artist: %s, error: %v",
			req.Brand, req.Artist, e.Wrap(op, err))

		res.Reason = pitchFailurePrefix + FallbackPitch(req.Brand, req.Artist)
		res.Error = err.Error()
		return res, nil
	}

	res.Reason = reason
	return res, nil
}

// FallbackPitch — детерминированный текст на случай недоступности генератора.
func FallbackPitch(brand, artist string) string {
	return fmt.Sprintf("%s 的形象與 %s 的品牌定位具有高度契合，能強化品牌在目標族群中的吸引力與可信度。", artist, brand)
}

// pitchContext собирает контекст генератора с учётом переопределений из запроса.
func (r *RecommendUseCase) pitchContext(req *ExplainReq) *PitchContext {
	desc := strings.TrimSpace(req.BrandDescription)
	if desc == "" {
		desc = matching.BrandDescriptionFor(r.catalog, req.Brand)
	}

	var score float64
	if req.Score != nil {
		score = *req.Score
	} else {
		score = matching.BestScore(r.catalog, req.Artist, req.Brand)
	}

	return &PitchContext{
		Brand:            req.Brand,
		BrandDescription: desc,
		Artist:           req.Artist,
		Persona:          matching.PersonaFor(r.catalog, req.Artist),
		PastBrands:       matching.PastBrandsFor(r.catalog, req.Artist),
		SimilarArtists:   matching.SimilarArtists(r.catalog, req.Artist, similarArtistsInContext),
		Score:            score,
	}
}

func (r *RecommendUseCase) generatePitch(ctx context.Context, pc *PitchContext) (string, error) {
	if r.pitchGen == nil {
		return "", e.ErrLLMNotConfigured
	}

	ctx, cancel := withOptionalTimeout(ctx, r.cfg.PitchTimeout)
	defer cancel()

	reason, err := r.pitchGen.GeneratePitch(ctx, pc)
	if err != nil {
		return "", err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", e.ErrEmptyCompletion
	}

	return reason, nil
}

// embed возвращает эмбеддинг текста: сначала из кэша, затем от провайдера.
// Ошибки кэша не прерывают запрос.
func (r *RecommendUseCase) embed(ctx context.Context, text string) ([]float32, error) {
	const op = "RecommendUseCase.embed"

	if r.cacheRepo != nil {
		vector, ok, err := r.cacheRepo.GetEmbedding(ctx, text)
		if err != nil {
			r.logger.Warnf("Failed to read embedding cache: %v", e.Wrap(op, err))
		}
		metrics.RecordCacheLookup(ok)
		if ok {
			return vector, nil
		}
	}

	if r.embedder == nil {
		return nil, fmt.Errorf("%w: %w", e.ErrEmbeddingUnavailable, e.ErrEmbeddingNotConfigured)
	}

	embedCtx, cancel := withOptionalTimeout(ctx, r.cfg.EmbeddingTimeout)
	defer cancel()

	vector, err := r.embedder.EmbedText(embedCtx, text)
	if err != nil {
		if !errors.Is(err, e.ErrEmbeddingUnavailable) {
			err = fmt.Errorf("%w: %w", e.ErrEmbeddingUnavailable, err)
		}
		return nil, err
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: %w", e.ErrEmbeddingUnavailable, e.ErrEmptyEmbedding)
	}

	// Фоновое добавление эмбеддинга в кэш
	if r.cacheRepo != nil {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
			defer cancel()

			if err := r.cacheRepo.SetEmbedding(bgCtx, text, vector); err != nil {
				r.logger.Warnf("Failed to cache embedding in background: %v", e.Wrap(op, err))
			}
		}()
	}

	return vector, nil
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
