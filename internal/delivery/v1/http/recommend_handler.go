package http

import (
	"net/http"
	"strings"

	"github.com/DRSN-tech/starmatch-backend/internal/usecase"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const (
	defaultTopK     = 10
	maxRequestBytes = 1 << 20
)

type RecommendHandler struct {
	recommendUsecase usecase.RecommendUC
	logger           logger.Logger
}

func NewRecommendHandler(recommendUsecase usecase.RecommendUC, logger logger.Logger) *RecommendHandler {
	return &RecommendHandler{recommendUsecase: recommendUsecase, logger: logger}
}

// recommendForBrand
//
//	@Summary		Кандидаты для бренда
//	@Description	Ранжирует артистов по совпадению с историческими строками бренда
//	@Tags			recommend
//	@Produce		json
//	@Param			brand			path		string	true	"Бренд"
//	@Param			topK			query		int		false	"Число кандидатов (1-50)"	default(10)
//	@Param			artistGender	query		string	false	"Пол артиста: M / F"
//	@Param			minAge			query		int		false	"Минимальный возраст (10-90)"
//	@Param			maxAge			query		int		false	"Максимальный возраст (10-90)"
//	@Success		200				{object}	RecommendationResponse
//	@Failure		400				{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/recommendations/{brand} [get]
func (h *RecommendHandler) recommendForBrand(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")

	q, err := parseRecommendQuery(r)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.recommendUsecase.RecommendForBrand(r.Context(), usecase.NewRecommendForBrandReq(brand, q.TopK, q.filters()))
	if err != nil {
		h.logger.Errorf(err, "recommend for brand %q failed", brand)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toRecommendationResponse(res))
}

// recommendForDescription
//
//	@Summary		Кандидаты по описанию бренда
//	@Description	Строит эмбеддинг текста и ранжирует всю таблицу знаменитостей
//	@Tags			recommend
//	@Accept			json
//	@Produce		json
//	@Param			request	body		DescriptionRequest	true	"Описание бренда и фильтры"
//	@Success		200		{object}	DescriptionResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		503		{object}	ErrorResponse	"Сервис эмбеддингов недоступен"
//	@Router			/recommendations/description [post]
func (h *RecommendHandler) recommendForDescription(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var body DescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		err = newRequestError(e.ErrInvalidBody, "malformed json")
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	q := recommendQuery{
		TopK:         defaultTopK,
		ArtistGender: normalizeGender(body.ArtistGender),
		MinAge:       body.MinAge,
		MaxAge:       body.MaxAge,
	}
	if body.TopK != nil {
		q.TopK = *body.TopK
	}
	if err := checkQuery(e.ErrInvalidBody, &q); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.recommendUsecase.RecommendForDescription(r.Context(),
		usecase.NewRecommendForDescriptionReq(body.Description, body.Categories, q.TopK, q.filters()))
	if err != nil {
		h.logger.Errorf(err, "recommend for description failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toDescriptionResponse(res))
}

// candidateDetail
//
//	@Summary		Карточка артиста
//	@Tags			candidate
//	@Produce		json
//	@Param			artist	path		string	true	"Артист"
//	@Param			brand	query		string	false	"Бренд для оценки"
//	@Success		200		{object}	CandidateDetailResponse
//	@Router			/candidates/{artist} [get]
func (h *RecommendHandler) candidateDetail(w http.ResponseWriter, r *http.Request) {
	artist := chi.URLParam(r, "artist")
	brand := strings.TrimSpace(r.URL.Query().Get("brand"))

	res, err := h.recommendUsecase.CandidateDetail(r.Context(), usecase.NewCandidateDetailReq(artist, brand))
	if err != nil {
		h.logger.Errorf(err, "candidate detail for %q failed", artist)
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCandidateDetailResponse(res))
}

// explain
//
//	@Summary		Обоснование пары бренд/артист
//	@Description	Генерирует текст предложения; при сбое генератора возвращает шаблонный текст и поле error
//	@Tags			explanation
//	@Produce		json
//	@Param			brand		path		string	true	"Бренд"
//	@Param			artist		path		string	true	"Артист"
//	@Param			brandDesc	query		string	false	"Описание бренда вместо сохранённого"
//	@Param			score		query		number	false	"Оценка вместо вычисленной (0-10)"
//	@Success		200			{object}	ExplanationResponse
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/explanations/{brand}/{artist} [get]
func (h *RecommendHandler) explain(w http.ResponseWriter, r *http.Request) {
	brand := chi.URLParam(r, "brand")
	artist := chi.URLParam(r, "artist")

	score, err := optionalFloat(r, "score")
	if err == nil && score != nil && (*score < 0 || *score > 10) {
		err = newRequestError(e.ErrInvalidQuery, "score must be within [0, 10]")
	}
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.recommendUsecase.Explain(r.Context(),
		usecase.NewExplainReq(brand, artist, strings.TrimSpace(r.URL.Query().Get("brandDesc")), score))
	if err != nil {
		h.logger.Errorf(err, "explain %q/%q failed", brand, artist)
		WriteError(w, err)
		return
	}

	if res.Error != "" {
		h.logger.Warnf("Pitch fallback used for %s/%s: %s", brand, artist, res.Error)
	}

	WriteSuccess(w, http.StatusOK, toExplanationResponse(res))
}

func parseRecommendQuery(r *http.Request) (*recommendQuery, error) {
	q := recommendQuery{
		TopK:         defaultTopK,
		ArtistGender: normalizeGender(r.URL.Query().Get("artistGender")),
	}

	topK, err := optionalInt(r, "topK")
	if err != nil {
		return nil, err
	}
	if topK != nil {
		q.TopK = *topK
	}

	if q.MinAge, err = optionalInt(r, "minAge"); err != nil {
		return nil, err
	}
	if q.MaxAge, err = optionalInt(r, "maxAge"); err != nil {
		return nil, err
	}

	if err := checkQuery(e.ErrInvalidQuery, &q); err != nil {
		return nil, err
	}

	return &q, nil
}

func checkQuery(kind error, q *recommendQuery) error {
	if err := validateStruct(kind, q); err != nil {
		return err
	}
	return checkAgeWindow(q.MinAge, q.MaxAge)
}
