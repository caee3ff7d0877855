package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// requestError — ошибка валидации запроса с текстом для клиента.
type requestError struct {
	kind   error
	detail string
}

func newRequestError(kind error, format string, args ...any) error {
	return &requestError{kind: kind, detail: fmt.Sprintf(format, args...)}
}

func (r *requestError) Error() string {
	return r.kind.Error() + ": " + r.detail
}

func (r *requestError) Unwrap() error {
	return r.kind
}

func ToHTTPResponse(err error) (int, string) {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.Error()
	case errors.Is(err, e.ErrInvalidAgeWindow):
		return http.StatusBadRequest, e.ErrInvalidAgeWindow.Error()
	case errors.Is(err, e.ErrInvalidQuery):
		return http.StatusBadRequest, e.ErrInvalidQuery.Error()
	case errors.Is(err, e.ErrInvalidBody):
		return http.StatusBadRequest, e.ErrInvalidBody.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable, e.ErrEmbeddingUnavailable.Error()
	case errors.Is(err, e.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, e.ErrServiceUnavailable.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

// WriteSuccess кодирует ответ до отправки заголовков: если data не кодируется,
// клиент получает 500 с телом ошибки, а не пустой ответ с исходным статусом.
func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(NewErrorResponse(status, e.ErrInternalServerError.Error()))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// validateStruct проверяет теги validate и переводит первую ошибку в requestError.
func validateStruct(kind error, v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return newRequestError(kind, "%v", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "min":
		return newRequestError(kind, "%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return newRequestError(kind, "%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return newRequestError(kind, "%s must be one of [%s]", fe.Field(), fe.Param())
	case "required":
		return newRequestError(kind, "%s is required", fe.Field())
	default:
		return newRequestError(kind, "%s failed on %s", fe.Field(), fe.Tag())
	}
}

// optionalInt разбирает необязательный целочисленный параметр запроса.
func optionalInt(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, newRequestError(e.ErrInvalidQuery, "%s must be an integer", name)
	}
	return &v, nil
}

func optionalFloat(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, newRequestError(e.ErrInvalidQuery, "%s must be a finite number", name)
	}
	return &v, nil
}

// checkAgeWindow отклоняет окно, в котором minAge больше maxAge.
func checkAgeWindow(minAge, maxAge *int) error {
	if minAge != nil && maxAge != nil && *minAge > *maxAge {
		return e.ErrInvalidAgeWindow
	}
	return nil
}

func normalizeGender(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
