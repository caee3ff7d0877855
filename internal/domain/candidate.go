package domain

import "strings"

// DefaultMatchScore — нейтральная оценка, когда бренд или артист отсутствуют в данных.
const DefaultMatchScore = 7.5

// Candidate — рекомендованный артист с оценкой совпадения в диапазоне [0, 10].
type Candidate struct {
	ID    string
	Name  string
	Score float64
}

func NewCandidate(artist string, score float64) Candidate {
	return Candidate{
		ID:    artist,
		Name:  artist,
		Score: score,
	}
}

// Gender — фильтр по полу артиста.
type Gender int

const (
	GenderAny Gender = iota
	GenderMale
	GenderFemale
)

// ParseGender разбирает "M"/"F"/"male"/"female" без учёта регистра. Остальное — GenderAny.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale
	case "f", "female":
		return GenderFemale
	default:
		return GenderAny
	}
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "M"
	case GenderFemale:
		return "F"
	default:
		return ""
	}
}

// AgeWindow — запрошенный возрастной диапазон; любая из границ может отсутствовать.
type AgeWindow struct {
	Min *int
	Max *int
}

func NewAgeWindow(min, max *int) AgeWindow {
	return AgeWindow{Min: min, Max: max}
}

// IsSet сообщает, задана ли хотя бы одна граница.
func (w AgeWindow) IsSet() bool {
	return w.Min != nil || w.Max != nil
}

// Filters — фильтры кандидатов по демографии.
type Filters struct {
	Gender Gender
	Age    AgeWindow
}

func NewFilters(gender Gender, age AgeWindow) Filters {
	return Filters{Gender: gender, Age: age}
}
