package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет одну строку таблицы эмбеддингов знаменитостей
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// Ключи payload строки таблицы эмбеддингов.
const (
	PayloadArtist       = "artist"
	PayloadRow          = "row"
	PayloadModelVersion = "model_version"
	PayloadCreatedAt    = "created_at"
)

func NewCelebrityPayload(artist string, row int, modelVersion string) Payload {
	return Payload{
		PayloadArtist:       artist,
		PayloadRow:          int64(row),
		PayloadModelVersion: modelVersion,
		PayloadCreatedAt:    time.Now().UTC().UnixNano(),
	}
}
