package converter

// EmbeddingRedisModel — запись кэша эмбеддинга текста.
type EmbeddingRedisModel struct {
	Model  string    `json:"model"`
	Dim    int       `json:"dim"`
	Vector []float32 `json:"vector"`
}

func ToRedisModel(model string, vector []float32) *EmbeddingRedisModel {
	return &EmbeddingRedisModel{
		Model:  model,
		Dim:    len(vector),
		Vector: vector,
	}
}

// Valid проверяет, что запись относится к модели model и не повреждена.
func (m *EmbeddingRedisModel) Valid(model string) bool {
	return m.Model == model && m.Dim > 0 && m.Dim == len(m.Vector)
}
