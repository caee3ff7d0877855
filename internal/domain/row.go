package domain

// JoinedRow описывает одну историческую пару бренд–артист из таблицы совместных появлений.
// И бренд, и артист могут встречаться в нескольких строках.
type JoinedRow struct {
	Brand        string // пустая строка, если бренд в источнике не указан
	Artist       string
	BrandVector  []float32 // BrandDim
	Gender       float32
	AgeBuckets   [AgeBucketCount]float32
	Categories   [CategoryDim]float32
	ArtistVector []float32 // CelebrityDim
}

func NewJoinedRow(brand, artist string, brandVector []float32, gender float32,
	ageBuckets [AgeBucketCount]float32, categories [CategoryDim]float32, artistVector []float32) *JoinedRow {
	return &JoinedRow{
		Brand:        brand,
		Artist:       artist,
		BrandVector:  brandVector,
		Gender:       gender,
		AgeBuckets:   ageBuckets,
		Categories:   categories,
		ArtistVector: artistVector,
	}
}

// Persona — текстовое описание артиста.
type Persona struct {
	Artist string
	Text   string
}

// BrandDescription — текстовое описание бренда.
type BrandDescription struct {
	Brand string
	Text  string
}
