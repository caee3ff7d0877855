package converter

// JoinedRowModel представляет запись таблицы joined_rows в PostgreSQL.
type JoinedRowModel struct {
	RowIdx       int       `db:"row_idx"`
	Brand        string    `db:"brand"`
	Artist       string    `db:"artist"`
	BrandVector  []float32 `db:"brand_vector"`
	Gender       float32   `db:"gender"`
	AgeBuckets   []float32 `db:"age_buckets"`
	Categories   []float32 `db:"categories"`
	ArtistVector []float32 `db:"artist_vector"`
}

// PersonaModel представляет запись таблицы artist_personas.
type PersonaModel struct {
	Artist  string `db:"artist"`
	Persona string `db:"persona"`
}

// BrandDescriptionModel представляет запись таблицы brand_descriptions.
type BrandDescriptionModel struct {
	Brand       string `db:"brand"`
	Description string `db:"description"`
}
