package matching

import (
	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
)

// PersonaFor возвращает описание артиста или пустую строку.
func PersonaFor(c *catalog.Catalog, artist string) string {
	persona, _ := c.Persona(artist)
	return persona
}

// BrandDescriptionFor возвращает описание бренда или пустую строку.
func BrandDescriptionFor(c *catalog.Catalog, brand string) string {
	desc, _ := c.BrandDescription(brand)
	return desc
}

// PastBrandsFor возвращает бренды, с которыми работал артист, в порядке датасета,
// без повторов и без пустых значений.
func PastBrandsFor(c *catalog.Catalog, artist string) []string {
	rows, ok := c.ArtistRows(artist)
	if !ok {
		return []string{}
	}

	seen := make(map[string]struct{}, len(rows))
	brands := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Brand == "" {
			continue
		}
		if _, dup := seen[row.Brand]; dup {
			continue
		}
		seen[row.Brand] = struct{}{}
		brands = append(brands, row.Brand)
	}

	return brands
}

// BestScore — лучшая оценка совпадения артиста с брендом по всем строкам бренда.
// Если нет строк бренда или эмбеддингов артиста, возвращается DefaultMatchScore.
func BestScore(c *catalog.Catalog, artist, brand string) float64 {
	rows, ok := c.BrandRows(brand)
	if !ok {
		return domain.DefaultMatchScore
	}

	rep, ok := Representative(c, artist)
	if !ok {
		return domain.DefaultMatchScore
	}

	best := -1.0
	for _, row := range rows {
		query := catalog.Normalize(c.EncodeBrand(EncodeBrandRow(row)))
		if sim := Dot(rep, query); sim > best {
			best = sim
		}
	}

	return SimilarityToScore(best)
}
