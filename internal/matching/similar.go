package matching

import (
	"sort"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
)

// Representative возвращает представительный вектор артиста: среднее всех его строк
// таблицы эмбеддингов, заново нормированное.
func Representative(c *catalog.Catalog, artist string) ([]float32, bool) {
	idx, ok := c.ArtistRowIndexes(artist)
	if !ok || len(idx) == 0 {
		return nil, false
	}

	mean := make([]float32, len(c.Embedding(idx[0])))
	for _, i := range idx {
		for d, v := range c.Embedding(i) {
			mean[d] += v
		}
	}
	n := float32(len(idx))
	for d := range mean {
		mean[d] /= n
	}

	return catalog.Normalize(mean), true
}

// SimilarArtists возвращает до k ближайших других артистов без повторов и без самого артиста.
func SimilarArtists(c *catalog.Catalog, artist string, k int) []string {
	rep, ok := Representative(c, artist)
	if !ok || k <= 0 {
		return []string{}
	}

	type scored struct {
		artist string
		score  float64
	}

	seen := make(map[string]struct{}, k)
	picked := make([]scored, 0, k)
	for _, h := range scan(c, rep) {
		other := c.Identity(h.row)
		if other == artist {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}

		picked = append(picked, scored{artist: other, score: SimilarityToScore(h.sim)})
		if len(picked) >= k {
			break
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].score > picked[j].score
	})

	out := make([]string, len(picked))
	for i, p := range picked {
		out[i] = p.artist
	}

	return out
}
