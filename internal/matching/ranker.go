package matching

import (
	"sort"

	"github.com/DRSN-tech/starmatch-backend/internal/catalog"
	"github.com/DRSN-tech/starmatch-backend/internal/domain"
)

// CandidatesPerRow — сколько различных артистов берётся из выдачи одной строки бренда.
const CandidatesPerRow = 100

// RankForBrand подбирает артистов для бренда из таблицы. Неизвестный бренд даёт пустой результат.
func RankForBrand(c *catalog.Catalog, brand string, k int, f domain.Filters) []domain.Candidate {
	rows, ok := c.BrandRows(brand)
	if !ok || k <= 0 {
		return []domain.Candidate{}
	}

	pool := newBestByIdentity()
	for _, row := range rows {
		query := catalog.Normalize(c.EncodeBrand(EncodeBrandRow(row)))

		// Дедупликация внутри выдачи одной строки до отсечения по CandidatesPerRow
		seen := make(map[string]struct{}, CandidatesPerRow)
		for _, h := range scan(c, query) {
			artist := c.Identity(h.row)
			if _, dup := seen[artist]; dup {
				continue
			}
			seen[artist] = struct{}{}

			pool.offer(artist, SimilarityToScore(h.sim))
			if len(seen) >= CandidatesPerRow {
				break
			}
		}
	}

	gate := newFilterGate(c, f)
	filtered := make([]domain.Candidate, 0, pool.len())
	for _, cand := range pool.candidates() {
		if gate.allows(cand.ID) {
			filtered = append(filtered, cand)
		}
	}

	return topK(filtered, k)
}

// RankForEmbedding подбирает артистов по внешнему эмбеддингу текстового описания бренда.
func RankForEmbedding(c *catalog.Catalog, embedding []float32, k int, f domain.Filters, categories []string) []domain.Candidate {
	if k <= 0 {
		return []domain.Candidate{}
	}

	feat := EncodeBrandFromEmbedding(embedding, f.Gender, f.Age, categories)
	query := catalog.Normalize(c.EncodeBrand(feat))

	gate := newFilterGate(c, f)
	pool := newBestByIdentity()
	for _, h := range scan(c, query) {
		artist := c.Identity(h.row)
		if !gate.allows(artist) {
			continue
		}

		// Выдача отсортирована по убыванию, поэтому первое вхождение артиста уже максимальное
		// и после набора k различных артистов можно остановиться.
		existed := pool.offer(artist, SimilarityToScore(h.sim))
		if pool.len() >= k && !existed {
			break
		}
	}

	return topK(pool.candidates(), k)
}

// ArtistGender — пол артиста по среднему значению признака во всех его строках (порог 0.5).
func ArtistGender(c *catalog.Catalog, artist string) (domain.Gender, bool) {
	rows, ok := c.ArtistRows(artist)
	if !ok {
		return domain.GenderAny, false
	}

	var sum float64
	for _, row := range rows {
		sum += float64(row.Gender)
	}
	if sum/float64(len(rows)) >= 0.5 {
		return domain.GenderMale, true
	}

	return domain.GenderFemale, true
}

// ArtistWithinAgeStrict сообщает, есть ли у артиста возрастная корзина, целиком лежащая в окне.
// В отличие от синтеза вектора бренда, частичное пересечение здесь не засчитывается.
func ArtistWithinAgeStrict(c *catalog.Catalog, artist string, window domain.AgeWindow) bool {
	if !window.IsSet() {
		return true
	}

	rows, ok := c.ArtistRows(artist)
	if !ok {
		return false
	}

	for i, bucket := range domain.AgeBuckets {
		var flag float32
		for _, row := range rows {
			flag = max(flag, row.AgeBuckets[i])
		}
		if flag >= 1 && bucketContained(bucket, window) {
			return true
		}
	}

	return false
}

// filterGate применяет фильтры и запоминает решение по каждому артисту в рамках запроса.
type filterGate struct {
	c         *catalog.Catalog
	f         domain.Filters
	decisions map[string]bool
}

func newFilterGate(c *catalog.Catalog, f domain.Filters) *filterGate {
	return &filterGate{c: c, f: f, decisions: make(map[string]bool)}
}

func (g *filterGate) allows(artist string) bool {
	if ok, cached := g.decisions[artist]; cached {
		return ok
	}

	ok := g.check(artist)
	g.decisions[artist] = ok

	return ok
}

func (g *filterGate) check(artist string) bool {
	if g.f.Gender != domain.GenderAny {
		gender, ok := ArtistGender(g.c, artist)
		if !ok || gender != g.f.Gender {
			return false
		}
	}

	return ArtistWithinAgeStrict(g.c, artist, g.f.Age)
}

// bestByIdentity хранит лучшую оценку каждого артиста в порядке первого появления.
type bestByIdentity struct {
	index map[string]int
	items []domain.Candidate
}

func newBestByIdentity() *bestByIdentity {
	return &bestByIdentity{index: make(map[string]int)}
}

// offer добавляет оценку; побеждает максимальная. Возвращает true, если артист уже был.
func (b *bestByIdentity) offer(artist string, score float64) bool {
	if i, ok := b.index[artist]; ok {
		if score > b.items[i].Score {
			b.items[i].Score = score
		}
		return true
	}

	b.index[artist] = len(b.items)
	b.items = append(b.items, domain.NewCandidate(artist, score))

	return false
}

func (b *bestByIdentity) len() int {
	return len(b.items)
}

func (b *bestByIdentity) candidates() []domain.Candidate {
	return b.items
}

// topK сортирует кандидатов по убыванию оценки (стабильно) и оставляет первые k.
func topK(cands []domain.Candidate, k int) []domain.Candidate {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})

	if len(cands) > k {
		cands = cands[:k]
	}

	return cands
}
