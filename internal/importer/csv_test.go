package importer

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/DRSN-tech/starmatch-backend/internal/domain"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// joinedRecord описывает строку выгрузки для генерации CSV.
type joinedRecord struct {
	brand, artist string
	brandHead     float32
	gender        string
	bucket        int
	category      int
	celebHead     float32
}

func joinedHeader() []string {
	cols := []string{colBrand, colArtist}
	cols = append(cols, numbered(brandDimPrefix, domain.BrandDim)...)
	cols = append(cols, colGender)
	cols = append(cols, ageColumns()...)
	cols = append(cols, domain.ProductCategories[:]...)
	cols = append(cols, numbered(celebDimPrefix, domain.CelebrityDim)...)
	return cols
}

func joinedCSV(records ...joinedRecord) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(joinedHeader(), ","))
	sb.WriteString("\n")

	for _, r := range records {
		cells := []string{r.brand, r.artist}
		for i := 0; i < domain.BrandDim; i++ {
			if i == 0 {
				cells = append(cells, strconv.FormatFloat(float64(r.brandHead), 'f', -1, 32))
			} else {
				cells = append(cells, "0")
			}
		}
		cells = append(cells, r.gender)
		for i := 0; i < domain.AgeBucketCount; i++ {
			cells = append(cells, flag(i == r.bucket))
		}
		for i := 0; i < domain.CategoryDim; i++ {
			cells = append(cells, flag(i == r.category))
		}
		for i := 0; i < domain.CelebrityDim; i++ {
			if i == 0 {
				cells = append(cells, strconv.FormatFloat(float64(r.celebHead), 'f', -1, 32))
			} else {
				cells = append(cells, "0")
			}
		}
		sb.WriteString(strings.Join(cells, ","))
		sb.WriteString("\n")
	}

	return sb.String()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func TestParseJoined(t *testing.T) {
	data := joinedCSV(
		joinedRecord{brand: "acme", artist: "alice", brandHead: 0.5, gender: "0", bucket: 1, category: 6, celebHead: 0.25},
		joinedRecord{brand: "", artist: "bob", brandHead: -1, gender: "1", bucket: 3, category: 0, celebHead: 2},
	)

	rows, err := ParseJoined(strings.NewReader(data), "joined.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "acme", rows[0].Brand)
	assert.Equal(t, "alice", rows[0].Artist)
	assert.Len(t, rows[0].BrandVector, domain.BrandDim)
	assert.Equal(t, float32(0.5), rows[0].BrandVector[0])
	assert.Equal(t, float32(1), rows[0].AgeBuckets[1])
	assert.Equal(t, float32(1), rows[0].Categories[6])
	assert.Len(t, rows[0].ArtistVector, domain.CelebrityDim)
	assert.Equal(t, float32(0.25), rows[0].ArtistVector[0])

	assert.Equal(t, "", rows[1].Brand)
	assert.Equal(t, float32(1), rows[1].Gender)
	assert.Equal(t, float32(2), rows[1].ArtistVector[0])
}

func TestParseJoined_RowsDoNotAlias(t *testing.T) {
	data := joinedCSV(
		joinedRecord{brand: "a", artist: "x", brandHead: 1, gender: "0", bucket: 0, category: 0, celebHead: 1},
		joinedRecord{brand: "b", artist: "y", brandHead: 2, gender: "0", bucket: 0, category: 0, celebHead: 3},
	)

	rows, err := ParseJoined(strings.NewReader(data), "joined.csv")
	require.NoError(t, err)

	assert.Equal(t, float32(1), rows[0].BrandVector[0])
	assert.Equal(t, float32(2), rows[1].BrandVector[0])
}

func TestParseJoined_MalformedNumber(t *testing.T) {
	data := joinedCSV(
		joinedRecord{brand: "acme", artist: "alice", gender: "0", bucket: 0, category: 0},
		joinedRecord{brand: "acme", artist: "bob", gender: "male", bucket: 0, category: 0},
	)

	_, err := ParseJoined(strings.NewReader(data), "joined.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrMalformedCSV))

	var csvErr *CSVError
	require.True(t, errors.As(err, &csvErr))
	assert.Equal(t, "joined.csv", csvErr.File)
	assert.Equal(t, 3, csvErr.Line)
	assert.Equal(t, colGender, csvErr.Column)
	assert.Contains(t, err.Error(), `joined.csv:3: column "gender"`)
}

func TestParseJoined_MissingColumn(t *testing.T) {
	_, err := ParseJoined(strings.NewReader("brand,artist,gender\nacme,alice,0\n"), "joined.csv")

	var csvErr *CSVError
	require.True(t, errors.As(err, &csvErr))
	assert.Equal(t, 1, csvErr.Line)
	assert.Equal(t, "bd_dim0", csvErr.Column)
}

func TestParseJoined_EmptyFile(t *testing.T) {
	_, err := ParseJoined(strings.NewReader(""), "joined.csv")
	assert.True(t, errors.Is(err, e.ErrMalformedCSV))
}

func TestParseJoined_EmptyArtist(t *testing.T) {
	data := joinedCSV(joinedRecord{brand: "acme", artist: "", gender: "0", bucket: 0, category: 0})

	_, err := ParseJoined(strings.NewReader(data), "joined.csv")

	var csvErr *CSVError
	require.True(t, errors.As(err, &csvErr))
	assert.Equal(t, colArtist, csvErr.Column)
}

func TestParsePersonas(t *testing.T) {
	data := "artist,persona\nalice,\"singer, actor\"\n,orphan\nbob,dancer\n"

	personas, err := ParsePersonas(strings.NewReader(data), "personas.csv")
	require.NoError(t, err)
	assert.Equal(t, []domain.Persona{
		{Artist: "alice", Text: "singer, actor"},
		{Artist: "bob", Text: "dancer"},
	}, personas)
}

func TestParseBrandDescriptions(t *testing.T) {
	data := "\ufeffbrand,desc\nacme,tools\n"

	descs, err := ParseBrandDescriptions(strings.NewReader(data), "brands.csv")
	require.NoError(t, err)
	assert.Equal(t, []domain.BrandDescription{{Brand: "acme", Text: "tools"}}, descs)
}

func TestParseBrandDescriptions_FieldCount(t *testing.T) {
	_, err := ParseBrandDescriptions(strings.NewReader("brand,desc\nacme,tools,extra\n"), "brands.csv")

	var csvErr *CSVError
	require.True(t, errors.As(err, &csvErr))
	assert.Equal(t, 2, csvErr.Line)
}
