package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamwears/marquee/internal/models"
)

func TestDistinctGenres(t *testing.T) {
	genres := DistinctGenres([]string{
		"Crime, Drama",
		"Drama, Thriller",
		"N/A",
		"",
		"Science Fiction, crime",
	})

	require.Len(t, genres, 4)
	assert.Equal(t, []models.Genre{
		{ID: "crime", Name: "Crime"},
		{ID: "drama", Name: "Drama"},
		{ID: "science-fiction", Name: "Science Fiction"},
		{ID: "thriller", Name: "Thriller"},
	}, genres)
}

func TestDistinctGenres_Empty(t *testing.T) {
	genres := DistinctGenres(nil)
	assert.NotNil(t, genres)
	assert.Empty(t, genres)
}

func TestTableFor(t *testing.T) {
	table, err := tableFor(models.KindMovie)
	require.NoError(t, err)
	assert.Equal(t, `"Movie"`, table)

	table, err = tableFor(models.KindSeries)
	require.NoError(t, err)
	assert.Equal(t, `"Series"`, table)

	_, err = tableFor(models.Kind("episode"))
	assert.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alien", "alien"},
		{"%", `\%`},
		{"100%_pure", `100\%\_pure`},
		{`back\slash`, `back\\slash`},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}
