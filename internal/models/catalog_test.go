package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"movie", KindMovie},
		{"Film", KindMovie},
		{"series", KindSeries},
		{" tv ", KindSeries},
		{"episode", Kind("episode")},
		{"", Kind("")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.in))
		})
	}
}

func TestKind_IsValid(t *testing.T) {
	assert.True(t, KindMovie.IsValid())
	assert.True(t, KindSeries.IsValid())
	assert.False(t, Kind("game").IsValid())
	assert.False(t, Kind("").IsValid())
}

func TestCatalogItem_GenreTokens(t *testing.T) {
	item := CatalogItem{Genre: "Crime, Drama,  ,Thriller"}
	assert.Equal(t, []string{"Crime", "Drama", "Thriller"}, item.GenreTokens())

	unknown := CatalogItem{Genre: NotAvailable}
	assert.Empty(t, unknown.GenreTokens())
}
