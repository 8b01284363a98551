package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapPhotos(t *testing.T) {
	photos := make([]string, MaxAdPhotos+4)
	for i := range photos {
		photos[i] = fmt.Sprintf("https://img.example/%d.jpg", i)
	}

	ad := Ad{PhotoURLs: photos}
	ad.CapPhotos()

	assert.Len(t, ad.PhotoURLs, MaxAdPhotos)
	assert.Equal(t, "https://img.example/0.jpg", ad.PhotoURLs[0])
}

func TestCapPhotosShortListUntouched(t *testing.T) {
	ad := Ad{PhotoURLs: []string{"a", "b"}}
	ad.CapPhotos()

	assert.Equal(t, []string{"a", "b"}, ad.PhotoURLs)
}

func TestParseResultStatus(t *testing.T) {
	for _, valid := range []string{"new", "viewed", "completed"} {
		status, ok := ParseResultStatus(valid)
		assert.True(t, ok)
		assert.Equal(t, ResultStatus(valid), status)
	}

	_, ok := ParseResultStatus("archived")
	assert.False(t, ok)
}
