package marktplaats

import (
	"context"

	"github.com/hoekwacht/hoekwacht/internal/model"
)

// Stub is an offline ad source returning fixed sample listings. It lets the
// rest of the pipeline run without network access or credentials.
type Stub struct{}

// NewStub creates the offline sample ad source.
func NewStub() *Stub {
	return &Stub{}
}

// Search returns the sample listings regardless of query.
func (s *Stub) Search(_ context.Context, _ string) ([]model.Ad, error) {
	return []model.Ad{
		{
			ID:         "A1",
			Title:      "Hoekbank links beige microleder",
			Price:      intp(450),
			DistanceKM: intp(12),
			URL:        "https://www.marktplaats.nl/v/a/A1",
			PhotoURLs: []string{
				"https://example.com/a1-1.jpg",
				"https://example.com/a1-2.jpg",
			},
			CornerSide: model.CornerLeft,
		},
		{
			ID:         "A2",
			Title:      "Hoekbank rechts ribstof grijs",
			Price:      intp(600),
			DistanceKM: intp(25),
			URL:        "https://www.marktplaats.nl/v/a/A2",
			PhotoURLs: []string{
				"https://example.com/a2-1.jpg",
				"https://example.com/a2-2.jpg",
			},
			CornerSide: model.CornerRight,
		},
	}, nil
}

func intp(v int) *int {
	return &v
}
