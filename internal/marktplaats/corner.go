package marktplaats

import (
	"strings"

	"github.com/hoekwacht/hoekwacht/internal/model"
)

// Dutch listing titles usually spell out the chaise side. English terms show
// up occasionally on cross-posted ads.
var (
	leftMarkers  = []string{"links", "linker", "left"}
	rightMarkers = []string{"rechts", "rechter", "right"}
)

// DetectCornerSide extracts the corner orientation from free ad text.
// Returns the empty value when the text mentions neither or both sides.
func DetectCornerSide(text string) model.CornerSide {
	lc := strings.ToLower(text)

	left := containsAnyMarker(lc, leftMarkers)
	right := containsAnyMarker(lc, rightMarkers)

	switch {
	case left && !right:
		return model.CornerLeft
	case right && !left:
		return model.CornerRight
	default:
		return ""
	}
}

func containsAnyMarker(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
