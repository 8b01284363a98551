// Package match computes how well an ad satisfies a search request.
package match

import (
	"math"
	"strings"

	"github.com/hoekwacht/hoekwacht/internal/model"
)

// Rule weights. A rule only counts toward the maximum when it is applicable
// given the data present on both sides.
const (
	cornerWeight   = 50.0
	budgetWeight   = 20.0
	distanceWeight = 10.0
	includeWeight  = 10.0
	excludeWeight  = 10.0
)

// Score computes the match percentage between a search request and an ad,
// in [0, 100] rounded to one decimal. It is a pure function of its inputs.
//
// An exclude-keyword hit is a hard veto: the score is 0 no matter what the
// other rules accumulated.
func Score(req *model.SearchRequest, ad *model.Ad) float64 {
	var score, maxScore float64

	// Corner side is essential and always counts toward the maximum.
	maxScore += cornerWeight
	if ad.CornerSide != "" && ad.CornerSide == req.CornerSide {
		score += cornerWeight
	}

	if req.Budget != nil && ad.Price != nil {
		maxScore += budgetWeight
		if *ad.Price <= *req.Budget {
			score += budgetWeight
		}
	}

	if req.MaxDistanceKM != nil && ad.DistanceKM != nil {
		maxScore += distanceWeight
		if *ad.DistanceKM <= *req.MaxDistanceKM {
			score += distanceWeight
		}
	}

	titleLC := strings.ToLower(ad.Title)

	if include := req.IncludeKeywords(); len(include) > 0 {
		maxScore += includeWeight
		if containsAll(titleLC, include) {
			score += includeWeight
		}
	}

	if exclude := req.ExcludeKeywords(); len(exclude) > 0 {
		maxScore += excludeWeight
		if containsAny(titleLC, exclude) {
			return 0
		}
		score += excludeWeight
	}

	if maxScore == 0 {
		return 0
	}
	return math.Round(1000*score/maxScore) / 10
}

func containsAll(title string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(title, w) {
			return false
		}
	}
	return true
}

func containsAny(title string, words []string) bool {
	for _, w := range words {
		if strings.Contains(title, w) {
			return true
		}
	}
	return false
}
