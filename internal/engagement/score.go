// Package engagement computes the derived ranking score of a blog.
package engagement

import (
	"math"
	"time"
)

// Signals are the inputs to a trending score.
type Signals struct {
	Likes     int
	Comments  int
	Views     int
	CreatedAt time.Time
	Now       time.Time
}

func (s Signals) age() time.Duration {
	age := s.Now.Sub(s.CreatedAt)
	if age < 0 {
		return 0
	}
	return age
}

// TrendingScore is the general score: weighted engagement divided by an age
// factor that starts decaying after the first day.
func TrendingScore(s Signals) float64 {
	ageInHours := s.age().Hours()
	ageFactor := math.Max(1, ageInHours/24)
	return (float64(s.Likes)*3 + float64(s.Comments)*2 + float64(s.Views)*0.1) / ageFactor
}

// DecayScore is the score recomputed on like toggles. Comments are ignored and
// the decay never drops below 0.1.
func DecayScore(s Signals) float64 {
	ageInDays := s.age().Hours() / 24
	timeDecay := math.Max(0.1, 1/(1+ageInDays*0.1))
	return (float64(s.Likes)*2 + float64(s.Views)) * timeDecay
}
