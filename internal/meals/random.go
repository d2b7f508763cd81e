// ABOUTME: Random meal picking for catalog spot checks.
// ABOUTME: Takes its source explicitly so plan generation stays deterministic.
package meals

import (
	"math/rand/v2"

	"github.com/harperreed/fitplan/internal/models"
)

// SelectRandom returns a uniformly chosen element of candidates.
func SelectRandom[T any](r *rand.Rand, candidates []T) (T, bool) {
	var zero T
	if len(candidates) == 0 || r == nil {
		return zero, false
	}
	return candidates[r.IntN(len(candidates))], true
}

// SpotCheck samples n random meals from diet's library and returns those a
// user on that diet could not eat. An empty result means the sample passed.
func SpotCheck(r *rand.Rand, libs Libraries, diet models.Diet, n int) (sampled int, violations []models.MealRecord) {
	lib := libs.Library(diet)
	if lib.Len() == 0 {
		return 0, nil
	}
	for i := 0; i < n; i++ {
		m, ok := SelectRandom(r, lib.Meals)
		if !ok {
			break
		}
		sampled++
		if !diet.Accepts(m.Diet) {
			violations = append(violations, m)
		}
	}
	return sampled, violations
}
