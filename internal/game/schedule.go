package game

import (
	"math/rand"
	"sort"
)

// Scheduled goals never land in the opening minutes or on the half-time
// and full-time whistles.
const (
	firstHalfGoalMin  = 5
	firstHalfGoalMax  = 44
	secondHalfGoalMin = 46
	secondHalfGoalMax = 89
)

// PlanGoalTimes draws the minutes at which a side with targetCount goals
// will score. Draw i falls in the first half while i < targetCount/2 taken
// as a real quotient, so a single goal and the extra goal of any odd count
// come before the break. The result is sorted ascending and never nil.
func PlanGoalTimes(rng *rand.Rand, targetCount int) []int {
	if targetCount <= 0 {
		return []int{}
	}
	times := make([]int, 0, targetCount)
	for i := 0; i < targetCount; i++ {
		if 2*i < targetCount {
			times = append(times, firstHalfGoalMin+rng.Intn(firstHalfGoalMax-firstHalfGoalMin+1))
		} else {
			times = append(times, secondHalfGoalMin+rng.Intn(secondHalfGoalMax-secondHalfGoalMin+1))
		}
	}
	sort.Ints(times)
	return times
}
