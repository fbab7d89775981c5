package services

import "math"

const xpPerLevelUnit = 100

// LevelFromXP returns floor(sqrt(xp/100)) using integer arithmetic so that
// every threshold maps back to exactly its own level.
func LevelFromXP(xp int64) int {
	if xp <= 0 {
		return 0
	}
	return int(integerSqrt(xp / xpPerLevelUnit))
}

func XPThresholdForLevel(level int) int64 {
	if level <= 0 {
		return 0
	}
	return int64(level) * int64(level) * xpPerLevelUnit
}

// LevelProgressPercent interpolates between the current and next level
// thresholds, rounds to the nearest percent and is clamped to [0, 100].
func LevelProgressPercent(xp int64) int {
	if xp <= 0 {
		return 0
	}
	level := LevelFromXP(xp)
	floor := XPThresholdForLevel(level)
	ceiling := XPThresholdForLevel(level + 1)
	span := ceiling - floor
	if span <= 0 {
		return 0
	}

	percent := int(math.Round(float64(xp-floor) * 100 / float64(span)))
	return min(max(percent, 0), 100)
}

func integerSqrt(value int64) int64 {
	if value <= 0 {
		return 0
	}
	root := int64(math.Sqrt(float64(value)))
	for root*root > value {
		root--
	}
	for (root+1)*(root+1) <= value {
		root++
	}
	return root
}
