package progress

const XPPerLevel = 100

// LevelFor derives the level for an XP total: 0..99 is level 1, 100..199 is
// level 2 and so on.
func LevelFor(xp int) int {
	return max(0, xp)/XPPerLevel + 1
}

func XPIntoLevel(xp int) int {
	return max(0, xp) % XPPerLevel
}
