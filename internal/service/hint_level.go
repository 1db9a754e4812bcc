package service

// HintLevel is the escalation stage of a progressive hint.
type HintLevel string

// Hint levels, ordered nudge < guide < direction. A candidate never regresses
// to a lower level within a session; direction is terminal.
const (
	HintLevelNudge     HintLevel = "nudge"
	HintLevelGuide     HintLevel = "guide"
	HintLevelDirection HintLevel = "direction"
)

// NextHintLevel maps the number of hints already issued for a
// (interview, candidate) pair to the level of the next hint. Pure and total:
// 0 prior hints yields a nudge, 1 yields a guide, everything beyond stays at
// direction.
func NextHintLevel(priorHintCount int) HintLevel {
	switch {
	case priorHintCount <= 0:
		return HintLevelNudge
	case priorHintCount == 1:
		return HintLevelGuide
	default:
		return HintLevelDirection
	}
}

// Rank orders hint levels for monotonicity checks.
func (l HintLevel) Rank() int {
	switch l {
	case HintLevelNudge:
		return 0
	case HintLevelGuide:
		return 1
	case HintLevelDirection:
		return 2
	default:
		return -1
	}
}
