package session

import "fmt"

// Phase is a stage of the structured therapy session. Sessions move
// through the linear order below; EmergencyIntervention can preempt
// any phase, and CheckIn/Assessment are reserved for shorter session
// formats.
type Phase int

const (
	NotStarted Phase = iota
	Opening
	HomeworkReview
	MainWork
	SkillPractice
	HomeworkAssignment
	GoalReview
	Closing
	Completed
	CheckIn
	Assessment
	EmergencyIntervention
)

var phaseNames = map[Phase]string{
	NotStarted:            "not_started",
	Opening:               "opening",
	HomeworkReview:        "homework_review",
	MainWork:              "main_work",
	SkillPractice:         "skill_practice",
	HomeworkAssignment:    "homework_assignment",
	GoalReview:            "goal_review",
	Closing:               "closing",
	Completed:             "completed",
	CheckIn:               "check_in",
	Assessment:            "assessment",
	EmergencyIntervention: "emergency_intervention",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase is the inverse of String.
func ParsePhase(s string) (Phase, error) {
	for p, name := range phaseNames {
		if name == s {
			return p, nil
		}
	}
	return NotStarted, fmt.Errorf("unknown session phase %q", s)
}

// standardOrder is the default full-session path. Completed is the
// terminal state and is reached only through End.
var standardOrder = []Phase{
	Opening,
	HomeworkReview,
	MainWork,
	SkillPractice,
	HomeworkAssignment,
	GoalReview,
	Closing,
}

// Next returns the phase that follows p on the standard path, or
// Completed when p is the last working phase.
func (p Phase) Next() Phase {
	for i, phase := range standardOrder {
		if phase == p {
			if i+1 < len(standardOrder) {
				return standardOrder[i+1]
			}
			return Completed
		}
	}
	return Completed
}
