package session

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The conversation heuristics in this file are pure functions over the
// patient's input text and the session state.

const initialEngagement = 7

var moodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*(?:/|out of)\s*10`),
	regexp.MustCompile(`mood\s*(?:is|:)?\s*(\d+)`),
	regexp.MustCompile(`feeling\s*(?:like\s*)?(?:a\s*)?(\d+)`),
	regexp.MustCompile(`\b(\d+)\s*(?:today|right now|currently)`),
}

// extractMood finds a 1-10 mood rating in free text. ok is false when
// no pattern matches or the number is out of range.
func extractMood(input string) (int, bool) {
	lower := strings.ToLower(input)
	for _, re := range moodPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 10 {
			continue
		}
		return n, true
	}
	return 0, false
}

func containsAny(input string, phrases []string) bool {
	lower := strings.ToLower(input)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var agendaPhrases = []string{"want to", "focus on", "work on", "discuss", "talk about"}

// openingComplete requires a captured mood plus enough substance to
// set an agenda.
func openingComplete(input string, moodCaptured bool) bool {
	if !moodCaptured || len(input) <= 20 {
		return false
	}
	return containsAny(input, agendaPhrases) || len(input) > 50
}

var homeworkReviewPhrases = []string{
	"completed", "finished", "did all", "done with", "learned", "noticed",
	"helpful", "challenging", "struggled", "easy", "difficult",
}

func homeworkReviewComplete(input string, hadPending bool) bool {
	if !hadPending {
		return true
	}
	return containsAny(input, homeworkReviewPhrases)
}

var insightPhrases = []string{
	"makes sense", "understand now", "that helps", "feeling better",
	"good strategy", "will try that",
}

// mainWorkComplete waits for half the session clock plus a signal that
// the work landed.
func mainWorkComplete(input string, elapsed, sessionDuration time.Duration) bool {
	if elapsed < sessionDuration/2 {
		return false
	}
	return containsAny(input, insightPhrases)
}

var skillPhrases = []string{
	"got it", "understand", "makes sense", "will practice", "feels good",
	"helpful", "ready to try", "confident",
}

func skillPracticeComplete(input string, skillTaught bool) bool {
	if !skillTaught {
		return true
	}
	return containsAny(input, skillPhrases)
}

func homeworkAssignmentComplete(input string, assigned int) bool {
	return assigned > 0 || strings.Contains(strings.ToLower(input), "no homework")
}

var progressPhrases = []string{"better", "improving", "progress", "easier"}

// reportsProgress gates the goal bump during goal review.
func reportsProgress(input string) bool {
	return containsAny(input, progressPhrases)
}

var highEngagementPhrases = []string{
	"interesting", "helpful", "makes sense", "i see", "that's right",
	"exactly", "yes", "good point",
}
var mediumEngagementPhrases = []string{"okay", "sure", "i guess", "maybe", "possibly"}
var lowEngagementPhrases = []string{"don't know", "whatever", "fine", "i suppose"}

// classifyEngagement anchors the input at 9, 6, or 3; unmatched input
// falls back on length.
func classifyEngagement(input string) int {
	switch {
	case containsAny(input, highEngagementPhrases):
		return 9
	case containsAny(input, mediumEngagementPhrases):
		return 6
	case containsAny(input, lowEngagementPhrases):
		return 3
	case len(input) > 50:
		return 6
	default:
		return 3
	}
}

// updateEngagement averages the running level toward the new anchor.
func updateEngagement(current int, input string) int {
	anchor := classifyEngagement(input)
	return int(math.Round(float64(current+anchor) / 2))
}
