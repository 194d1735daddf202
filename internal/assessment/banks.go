package assessment

import "therapy-ai-agent/internal/scoring"

var frequencyOptions = []string{"Not at all", "Several days", "More than half the days", "Nearly every day"}
var frequencyScores = []int{0, 1, 2, 3}

var botherOptions = []string{"Not at all", "A little bit", "Moderately", "Quite a bit", "Extremely"}
var botherScores = []int{0, 1, 2, 3, 4}

var ratingScores = []int{0, 2, 4, 6, 8, 10}

var phq9Bank = Bank{
	Instrument:   scoring.PHQ9,
	Name:         "PHQ-9 Depression Assessment",
	Instructions: "Over the last 2 weeks, how often have you been bothered by any of the following problems?",
	Questions: freqQuestions(
		"Little interest or pleasure in doing things",
		"Feeling down, depressed, or hopeless",
		"Trouble falling or staying asleep, or sleeping too much",
		"Feeling tired or having little energy",
		"Poor appetite or overeating",
		"Feeling bad about yourself or that you are a failure or have let yourself or your family down",
		"Trouble concentrating on things, such as reading the newspaper or watching television",
		"Moving or speaking so slowly that other people could have noticed, or being so fidgety or restless that you have been moving around a lot more than usual",
		"Thoughts that you would be better off dead, or thoughts of hurting yourself in some way",
	),
}

var gad7Bank = Bank{
	Instrument:   scoring.GAD7,
	Name:         "GAD-7 Anxiety Assessment",
	Instructions: "Over the last 2 weeks, how often have you been bothered by the following problems?",
	Questions: freqQuestions(
		"Feeling nervous, anxious, or on edge",
		"Not being able to stop or control worrying",
		"Worrying too much about different things",
		"Trouble relaxing",
		"Being so restless that it's hard to sit still",
		"Becoming easily annoyed or irritable",
		"Feeling afraid as if something awful might happen",
	),
}

var pcl5Bank = Bank{
	Instrument:   scoring.PCL5,
	Name:         "PCL-5 PTSD Assessment",
	Instructions: "In the past month, how much were you bothered by:",
	Questions: botherQuestions(
		"Repeated, disturbing, and unwanted memories of the stressful experience?",
		"Repeated, disturbing dreams of the stressful experience?",
		"Suddenly feeling or acting as if the stressful experience were actually happening again?",
		"Feeling very upset when something reminded you of the stressful experience?",
		"Having strong physical reactions when something reminded you of the stressful experience?",
		"Avoiding memories, thoughts, or feelings related to the stressful experience?",
		"Avoiding external reminders of the stressful experience?",
		"Trouble remembering important parts of the stressful experience?",
		"Having strong negative beliefs about yourself, other people, or the world?",
		"Blaming yourself or someone else for the stressful experience or what happened after it?",
		"Having strong negative feelings such as fear, horror, anger, guilt, or shame?",
		"Loss of interest in activities that you used to enjoy?",
		"Feeling distant or cut off from other people?",
		"Trouble experiencing positive feelings?",
		"Irritable behavior, angry outbursts, or acting aggressively?",
		"Taking too many risks or doing things that could cause you harm?",
		"Being 'superalert' or watchful or on guard?",
		"Feeling jumpy or easily startled?",
		"Having difficulty concentrating?",
		"Trouble falling or staying asleep?",
	),
}

var orsBank = Bank{
	Instrument:   scoring.ORS,
	Name:         "Outcome Rating Scale (ORS)",
	Instructions: "Rate how you have been doing in the following areas of your life during the past week:",
	Questions: ratingQuestions(
		[]string{"Very Poor", "Poor", "Fair", "Good", "Very Good", "Excellent"},
		"Individual (personal well-being)",
		"Interpersonal (family, close relationships)",
		"Social (work, school, friendships)",
		"Overall (general sense of well-being)",
	),
}

var srsBank = Bank{
	Instrument:   scoring.SRS,
	Name:         "Session Rating Scale (SRS)",
	Instructions: "Please rate today's session nearest to the description that best fits your experience:",
	Questions: ratingQuestions(
		[]string{"Not at all", "Slightly", "Moderately", "Considerably", "Mostly", "Completely"},
		"I felt heard, understood, and respected",
		"We worked on and talked about what I wanted",
		"The therapist's approach is a good fit for me",
		"Overall, today's session was right for me",
	),
}

var banks = map[scoring.Instrument]*Bank{
	scoring.PHQ9: &phq9Bank,
	scoring.GAD7: &gad7Bank,
	scoring.PCL5: &pcl5Bank,
	scoring.ORS:  &orsBank,
	scoring.SRS:  &srsBank,
}

// BankFor returns the question bank for an instrument, or nil when the
// instrument is not supported.
func BankFor(instrument scoring.Instrument) *Bank {
	return banks[instrument]
}

// Instruments lists the supported instruments in display order.
func Instruments() []scoring.Instrument {
	return []scoring.Instrument{scoring.PHQ9, scoring.GAD7, scoring.PCL5, scoring.ORS, scoring.SRS}
}

func freqQuestions(texts ...string) []Question {
	return buildQuestions(frequencyOptions, frequencyScores, texts)
}

func botherQuestions(texts ...string) []Question {
	return buildQuestions(botherOptions, botherScores, texts)
}

func ratingQuestions(options []string, texts ...string) []Question {
	return buildQuestions(options, ratingScores, texts)
}

func buildQuestions(options []string, scores []int, texts []string) []Question {
	qs := make([]Question, len(texts))
	for i, text := range texts {
		qs[i] = Question{ID: i + 1, Text: text, Options: options, Scores: scores}
	}
	return qs
}
