package agent

import (
	"strings"

	"therapy-ai-agent/internal/patient"
)

type interventionRule struct {
	keyword string
	name    string
}

var modalityInterventions = map[patient.Modality][]interventionRule{
	patient.ModalityCBT: {
		{"thought record", "Cognitive Restructuring"},
		{"activity scheduling", "Behavioral Activation"},
		{"exposure", "Exposure Therapy"},
	},
	patient.ModalityDBT: {
		{"mindfulness", "Mindfulness Practice"},
		{"distress tolerance", "Distress Tolerance"},
		{"emotion regulation", "Emotion Regulation"},
		{"interpersonal", "Interpersonal Effectiveness"},
	},
	patient.ModalityACT: {
		{"values", "Values Clarification"},
		{"defusion", "Cognitive Defusion"},
		{"acceptance", "Acceptance Practice"},
	},
}

var generalInterventions = []interventionRule{
	{"sounds like", "Reflective Listening"},
}

// IdentifyIntervention names the therapeutic technique a model reply
// used, based on its language. Empty when nothing recognizable was
// used.
func IdentifyIntervention(response string, modality patient.Modality) string {
	lower := strings.ToLower(response)
	for _, rule := range modalityInterventions[modality] {
		if strings.Contains(lower, rule.keyword) {
			return rule.name
		}
	}
	for _, rule := range generalInterventions {
		if strings.Contains(lower, rule.keyword) {
			return rule.name
		}
	}
	return ""
}
