package agent

import (
	"fmt"
	"strings"

	"therapy-ai-agent/internal/patient"
)

// SystemPrompt frames the model as a therapist working in the
// patient's preferred modality.
func SystemPrompt(modality patient.Modality) string {
	var approach string
	switch modality {
	case patient.ModalityDBT:
		approach = "dialectical behavior therapy, emphasizing mindfulness, distress tolerance, and emotion regulation skills"
	case patient.ModalityACT:
		approach = "acceptance and commitment therapy, emphasizing psychological flexibility, values, and cognitive defusion"
	case patient.ModalityPsychodynamic:
		approach = "psychodynamic therapy, exploring recurring relationship patterns, defense mechanisms, and insight into unconscious themes"
	default:
		approach = "cognitive behavioral therapy, emphasizing the connection between thoughts, feelings, and behaviors"
	}

	return fmt.Sprintf(
		"You are a warm, professional therapy assistant practicing %s. "+
			"Respond with empathy, validate the patient's experience, and keep replies focused and conversational. "+
			"Never diagnose. If the patient mentions self-harm or suicide, prioritize safety and provide crisis resources.",
		approach)
}

// PhaseContext describes the current point in the session for the
// prompt.
type PhaseContext struct {
	PatientName string
	Modality    patient.Modality
	Phase       string
	Goals       []string
	Homework    []string
	Input       string
}

// BuildPrompt assembles the turn prompt from session context and the
// patient's latest input.
func BuildPrompt(pc PhaseContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session phase: %s.\n", pc.Phase)
	if pc.PatientName != "" {
		fmt.Fprintf(&b, "Patient: %s.\n", pc.PatientName)
	}
	if len(pc.Goals) > 0 {
		fmt.Fprintf(&b, "Active treatment goals: %s.\n", strings.Join(pc.Goals, "; "))
	}
	if len(pc.Homework) > 0 {
		fmt.Fprintf(&b, "Pending homework: %s.\n", strings.Join(pc.Homework, "; "))
	}

	switch pc.Phase {
	case "opening":
		b.WriteString("Check in on the patient's mood and set an agenda for today.\n")
	case "homework_review":
		b.WriteString("Review the pending homework: what was completed, what was learned, what was hard.\n")
	case "main_work":
		b.WriteString("Work on the patient's primary concern using the treatment modality.\n")
	case "skill_practice":
		b.WriteString("Teach and practice one concrete skill from the treatment modality.\n")
	case "homework_assignment":
		b.WriteString("Collaboratively agree on homework for the coming week.\n")
	case "goal_review":
		b.WriteString("Review progress on the treatment goals.\n")
	case "closing":
		b.WriteString("Summarize the session, ask for an end-of-session mood rating, and invite feedback.\n")
	case "emergency_intervention":
		b.WriteString("The patient is in crisis. Focus entirely on safety, grounding, and connecting them with crisis resources.\n")
	}

	fmt.Fprintf(&b, "\nPatient says: %s", pc.Input)
	return b.String()
}
