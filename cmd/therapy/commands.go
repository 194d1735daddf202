package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"therapy-ai-agent/internal/assessment"
	"therapy-ai-agent/internal/crisis"
	"therapy-ai-agent/internal/docs"
	"therapy-ai-agent/internal/goal"
	"therapy-ai-agent/internal/patient"
	"therapy-ai-agent/internal/scoring"
)

// withApp wires the app for a one-shot command.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(ctx, a, args)
	}
}

func parsePatientArg(args []string) (uuid.UUID, error) {
	if len(args) == 0 {
		return uuid.Nil, fmt.Errorf("patient id is required")
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid patient id: %w", err)
	}
	return id, nil
}

func patientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Manage the patient roster",
	}

	var name, dob, gender, modality string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new patient",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			p := &patient.Patient{
				Name:              name,
				DateOfBirth:       dob,
				Gender:            gender,
				PreferredModality: patient.Modality(modality),
			}
			if modality == "" {
				p.PreferredModality = patient.ModalityCBT
			}
			if err := a.patients.Create(ctx, p); err != nil {
				return err
			}
			fmt.Printf("Created patient %s (%s)\n", p.Name, p.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&name, "name", "", "patient name (required)")
	addCmd.Flags().StringVar(&dob, "dob", "", "date of birth, YYYY-MM-DD")
	addCmd.Flags().StringVar(&gender, "gender", "", "gender")
	addCmd.Flags().StringVar(&modality, "modality", "", "preferred modality: CBT, DBT, ACT, or Psychodynamic")
	addCmd.MarkFlagRequired("name")

	var includeInactive bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patients, err := a.patients.List(ctx, includeInactive)
			if err != nil {
				return err
			}
			for _, p := range patients {
				fmt.Printf("%s  %-25s  %s  risk=%s\n", p.ID, p.Name, p.PreferredModality, p.RiskLevel)
			}
			if len(patients) == 0 {
				fmt.Println("No patients on the roster.")
			}
			return nil
		}),
	}
	listCmd.Flags().BoolVar(&includeInactive, "all", false, "include deactivated patients")

	removeCmd := &cobra.Command{
		Use:   "remove <patient-id>",
		Short: "Deactivate a patient (history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			id, err := parsePatientArg(args)
			if err != nil {
				return err
			}
			return a.patients.Deactivate(ctx, id)
		}),
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd)
	return cmd
}

func assessCmd() *cobra.Command {
	var showProgress bool
	cmd := &cobra.Command{
		Use:   "assess <patient-id> <type>",
		Short: "Administer a standardized assessment (PHQ9, GAD7, PCL5, ORS, SRS)",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patientID, err := parsePatientArg(args)
			if err != nil {
				return err
			}
			instrument := scoring.Instrument(strings.ToUpper(args[1]))
			bank := assessment.BankFor(instrument)
			if bank == nil {
				return fmt.Errorf("unknown assessment type %q", args[1])
			}

			if showProgress {
				p, err := a.assessments.TrackProgress(ctx, patientID, instrument)
				if err != nil {
					return err
				}
				direction := "worsening"
				if p.Improvement {
					direction = "improving"
				}
				fmt.Printf("%s: %d -> %d (%+d, %s) over %d assessments\n",
					p.Type, p.PreviousScore, p.LatestScore, p.Change, direction, p.Total)
				return nil
			}

			choices, err := collectChoices(bank)
			if err != nil {
				return err
			}
			result, err := a.assessments.Administer(ctx, patientID, nil, instrument, choices)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s\n", bank.Name)
			fmt.Printf("Total score: %d (%s)\n", result.TotalScore, result.SeverityLevel)
			fmt.Printf("%s\n", result.Interpretation)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&showProgress, "progress", false, "show change since the previous administration instead of administering")
	return cmd
}

func collectChoices(bank *assessment.Bank) ([]int, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\n%s\n%s\n\n", bank.Name, bank.Instructions)

	choices := make([]int, 0, len(bank.Questions))
	for _, q := range bank.Questions {
		fmt.Printf("Q%d: %s\n", q.ID, q.Text)
		for i, opt := range q.Options {
			fmt.Printf("  %d. %s\n", i, opt)
		}
		for {
			fmt.Printf("Choice (0-%d): ", len(q.Options)-1)
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil || n < 0 || n >= len(q.Options) {
				fmt.Println("Invalid choice, try again.")
				continue
			}
			choices = append(choices, n)
			break
		}
		fmt.Println()
	}
	return choices, nil
}

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals <patient-id>",
		Short: "Show treatment goals and progress",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patientID, err := parsePatientArg(args)
			if err != nil {
				return err
			}
			goals, err := a.goals.List(ctx, patientID, "")
			if err != nil {
				return err
			}
			for _, g := range goals {
				fmt.Printf("%s  [%s] %-12s P%d %3d%%  %s\n",
					g.ID, g.Status, g.Type, g.Priority, g.CurrentProgress, g.Description)
			}
			report, err := a.goals.ProgressReport(ctx, patientID)
			if err != nil {
				return err
			}
			fmt.Printf("\n%d goals (%d active, %d achieved), average progress %.0f%%\n",
				report.TotalCount, report.ActiveCount, report.AchievedCount, report.AverageProgress)
			return nil
		}),
	}

	var goalType, description, targetDate string
	var priority int
	addCmd := &cobra.Command{
		Use:   "add <patient-id>",
		Short: "Add a treatment goal",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patientID, err := parsePatientArg(args)
			if err != nil {
				return err
			}
			g := &goal.Goal{
				PatientID:   patientID,
				Type:        goal.Type(goalType),
				Description: description,
				Priority:    priority,
				TargetDate:  targetDate,
			}
			if err := a.goals.Create(ctx, g); err != nil {
				return err
			}
			fmt.Printf("Created goal %s\n", g.ID)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&goalType, "type", "symptom", "goal type: symptom, functional, behavioral, interpersonal, cognitive")
	addCmd.Flags().StringVar(&description, "description", "", "goal description (required)")
	addCmd.Flags().IntVar(&priority, "priority", 2, "priority 1-3")
	addCmd.Flags().StringVar(&targetDate, "target", "", "target date, YYYY-MM-DD")
	addCmd.MarkFlagRequired("description")

	cmd.AddCommand(addCmd)
	return cmd
}

func homeworkCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "homework <patient-id>",
		Short: "Show homework assignments",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patientID, err := parsePatientArg(args)
			if err != nil {
				return err
			}
			var list func() error
			if all {
				list = func() error {
					assignments, err := a.homework.List(ctx, patientID)
					if err != nil {
						return err
					}
					for _, hw := range assignments {
						status := "pending"
						if hw.Completed {
							status = "done"
						}
						fmt.Printf("%s  [%s] %s (due %s)\n", hw.ID, status, hw.Title, hw.DueDate)
					}
					return nil
				}
			} else {
				list = func() error {
					assignments, err := a.homework.Pending(ctx, patientID)
					if err != nil {
						return err
					}
					for _, hw := range assignments {
						fmt.Printf("%s  %s (due %s)\n", hw.ID, hw.Title, hw.DueDate)
					}
					if len(assignments) == 0 {
						fmt.Println("No pending homework.")
					}
					return nil
				}
			}
			return list()
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "include completed assignments")
	return cmd
}

func alertsCmd() *cobra.Command {
	var resolve string
	var notes string
	var history bool
	cmd := &cobra.Command{
		Use:   "alerts <patient-id>",
		Short: "Show open crisis alerts",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patientID, err := parsePatientArg(args)
			if err != nil {
				return err
			}
			if resolve != "" {
				alertID, err := uuid.Parse(resolve)
				if err != nil {
					return fmt.Errorf("invalid alert id: %w", err)
				}
				if err := a.crises.Resolve(ctx, alertID, notes); err != nil {
					return err
				}
				fmt.Println("Alert resolved.")
				return nil
			}

			var alerts []crisis.Alert
			if history {
				alerts, err = a.crises.History(ctx, patientID)
			} else {
				alerts, err = a.crises.OpenAlerts(ctx, patientID)
			}
			if err != nil {
				return err
			}
			if followUp, err := a.crises.FollowUpNeeded(ctx, patientID); err == nil && followUp {
				fmt.Println("FOLLOW-UP REQUIRED before the next session.")
			}
			for _, alert := range alerts {
				fmt.Printf("%s  %s/%s score=%d  %s\n    %q\n",
					alert.ID, alert.CrisisType, alert.RiskLevel, alert.AssessmentScore,
					alert.CreatedAt.Format("2006-01-02 15:04"), alert.TriggerText)
			}
			if len(alerts) == 0 {
				fmt.Println("No open alerts.")
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&resolve, "resolve", "", "alert id to mark resolved")
	cmd.Flags().StringVar(&notes, "notes", "", "resolution notes")
	cmd.Flags().BoolVar(&history, "history", false, "include resolved alerts")
	return cmd
}

func sessionsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions <patient-id>",
		Short: "Show recent therapy sessions",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patientID, err := parsePatientArg(args)
			if err != nil {
				return err
			}
			records, err := a.sessions.ListRecent(ctx, patientID, limit)
			if err != nil {
				return err
			}
			for _, rec := range records {
				status := "in progress"
				if rec.Completed {
					status = "completed"
				}
				mood := ""
				if rec.MoodBefore != nil && rec.MoodAfter != nil {
					mood = fmt.Sprintf("  mood %d->%d", *rec.MoodBefore, *rec.MoodAfter)
				}
				fmt.Printf("%s  %s  %s  %s (%s)%s\n",
					rec.ID, rec.Date.Format("2006-01-02"), rec.Modality, rec.Phase, status, mood)
				if len(rec.Interventions) > 0 {
					fmt.Printf("    interventions: %s\n", strings.Join(rec.Interventions, ", "))
				}
			}
			if len(records) == 0 {
				fmt.Println("No sessions recorded.")
			}
			return nil
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of sessions to show")
	return cmd
}

func interviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interview <patient-id>",
		Short: "Conduct a structured suicide risk interview",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patientID, err := parsePatientArg(args)
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			responses := make(map[string]int, len(crisis.InterviewQuestions))
			for _, q := range crisis.InterviewQuestions {
				for {
					if q.Scale {
						fmt.Printf("%s (0-10): ", q.Text)
					} else {
						fmt.Printf("%s (y/n): ", q.Text)
					}
					line, err := reader.ReadString('\n')
					if err != nil {
						return err
					}
					answer, ok := parseInterviewAnswer(strings.TrimSpace(line), q.Scale)
					if !ok {
						fmt.Println("Invalid answer, try again.")
						continue
					}
					responses[q.ID] = answer
					break
				}
			}

			result, err := a.crises.ConductInterview(ctx, patientID, responses)
			if err != nil {
				return err
			}
			fmt.Printf("\nRisk level: %s (score %.1f)\n%s\n", result.RiskLevel, result.Score, result.Advisory)
			return nil
		}),
	}
}

func parseInterviewAnswer(line string, scale bool) (int, bool) {
	if scale {
		n, err := strconv.Atoi(line)
		if err != nil || n < 0 || n > 10 {
			return 0, false
		}
		return n, true
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return 1, true
	case "n", "no":
		return 0, true
	}
	return 0, false
}

func noteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "note <patient-id>",
		Short: "Show clinical notes",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			patientID, err := parsePatientArg(args)
			if err != nil {
				return err
			}
			notes, err := a.notes.List(ctx, patientID)
			if err != nil {
				return err
			}
			for _, n := range notes {
				printNote(n)
			}
			if len(notes) == 0 {
				fmt.Println("No clinical notes.")
			}
			return nil
		}),
	}
}

func printNote(n docs.Note) {
	fmt.Printf("=== %s note, %s ===\n", n.Type, n.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("S: %s\n", n.Subjective)
	fmt.Printf("O: %s\n", n.Objective)
	fmt.Printf("A: %s\n", n.Assessment)
	fmt.Printf("P: %s\n\n", n.Plan)
}
