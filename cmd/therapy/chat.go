package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"therapy-ai-agent/internal/patient"
	"therapy-ai-agent/internal/session"
)

func chatCmd() *cobra.Command {
	var patientID string
	var modality string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run an interactive therapy session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			p, err := resolvePatient(ctx, a, patientID)
			if err != nil {
				return err
			}
			return runChat(ctx, a, p, patient.Modality(modality))
		},
	}
	cmd.Flags().StringVarP(&patientID, "patient", "p", "", "patient id (prompts for intake when omitted)")
	cmd.Flags().StringVarP(&modality, "modality", "m", "", "treatment modality: CBT, DBT, ACT, or Psychodynamic")
	return cmd
}

// resolvePatient loads the requested patient, or walks a minimal
// intake when none was given.
func resolvePatient(ctx context.Context, a *app, rawID string) (*patient.Patient, error) {
	if rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("invalid patient id: %w", err)
		}
		return a.patients.Get(ctx, id)
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Patient name: ")
	name, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	p := &patient.Patient{Name: strings.TrimSpace(name)}
	if err := a.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	fmt.Printf("Created patient %s (%s)\n", p.Name, p.ID)
	return p, nil
}

func runChat(ctx context.Context, a *app, p *patient.Patient, modality patient.Modality) error {
	turn, err := a.manager.Start(ctx, p.ID, modality)
	if err != nil {
		return err
	}
	fmt.Printf("\nSession %s started (%s phase). Type /end to finish, /status for progress.\n\n", turn.SessionID, turn.Phase)
	fmt.Printf("Therapist: %s\n\n", turn.Reply)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/end":
			result, err := a.manager.End(ctx, p.ID, "ended by clinician")
			if err != nil {
				return err
			}
			printEndSummary(result)
			return nil
		case "/status":
			status, err := a.manager.Status(p.ID)
			if err != nil {
				return err
			}
			fmt.Printf("Phase: %s | Engagement: %d/10 | Phases completed: %d\n\n",
				status.Phase, status.Engagement, len(status.PhasesCompleted))
			continue
		}

		turn, err := a.manager.ProcessInput(ctx, p.ID, input)
		if err != nil {
			if errors.Is(err, session.ErrTurnInProgress) {
				fmt.Println("(still thinking, give me a moment)")
				continue
			}
			return err
		}

		if turn.Advisory != "" {
			fmt.Printf("\n*** %s ***\n\n", turn.Advisory)
		}
		fmt.Printf("Therapist: %s\n\n", turn.Reply)
	}

	// stdin closed without /end; wrap up so the record is not left open.
	if _, err := a.manager.End(ctx, p.ID, "session ended at input close"); err != nil && !errors.Is(err, session.ErrNoActiveSession) {
		return err
	}
	return scanner.Err()
}

func printEndSummary(result *session.EndResult) {
	fmt.Printf("\nSession complete in %s.\n", result.Metrics.Duration.Round(time.Second))
	fmt.Printf("Phase completion: %.0f%% | Engagement: %d/10\n",
		result.Metrics.PhaseCompletionRate*100, result.Metrics.Engagement)
	if result.Metrics.MoodDelta != nil {
		fmt.Printf("Mood change: %+d\n", *result.Metrics.MoodDelta)
	}
	if len(result.Record.Homework) > 0 {
		fmt.Printf("Homework: %s\n", strings.Join(result.Record.Homework, ", "))
	}
}
