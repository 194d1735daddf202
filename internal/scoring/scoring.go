// Package scoring holds the clinical scoring rules for the supported
// standardized instruments. It is a pure package with no storage or
// I/O dependencies.
package scoring

import "fmt"

// Instrument identifies a standardized assessment instrument.
type Instrument string

const (
	PHQ9 Instrument = "PHQ9"
	GAD7 Instrument = "GAD7"
	PCL5 Instrument = "PCL5"
	ORS  Instrument = "ORS"
	SRS  Instrument = "SRS"
)

// QuestionCount returns the number of items the instrument expects.
func (i Instrument) QuestionCount() int {
	switch i {
	case PHQ9:
		return 9
	case GAD7:
		return 7
	case PCL5:
		return 20
	case ORS, SRS:
		return 4
	default:
		return 0
	}
}

// MaxItemScore returns the highest valid score for a single item.
func (i Instrument) MaxItemScore() int {
	switch i {
	case PHQ9, GAD7:
		return 3
	case PCL5:
		return 4
	case ORS, SRS:
		return 10
	default:
		return 0
	}
}

// Score sums the item responses after validating count and range.
func Score(instrument Instrument, responses []int) (int, error) {
	want := instrument.QuestionCount()
	if want == 0 {
		return 0, fmt.Errorf("unknown instrument %q", instrument)
	}
	if len(responses) != want {
		return 0, fmt.Errorf("%s expects %d responses, got %d", instrument, want, len(responses))
	}
	max := instrument.MaxItemScore()
	total := 0
	for i, r := range responses {
		if r < 0 || r > max {
			return 0, fmt.Errorf("%s response %d out of range [0, %d]: %d", instrument, i+1, max, r)
		}
		total += r
	}
	return total, nil
}

// Severity maps a total score to the instrument's severity band.
func Severity(instrument Instrument, total int) string {
	switch instrument {
	case PHQ9:
		switch {
		case total <= 4:
			return "Minimal"
		case total <= 9:
			return "Mild"
		case total <= 14:
			return "Moderate"
		case total <= 19:
			return "Moderately Severe"
		default:
			return "Severe"
		}
	case GAD7:
		switch {
		case total <= 4:
			return "Minimal"
		case total <= 9:
			return "Mild"
		case total <= 14:
			return "Moderate"
		default:
			return "Severe"
		}
	case PCL5:
		switch {
		case total < 31:
			return "Below Threshold"
		case total < 50:
			return "Probable PTSD"
		default:
			return "High Probability PTSD"
		}
	case ORS:
		if total < 25 {
			return "Clinical Range"
		}
		return "Functioning Range"
	case SRS:
		if total < 36 {
			return "Below Cutoff"
		}
		return "Above Cutoff"
	}
	return "Unknown"
}

// Interpret renders a short clinical interpretation of the result.
func Interpret(instrument Instrument, total int) string {
	severity := Severity(instrument, total)
	switch instrument {
	case PHQ9:
		out := fmt.Sprintf("PHQ-9 score of %d indicates %s depression.", total, severity)
		if total >= 20 {
			out += " High scores warrant immediate clinical attention and suicide risk assessment."
		}
		return out
	case GAD7:
		return fmt.Sprintf("GAD-7 score of %d indicates %s anxiety.", total, severity)
	case PCL5:
		return fmt.Sprintf("PCL-5 score of %d: %s.", total, severity)
	case ORS:
		return fmt.Sprintf("ORS score of %d places the client in the %s.", total, severity)
	case SRS:
		return fmt.Sprintf("SRS score of %d is %s for the therapeutic alliance.", total, severity)
	}
	return fmt.Sprintf("Score of %d.", total)
}
