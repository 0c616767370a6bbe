package curator

import "fmt"

// Outcome is the result of processing one item of a batch.
type Outcome int

const (
	// Done means the API call succeeded.
	Done Outcome = iota
	// Skipped means no call was needed or the item no longer applies.
	Skipped
	// Failed means the API call returned an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ItemResult records what happened to one item of a batch.
type ItemResult struct {
	ID      string
	Outcome Outcome
	Message string
	Err     error
}

// Summary counts the outcomes of a batch. One failed item never stops the batch.
type Summary struct {
	Done    int
	Skipped int
	Failed  int
	Items   []ItemResult
}

// Add records a result.
func (s *Summary) Add(r ItemResult) {
	switch r.Outcome {
	case Done:
		s.Done++
	case Skipped:
		s.Skipped++
	case Failed:
		s.Failed++
	}
	s.Items = append(s.Items, r)
}

// Total returns the number of processed items.
func (s *Summary) Total() int {
	return s.Done + s.Skipped + s.Failed
}

// Failures returns the failed items in processing order.
func (s *Summary) Failures() []ItemResult {
	var failed []ItemResult
	for _, r := range s.Items {
		if r.Outcome == Failed {
			failed = append(failed, r)
		}
	}
	return failed
}
