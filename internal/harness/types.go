package harness

// StepResult records what one step printed and how it exited.
type StepResult struct {
	Args   []string
	Exit   int
	Stdout string
	Stderr string
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion held.
	Pass bool

	// Transcript holds every step in order.
	Transcript []StepResult

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step to the transcript.
func (r *Result) AddStep(step StepResult) {
	r.Transcript = append(r.Transcript, step)
}
