package contract

import (
	"strings"

	"github.com/alexanderramin/ridewait/internal/domain"
)

// Submission is one user request to draw a chart.
type Submission struct {
	Text string
}

// NewSubmission returns a Submission for text, or nil when text is blank so
// callers can pass form input straight through.
func NewSubmission(text string) *Submission {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &Submission{Text: text}
}

// GraphUpdate is the result of GenerateGraph. A nil Transcript or InputValue
// means the displayed value stays as it is.
type GraphUpdate struct {
	Figure     domain.Figure
	Transcript *string
	InputValue *string

	// Code is the chart code generated for the submission, if any.
	Code string
	// Failure is the message behind a placeholder figure.
	Failure string
	// Turns is the conversation length after the update.
	Turns int
}

// Changed reports whether the update carries transcript or input changes.
func (u *GraphUpdate) Changed() bool {
	return u.Transcript != nil || u.InputValue != nil
}

// TranscriptText returns the transcript or "" when it is unchanged.
func (u *GraphUpdate) TranscriptText() string {
	if u.Transcript == nil {
		return ""
	}
	return *u.Transcript
}
