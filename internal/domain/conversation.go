package domain

import (
	"strings"
	"time"
)

// Turn is one (user description, generated chart code) pair. Error is set when
// the completion service failed and no code was produced.
type Turn struct {
	Seq         int
	Description string
	Code        string
	Error       string
	CreatedAt   time.Time
}

// Pending reports whether the turn is still waiting for its code.
func (t Turn) Pending() bool {
	return t.Code == "" && t.Error == ""
}

// ConversationState is the per-session chart conversation. It grows by one
// turn per submission and is reset only by starting a new session.
type ConversationState struct {
	SessionID string
	Turns     []Turn
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Len returns the number of turns.
func (c ConversationState) Len() int { return len(c.Turns) }

// Last returns the most recent turn, if any.
func (c ConversationState) Last() (Turn, bool) {
	if len(c.Turns) == 0 {
		return Turn{}, false
	}
	return c.Turns[len(c.Turns)-1], true
}

// WithTurn returns a copy of the state with description appended as a new
// pending turn. The receiver is not modified.
func (c ConversationState) WithTurn(description string, now time.Time) ConversationState {
	turns := make([]Turn, len(c.Turns), len(c.Turns)+1)
	copy(turns, c.Turns)
	turns = append(turns, Turn{
		Seq:         len(c.Turns) + 1,
		Description: description,
		CreatedAt:   now,
	})
	c.Turns = turns
	c.UpdatedAt = now
	return c
}

// CompleteLast fills in the code (or failure) of the most recent turn.
func (c *ConversationState) CompleteLast(code string, failure error) {
	if len(c.Turns) == 0 {
		return
	}
	last := &c.Turns[len(c.Turns)-1]
	last.Code = strings.TrimSpace(code)
	if failure != nil {
		last.Error = failure.Error()
	}
}

// Transcript renders every turn in the Markdown form shown to the user.
func (c ConversationState) Transcript() string {
	var b strings.Builder
	for _, t := range c.Turns {
		WriteTurn(&b, t)
	}
	return b.String()
}

// WriteTurn writes one Description/Code block. A pending turn ends right after
// "**Code**:" so a completion model continues from there.
func WriteTurn(b *strings.Builder, t Turn) {
	b.WriteString("\n**Description**: ")
	b.WriteString(t.Description)
	b.WriteString("\n\n**Code**:")
	if t.Pending() {
		return
	}
	b.WriteString(" ```")
	b.WriteString(t.Code)
	b.WriteString("```\n")
}
