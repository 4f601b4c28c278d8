package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationState_WithTurnDoesNotMutateReceiver(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	base := ConversationState{SessionID: "s1"}

	next := base.WithTurn("average by month", now)

	assert.Equal(t, 0, base.Len())
	require.Equal(t, 1, next.Len())
	assert.Equal(t, 1, next.Turns[0].Seq)
	assert.True(t, next.Turns[0].Pending())
	assert.Equal(t, now, next.UpdatedAt)
}

func TestConversationState_TranscriptFormat(t *testing.T) {
	state := ConversationState{}.WithTurn("posted wait by month", time.Now())
	state.CompleteLast(`  px.line(df_average_month, x="Month", y="Posted Wait")  `, nil)

	want := "\n**Description**: posted wait by month\n\n**Code**: ```px.line(df_average_month, x=\"Month\", y=\"Posted Wait\")```\n"
	assert.Equal(t, want, state.Transcript())
}

func TestConversationState_PendingTurnEndsAtCodeMarker(t *testing.T) {
	state := ConversationState{}.WithTurn("color by year", time.Now())

	assert.True(t, strings.HasSuffix(state.Transcript(), "**Code**:"))
}

func TestConversationState_CompleteLastRecordsFailure(t *testing.T) {
	state := ConversationState{}.WithTurn("anything", time.Now())
	state.CompleteLast("", errors.New("service unavailable"))

	last, ok := state.Last()
	require.True(t, ok)
	assert.False(t, last.Pending())
	assert.Equal(t, "service unavailable", last.Error)
}

func TestConversationState_CompleteLastOnEmptyIsNoop(t *testing.T) {
	var state ConversationState
	state.CompleteLast("code", nil)
	assert.Equal(t, 0, state.Len())
}
