package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSubmission_BlankIsNil(t *testing.T) {
	assert.Nil(t, NewSubmission(""))
	assert.Nil(t, NewSubmission(" \t\n"))
	assert.Equal(t, "hi", NewSubmission("hi").Text)
}

func TestGraphUpdate_Changed(t *testing.T) {
	empty := ""
	assert.False(t, (&GraphUpdate{}).Changed())
	assert.True(t, (&GraphUpdate{InputValue: &empty}).Changed())
	assert.Equal(t, "", (&GraphUpdate{}).TranscriptText())
}
