package cli

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestProgressSpinner_Disabled(t *testing.T) {
	var out bytes.Buffer
	p := &ProgressSpinner{message: "Parsing on server", out: &out}

	p.Start()
	p.Stop()

	assert.Equal(t, "Parsing on server...\n", out.String())
}

func TestSpinnerModel(t *testing.T) {
	m := spinnerModel{spinner: spinner.New(), message: "Parsing"}
	assert.Contains(t, m.View(), "Parsing")

	next, cmd := m.Update(stopMsg{})
	assert.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}
