package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDesign_Lowpass_NormalizedA0(t *testing.T) {
	b, a, err := Design(4, []float64{10}, Lowpass, 100)
	assert.NoError(t, err)
	assert.Len(t, a, 5)
	assert.Len(t, b, 5)
	assert.InDelta(t, 1.0, a[0], 1e-9)
}

func TestDesign_Bandpass_RequiresTwoCutoffs(t *testing.T) {
	_, _, err := Design(2, []float64{10}, Bandpass, 100)
	assert.Error(t, err)
}

func TestDesign_RejectsCutoffAboveNyquist(t *testing.T) {
	_, _, err := Design(2, []float64{60}, Lowpass, 100)
	assert.Error(t, err)
}

func TestDesign_RejectsOrderBelowOne(t *testing.T) {
	_, _, err := Design(0, []float64{10}, Lowpass, 100)
	assert.Error(t, err)
}

func TestFilterType_String(t *testing.T) {
	assert.Equal(t, "lowpass", Lowpass.String())
	assert.Equal(t, "highpass", Highpass.String())
	assert.Equal(t, "bandpass", Bandpass.String())
	assert.Equal(t, "bandstop", Bandstop.String())
}
