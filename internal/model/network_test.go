package model

import (
	"testing"

	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoLayer = `{
	"version": "v1",
	"input_dim": 3,
	"layers": [
		{"kernel": [[1, 0], [0, 1], [1, 1]], "bias": [0, -1], "activation": "relu"},
		{"kernel": [[2], [3]], "bias": [0.5], "activation": "linear"}
	]
}`

func TestParse_ProjectsThroughLayers(t *testing.T) {
	n, err := Parse([]byte(twoLayer))
	require.NoError(t, err)

	assert.Equal(t, "v1", n.Version)
	assert.Equal(t, 1, n.OutputDim())

	// слой 1: [1+2, 0+2-1] = [3, 1]; слой 2: 3*2 + 1*3 + 0.5
	out := n.Project([]float32{1, 0, 2})
	assert.InDeltaSlice(t, []float32{9.5}, out, 1e-6)

	// relu обнуляет отрицательный выход второго нейрона
	out = n.Project([]float32{1, 0, 0})
	assert.InDeltaSlice(t, []float32{2.5}, out, 1e-6)
}

func TestProject_PadsAndTruncatesInput(t *testing.T) {
	n, err := Parse([]byte(twoLayer))
	require.NoError(t, err)

	assert.Equal(t, n.Project([]float32{1, 0, 2}), n.Project([]float32{1, 0, 2, 100}))
	assert.Equal(t, n.Project([]float32{1, 0, 0}), n.Project([]float32{1}))
}

func TestProject_L2Normalize(t *testing.T) {
	n, err := Parse([]byte(`{
		"version": "norm", "input_dim": 2, "l2_normalize": true,
		"layers": [{"kernel": [[3, 0], [0, 4]], "bias": [0, 0], "activation": "tanh"}]
	}`))
	require.NoError(t, err)

	out := n.Project([]float32{1, 1})
	var sum float32
	for _, v := range out {
		sum += v * v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)

	assert.Equal(t, []float32{0, 0}, n.Project([]float32{0, 0}))
}

func TestActivate(t *testing.T) {
	assert.Equal(t, 0.0, activate(ActivationReLU, -2))
	assert.Equal(t, 0.5, activate(ActivationSigmoid, 0))
	assert.Equal(t, -2.0, activate(ActivationLinear, -2))
	assert.Equal(t, -2.0, activate("", -2))
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"not json", `{`, e.ErrInvalidModel},
		{"no layers", `{"input_dim": 2, "layers": []}`, e.ErrInvalidModel},
		{"zero input", `{"input_dim": 0, "layers": [{"kernel": [], "bias": [1]}]}`, e.ErrInvalidModel},
		{"kernel rows", `{"input_dim": 2, "layers": [{"kernel": [[1]], "bias": [1]}]}`, e.ErrInvalidModel},
		{"kernel cols", `{"input_dim": 1, "layers": [{"kernel": [[1, 2]], "bias": [1]}]}`, e.ErrInvalidModel},
		{"activation", `{"input_dim": 1, "layers": [{"kernel": [[1]], "bias": [1], "activation": "gelu"}]}`, e.ErrUnknownActivation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

