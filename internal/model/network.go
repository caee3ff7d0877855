// Package model содержит проекционные модели сервиса: brand encoder и celebrity projection.
// Обе модели — полносвязные сети, веса которых хранятся в JSON-файле.
package model

import (
	"fmt"
	"math"

	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/goccy/go-json"
	"github.com/jimlawless/whereami"
)

// Поддерживаемые функции активации слоя.
const (
	ActivationLinear  = "linear"
	ActivationReLU    = "relu"
	ActivationTanh    = "tanh"
	ActivationSigmoid = "sigmoid"
)

// Layer — полносвязный слой: out = activation(in · Kernel + Bias).
// Kernel хранится в раскладке [in][out].
type Layer struct {
	Kernel     [][]float32 `json:"kernel"`
	Bias       []float32   `json:"bias"`
	Activation string      `json:"activation"`
}

// Network — последовательность слоёв с опциональной L2-нормировкой выхода.
// После загрузки модель только читается и безопасна для конкурентного использования.
type Network struct {
	Version     string  `json:"version"`
	InputDim    int     `json:"input_dim"`
	Layers      []Layer `json:"layers"`
	L2Normalize bool    `json:"l2_normalize"`
}

// Parse разбирает и проверяет JSON с весами модели.
func Parse(data []byte) (*Network, error) {
	var n Network
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrInvalidModel, err))
	}

	if err := n.validate(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &n, nil
}

func (n *Network) validate() error {
	if n.InputDim <= 0 {
		return fmt.Errorf("%w: input_dim must be positive", e.ErrInvalidModel)
	}
	if len(n.Layers) == 0 {
		return fmt.Errorf("%w: no layers", e.ErrInvalidModel)
	}

	in := n.InputDim
	for i, l := range n.Layers {
		if len(l.Kernel) != in {
			return fmt.Errorf("%w: layer %d kernel has %d rows, want %d", e.ErrInvalidModel, i, len(l.Kernel), in)
		}

		out := len(l.Bias)
		if out == 0 {
			return fmt.Errorf("%w: layer %d has empty bias", e.ErrInvalidModel, i)
		}
		for r, row := range l.Kernel {
			if len(row) != out {
				return fmt.Errorf("%w: layer %d kernel row %d has %d columns, want %d", e.ErrInvalidModel, i, r, len(row), out)
			}
		}

		switch l.Activation {
		case "", ActivationLinear, ActivationReLU, ActivationTanh, ActivationSigmoid:
		default:
			return fmt.Errorf("%w: layer %d: %q", e.ErrUnknownActivation, i, l.Activation)
		}

		in = out
	}

	return nil
}

// OutputDim возвращает размерность выхода сети.
func (n *Network) OutputDim() int {
	return len(n.Layers[len(n.Layers)-1].Bias)
}

// Project прогоняет вектор через сеть. Вход обрезается или дополняется нулями до InputDim.
func (n *Network) Project(features []float32) []float32 {
	x := make([]float64, n.InputDim)
	for i := 0; i < min(len(features), n.InputDim); i++ {
		x[i] = float64(features[i])
	}

	for _, l := range n.Layers {
		y := make([]float64, len(l.Bias))
		for j, b := range l.Bias {
			y[j] = float64(b)
		}
		for i, xi := range x {
			if xi == 0 {
				continue
			}
			for j, w := range l.Kernel[i] {
				y[j] += xi * float64(w)
			}
		}
		for j := range y {
			y[j] = activate(l.Activation, y[j])
		}
		x = y
	}

	if n.L2Normalize {
		var sum float64
		for _, v := range x {
			sum += v * v
		}
		if norm := math.Sqrt(sum); norm > 0 {
			for i := range x {
				x[i] /= norm
			}
		}
	}

	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}

	return out
}

func activate(name string, v float64) float64 {
	switch name {
	case ActivationReLU:
		return max(v, 0)
	case ActivationTanh:
		return math.Tanh(v)
	case ActivationSigmoid:
		return 1 / (1 + math.Exp(-v))
	default:
		return v
	}
}
