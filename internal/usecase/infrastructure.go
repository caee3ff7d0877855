package usecase

import "context"

type TextEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type PitchGenerator interface {
	GeneratePitch(ctx context.Context, pc *PitchContext) (string, error)
}
