package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hamlet-bot/hamlet/internal/media"
)

type GeneratorMock struct {
	mock.Mock
}

func (m *GeneratorMock) Generate(ctx context.Context, req media.GenerateRequest) (media.Artifact, error) {
	args := m.Called(ctx, req)

	artifact, _ := args.Get(0).(media.Artifact)
	return artifact, args.Error(1)
}
