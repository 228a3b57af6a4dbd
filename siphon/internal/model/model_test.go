package model_test

import (
	"testing"

	"github.com/on-the-ground/siphon_go/siphon/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestNewQueueConfig_Defaults(t *testing.T) {
	assert.Equal(t, model.QueueConfig{BufferSize: 1, NumWorkers: 1}, model.NewQueueConfig(0, -3))
	assert.Equal(t, model.QueueConfig{BufferSize: 8, NumWorkers: 4}, model.NewQueueConfig(8, 4))
}
