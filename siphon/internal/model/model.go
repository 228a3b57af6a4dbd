package model

// QueueConfig sizes a dispatch queue.
type QueueConfig struct {
	BufferSize int // default: 1
	NumWorkers int // default: 1
}

func NewQueueConfig(bufferSize int, numWorkers int) QueueConfig {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return QueueConfig{
		BufferSize: bufferSize,
		NumWorkers: numWorkers,
	}
}

// Partitionable is implemented by actions that must be performed in order
// with every other action carrying the same key.
type Partitionable interface {
	PartitionKey() string
}
