package utils

import (
	"io"
	"sync"
)

type syncer interface {
	Sync() error
}

type flusher interface {
	Flush() error
}

// DurableWriter pushes every write through to storage before returning, so an
// interrupted pass still leaves complete lines in the append-only log file.
// Writers implementing Sync (files) are synced; writers implementing Flush (buffers) are flushed.
type DurableWriter struct {
	mutex  sync.Mutex
	target io.Writer
}

// NewDurableWriter wraps target. Wrapping an existing DurableWriter returns it unchanged.
func NewDurableWriter(target io.Writer) *DurableWriter {
	if existing, wrapped := target.(*DurableWriter); wrapped {
		return existing
	}
	return &DurableWriter{target: target}
}

func (writer *DurableWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	written, writeError := writer.target.Write(data)
	if writeError != nil {
		return written, writeError
	}
	return written, writer.persist()
}

// Sync lets zap flush the writer on logger Sync.
func (writer *DurableWriter) Sync() error {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()
	return writer.persist()
}

func (writer *DurableWriter) persist() error {
	switch target := writer.target.(type) {
	case syncer:
		return target.Sync()
	case flusher:
		return target.Flush()
	default:
		return nil
	}
}
