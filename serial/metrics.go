package serial

import (
	"time"

	"go.uber.org/atomic"
)

// metrics tracks transfer statistics for a single Port.
type metrics struct {
	// Write Operations
	writeOperations atomic.Int64 // Total command writes
	writeErrors     atomic.Int64 // Failed writes
	bytesWritten    atomic.Int64 // Total bytes written
	lastWriteTime   atomic.Int64 // Unix nano timestamp of last write

	// Read Operations
	linesRead    atomic.Int64 // Complete lines framed by the reader loop
	bytesRead    atomic.Int64 // Total bytes read
	droppedLines atomic.Int64 // Lines discarded for exceeding maxLineSize
	readErrors   atomic.Int64 // Terminal read errors
	lastReadTime atomic.Int64 // Unix nano timestamp of last framed line
}

// Stats is a point-in-time copy of a Port's transfer counters.
type Stats struct {
	WriteOperations int64
	WriteErrors     int64
	BytesWritten    int64
	LinesRead       int64
	BytesRead       int64
	DroppedLines    int64
	ReadErrors      int64
	LastWrite       time.Time
	LastRead        time.Time
}

func (m *metrics) snapshot() Stats {
	s := Stats{
		WriteOperations: m.writeOperations.Load(),
		WriteErrors:     m.writeErrors.Load(),
		BytesWritten:    m.bytesWritten.Load(),
		LinesRead:       m.linesRead.Load(),
		BytesRead:       m.bytesRead.Load(),
		DroppedLines:    m.droppedLines.Load(),
		ReadErrors:      m.readErrors.Load(),
	}
	if ts := m.lastWriteTime.Load(); ts > 0 {
		s.LastWrite = time.Unix(0, ts)
	}
	if ts := m.lastReadTime.Load(); ts > 0 {
		s.LastRead = time.Unix(0, ts)
	}
	return s
}

func (m *metrics) recordWrite(n int, err error) {
	m.writeOperations.Inc()
	m.bytesWritten.Add(int64(n))
	m.lastWriteTime.Store(time.Now().UnixNano())
	if err != nil {
		m.writeErrors.Inc()
	}
}

func (m *metrics) recordLine() {
	m.linesRead.Inc()
	m.lastReadTime.Store(time.Now().UnixNano())
}
