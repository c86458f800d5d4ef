// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage persists pool events for external indexers.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/luxfi/oraclepool/pool"
)

// JSONLSink appends pool events to a JSONL file, one object per line, in
// emission order. Emit never blocks settlement on I/O errors; the first
// error is retained and reported by Err and Close.
type JSONLSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	seq    uint64
	err    error
}

type eventRecord struct {
	Seq   uint64     `json:"seq"`
	Event string     `json:"event"`
	Data  pool.Event `json:"data"`
}

// NewJSONLSink opens (or creates) the sink file for appending.
func NewJSONLSink(path string) (*JSONLSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return &JSONLSink{file: file, writer: bufio.NewWriter(file)}, nil
}

// Emit implements pool.EventSink.
func (s *JSONLSink) Emit(ev pool.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}

	s.seq++
	line, err := json.Marshal(eventRecord{Seq: s.seq, Event: ev.EventName(), Data: ev})
	if err != nil {
		s.err = fmt.Errorf("marshal event: %w", err)
		return
	}
	if _, err := s.writer.Write(line); err != nil {
		s.err = fmt.Errorf("write event: %w", err)
		return
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		s.err = fmt.Errorf("write newline: %w", err)
	}
}

// Err reports the first emission error, if any.
func (s *JSONLSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close flushes and closes the sink file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil && s.err == nil {
		s.err = fmt.Errorf("flush output: %w", err)
	}
	if err := s.file.Close(); err != nil && s.err == nil {
		s.err = fmt.Errorf("close output: %w", err)
	}
	return s.err
}
