package server

import (
	"bytes"
	"errors"
	"testing"
)

func TestAudioBufferAppendAndFlush(t *testing.T) {
	buf := NewAudioBuffer(100)

	if !buf.IsEmpty() {
		t.Error("new buffer not empty")
	}

	if err := buf.Append([]byte("abc")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := buf.Append([]byte("def")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if buf.IsEmpty() {
		t.Error("buffer empty after appends")
	}

	got := buf.Flush()
	if !bytes.Equal(got, []byte("abcdef")) {
		t.Errorf("Flush = %q, want abcdef", got)
	}
	if !buf.IsEmpty() {
		t.Error("buffer not empty after Flush")
	}
}

func TestAudioBufferCap(t *testing.T) {
	buf := NewAudioBuffer(5)

	if err := buf.Append([]byte("abc")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := buf.Append([]byte("def")); !errors.Is(err, ErrBufferFull) {
		t.Fatalf("got %v, want ErrBufferFull", err)
	}

	// The oversized chunk was rejected whole; earlier data is intact
	if got := buf.Flush(); !bytes.Equal(got, []byte("abc")) {
		t.Errorf("Flush = %q, want abc", got)
	}
}

func TestAudioBufferClear(t *testing.T) {
	buf := NewAudioBuffer(100)

	_ = buf.Append([]byte("abc"))
	buf.Clear()

	if !buf.IsEmpty() {
		t.Error("buffer not empty after Clear")
	}
	if got := buf.Flush(); got != nil {
		t.Errorf("Flush = %q after Clear, want nil", got)
	}
}

func TestAudioBufferFlushEmpty(t *testing.T) {
	buf := NewAudioBuffer(100)
	if got := buf.Flush(); got != nil {
		t.Errorf("Flush on empty buffer = %q, want nil", got)
	}
}
