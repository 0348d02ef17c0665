package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush
var ErrStreamingUnsupported = errors.New("streaming not supported")

type chunkEvent struct {
	Text string `json:"text"`
}

type errorEvent struct {
	Error string `json:"error"`
}

type completeEvent struct {
	ID     string `json:"_id"`
	Status string `json:"status"`
}

// SSEWriter writes Server-Sent Events and flushes after each one
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	buf     bytes.Buffer
}

// NewSSEWriter sends the event-stream headers and a 200 status
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// send writes one event; an empty name produces an unnamed message event
func (s *SSEWriter) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.buf.Reset()
	if event != "" {
		s.buf.WriteString("event: ")
		s.buf.WriteString(event)
		s.buf.WriteByte('\n')
	}
	s.buf.WriteString("data: ")
	s.buf.Write(payload)
	s.buf.WriteString("\n\n")

	if _, err := s.w.Write(s.buf.Bytes()); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteChunk sends one piece of model output as {"text": ...}
func (s *SSEWriter) WriteChunk(text string) error {
	return s.send("", chunkEvent{Text: text})
}

// WriteError sends the terminal error event
func (s *SSEWriter) WriteError(message string) error {
	return s.send("error", errorEvent{Error: message})
}

// WriteComplete sends the terminal complete event
func (s *SSEWriter) WriteComplete(resumeID, status string) error {
	return s.send("complete", completeEvent{ID: resumeID, Status: status})
}
