package realtime

import (
	"bufio"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// EventSnapshot carries a full JSON game document
	EventSnapshot = "snapshot"
	// EventClosed tells the client the feed has ended
	EventClosed = "closed"

	// Time between keepalive pings
	pingPeriod = 15 * time.Second
)

// FormatMessage formats an SSE message with event name and data.
// Multi-line data is properly formatted with "data: " prefix on each line.
func FormatMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	var lines []string
	var current strings.Builder
	for _, r := range s {
		if r == '\n' {
			lines = append(lines, current.String())
			current.Reset()
		} else if r != '\r' {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

// ServeSSE streams a client's mailbox to an HTTP response until the request
// ends, the mailbox closes, or done is closed. Messages must already be
// formatted with FormatMessage.
func ServeSSE(w http.ResponseWriter, r *http.Request, client *Client, done <-chan struct{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.Messages():
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-done:
			// Drain anything already queued so the final snapshot is not lost
			for {
				select {
				case message, ok := <-client.Messages():
					if !ok {
						return
					}
					if _, err := w.Write(message); err != nil {
						return
					}
				default:
					_, _ = w.Write(FormatMessage(EventClosed, "closed"))
					flusher.Flush()
					return
				}
			}

		case <-r.Context().Done():
			return
		}
	}
}

// ReadEvents parses an SSE stream, calling fn for every complete event.
// Comment lines (keepalives) are skipped. It returns when the stream ends.
func ReadEvents(r io.Reader, fn func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				fn(currentEvent, strings.Join(dataLines, "\n"))
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	return scanner.Err()
}
