package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Response is the single JSON line a peer returns after reading a frame.
// Error is a pointer so that an empty "error" string still reads as a
// rejection; only an absent or null field is an acknowledgement.
type Response struct {
	Error    *string `json:"error,omitempty"`
	Status   string  `json:"status,omitempty"`
	Accepted int     `json:"accepted,omitempty"`
}

// Reject builds a rejection carrying msg.
func Reject(msg string) Response {
	return Response{Error: &msg}
}

// Rejected reports whether the peer refused the push.
func (r Response) Rejected() bool {
	return r.Error != nil
}

// Reason returns the rejection message, "" for acknowledgements.
func (r Response) Reason() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}

// WriteResponse writes resp as one newline-terminated JSON line.
func WriteResponse(w io.Writer, resp Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

// ReadResponse reads one line from r and parses it as a Response.
func ReadResponse(r *bufio.Reader) (Response, error) {
	var resp Response
	line, err := r.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return resp, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, fmt.Errorf("parse response: %w", err)
	}
	return resp, nil
}
