package wire

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultMaxPayload caps the payload size a reader accepts.
const DefaultMaxPayload = 64 << 20

var (
	ErrInvalidToken    = errors.New("token must be non-empty and single-line")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Header is the line-oriented preamble of a frame.
type Header struct {
	Token     string
	Watermark int64
}

// WriteFrame writes the header lines followed by the raw payload bytes.
func WriteFrame(w io.Writer, h Header, payload []byte) error {
	if h.Token == "" || strings.ContainsAny(h.Token, "\r\n") {
		return ErrInvalidToken
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%s\n%d\n%d\n", h.Token, h.Watermark, len(payload)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := bw.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}

// ReadFrame parses one frame from r. Payloads larger than maxPayload are
// refused before any of their bytes are read.
func ReadFrame(r *bufio.Reader, maxPayload int) (Header, []byte, error) {
	var h Header

	token, err := readLine(r)
	if err != nil {
		return h, nil, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return h, nil, ErrInvalidToken
	}
	h.Token = token

	line, err := readLine(r)
	if err != nil {
		return h, nil, fmt.Errorf("read watermark: %w", err)
	}
	if h.Watermark, err = strconv.ParseInt(line, 10, 64); err != nil {
		return h, nil, fmt.Errorf("parse watermark: %w", err)
	}

	line, err = readLine(r)
	if err != nil {
		return h, nil, fmt.Errorf("read payload length: %w", err)
	}
	size, err := strconv.Atoi(line)
	if err != nil || size < 0 {
		return h, nil, fmt.Errorf("parse payload length %q", line)
	}
	if size > maxPayload {
		return h, nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return h, nil, fmt.Errorf("read payload: %w", err)
	}
	return h, payload, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// EncodePayload serializes p as JSON.
func EncodePayload(p *Payload) ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload parses a JSON payload.
func DecodePayload(b []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}
