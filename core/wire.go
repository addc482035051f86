package plic

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync/atomic"
)

// A frame on the daemon socket is a big-endian uint32 length followed by that
// many bytes of JSON object.
const frameHeader = 4

// MaxMsgSize bounds the body of a single frame.
const MaxMsgSize = 16 << 20

var msgCounter atomic.Uint64

// NextID returns a process-unique request id.
func NextID() string {
	return fmt.Sprintf("r%d", msgCounter.Add(1))
}

// WriteMsg frames msg and writes header and body with one Write call.
func WriteMsg(w io.Writer, msg map[string]any) error {
	var buf bytes.Buffer
	buf.Write(make([]byte, frameHeader))
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	// Drop the encoder's trailing newline.
	frame := buf.Bytes()[:buf.Len()-1]
	size := len(frame) - frameHeader
	if size > MaxMsgSize {
		return fmt.Errorf("message of %d bytes exceeds limit", size)
	}
	binary.BigEndian.PutUint32(frame, uint32(size))
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadMsg reads one frame. Numbers decode as json.Number, so integers of any
// width survive a read and a re-encode unchanged. It returns io.EOF
// unwrapped when the peer closed the connection between messages.
func ReadMsg(r io.Reader) (map[string]any, error) {
	var header [frameHeader]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read length: %w", err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxMsgSize {
		return nil, fmt.Errorf("message of %d bytes exceeds limit", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var msg map[string]any
	if err := dec.Decode(&msg); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("unmarshal: message is not an object")
	}
	return msg, nil
}

// MsgInt reads a non-negative integer field. Values above limit are clamped
// to limit. ok is false when the field is not a non-negative number.
func MsgInt(raw any, limit int) (n int, ok bool) {
	var f float64
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			if i < 0 {
				return 0, false
			}
			if i > int64(limit) {
				return limit, true
			}
			return int(i), true
		}
		parsed, err := strconv.ParseFloat(string(v), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case int:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || f < 0 {
		return 0, false
	}
	if f >= float64(limit) {
		return limit, true
	}
	return int(f), true
}
