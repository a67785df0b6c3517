package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// frameVersion is the first byte of every L2 frame.
const frameVersion = 0x01

// frameHeaderSize is version + compressed flag + 4-byte original size.
const frameHeaderSize = 6

// Codec serializes values for the L2 boundary, compressing them when the
// serialized size reaches the configured threshold. The compressed flag is
// stored explicitly in the frame header so decode never guesses.
type Codec struct {
	threshold int
	level     int
}

// NewCodec creates a codec. level must be in 1-9 and threshold must be
// non-negative; violations are reported together.
func NewCodec(thresholdBytes, level int) (*Codec, error) {
	ve := &ValidationError{}
	if thresholdBytes < 0 {
		ve.add("compression_threshold_bytes must be >= 0, got %d", thresholdBytes)
	}
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		ve.add("compression_level must be in 1-9, got %d", level)
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}
	return &Codec{threshold: thresholdBytes, level: level}, nil
}

// Encode returns the stored representation of value: the raw bytes below
// the threshold, gzip output at or above it. originalSize is always the
// pre-compression size.
func (c *Codec) Encode(value []byte) (data []byte, compressed bool, originalSize int, err error) {
	originalSize = len(value)
	if originalSize < c.threshold {
		return value, false, originalSize, nil
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, false, 0, &SerializationError{Op: "encode", Err: err}
	}
	if _, err := w.Write(value); err != nil {
		return nil, false, 0, &SerializationError{Op: "encode", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, false, 0, &SerializationError{Op: "encode", Err: err}
	}
	return buf.Bytes(), true, originalSize, nil
}

// Decode reverses Encode. The compressed flag comes from stored metadata,
// never from sniffing the bytes. Corrupted input is a SerializationError.
func (c *Codec) Decode(data []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return data, nil
	}

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &SerializationError{Op: "decode", Err: err}
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, &SerializationError{Op: "decode", Err: err}
	}
	return out, nil
}

// EncodeFrame encodes value into the wire format written to L2: a fixed
// header carrying the compressed flag and original size, followed by the
// payload bytes.
//
//	[0]   version
//	[1]   compressed flag (0 or 1)
//	[2:6] original size, big endian
//	[6:]  payload
func (c *Codec) EncodeFrame(value []byte) ([]byte, error) {
	data, compressed, originalSize, err := c.Encode(value)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, frameHeaderSize+len(data))
	frame[0] = frameVersion
	if compressed {
		frame[1] = 1
	}
	binary.BigEndian.PutUint32(frame[2:6], uint32(originalSize))
	copy(frame[frameHeaderSize:], data)
	return frame, nil
}

// DecodeFrame decodes a frame produced by EncodeFrame and verifies the
// recovered value against the recorded original size.
func (c *Codec) DecodeFrame(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, &SerializationError{Op: "decode", Err: errors.New("frame shorter than header")}
	}
	if frame[0] != frameVersion {
		return nil, &SerializationError{Op: "decode", Err: fmt.Errorf("unknown frame version 0x%02x", frame[0])}
	}
	compressed := frame[1] == 1
	originalSize := binary.BigEndian.Uint32(frame[2:6])

	value, err := c.Decode(frame[frameHeaderSize:], compressed)
	if err != nil {
		return nil, err
	}
	if uint32(len(value)) != originalSize {
		return nil, &SerializationError{
			Op:  "decode",
			Err: fmt.Errorf("size mismatch: header says %d, got %d", originalSize, len(value)),
		}
	}
	return value, nil
}
