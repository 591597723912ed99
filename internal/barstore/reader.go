package barstore

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"main/internal/model"
)

var (
	ErrChecksumMismatch = errors.New("barstore checksum mismatch")
	ErrPayloadTooLarge  = errors.New("barstore payload exceeds limit")
)

const maxPayloadLen = 1 << 10

// ReaderOptions controls record decoding.
type ReaderOptions struct {
	DisableChecksum bool
}

// Reader decodes bar records sequentially.
type Reader struct {
	r         *bufio.Reader
	opts      ReaderOptions
	headerBuf []byte
	payload   []byte
}

// NewReader wraps an io.Reader with bar log decoding.
func NewReader(r io.Reader, opts ReaderOptions) *Reader {
	return &Reader{
		r:         bufio.NewReader(r),
		opts:      opts,
		headerBuf: make([]byte, recordHeaderSize),
	}
}

// Next returns the next record header and decoded bar.
func (r *Reader) Next() (RecordHeader, model.Bar, error) {
	var header RecordHeader

	n, err := io.ReadFull(r.r, r.headerBuf)
	if err != nil {
		if err == io.EOF && n == 0 {
			return header, model.Bar{}, io.EOF
		}
		return header, model.Bar{}, err
	}

	header, payloadLen, err := decodeRecordHeader(r.headerBuf)
	if err != nil {
		return header, model.Bar{}, err
	}
	if payloadLen > maxPayloadLen {
		return header, model.Bar{}, ErrPayloadTooLarge
	}

	if cap(r.payload) < int(payloadLen) {
		r.payload = make([]byte, payloadLen)
	}
	r.payload = r.payload[:payloadLen]
	if _, err := io.ReadFull(r.r, r.payload); err != nil {
		return header, model.Bar{}, err
	}

	var checksumBuf [recordChecksumSize]byte
	if _, err := io.ReadFull(r.r, checksumBuf[:]); err != nil {
		return header, model.Bar{}, err
	}
	if !r.opts.DisableChecksum {
		expected := binary.LittleEndian.Uint32(checksumBuf[:])
		if sum := checksum(r.headerBuf, r.payload); sum != expected {
			return header, model.Bar{}, ErrChecksumMismatch
		}
	}

	bar, err := decodeBar(r.payload)
	if err != nil {
		return header, model.Bar{}, err
	}
	return header, bar, nil
}
