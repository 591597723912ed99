package barstore

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"main/internal/model"
)

const defaultFilePrefix = "bars"

// WriterConfig controls bar log output.
type WriterConfig struct {
	Dir         string
	FilePrefix  string
	MaxFileSize int64
}

func (c WriterConfig) withDefaults() WriterConfig {
	if c.FilePrefix == "" {
		c.FilePrefix = defaultFilePrefix
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 64 << 20
	}
	return c
}

// Validate checks if the config is usable.
func (c WriterConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("invalid writer config: Dir is empty")
	}
	return nil
}

// Writer appends bar records to rotating log files. It is synchronous;
// the simulation is single-threaded and the log is not on a hot path.
type Writer struct {
	cfg       WriterConfig
	file      *os.File
	buf       *bufio.Writer
	written   int64
	fileIndex int
	seq       uint64
	headerBuf [recordHeaderSize]byte
	payload   []byte
}

// NewWriter creates the output directory and opens the first log file.
func NewWriter(cfg WriterConfig) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	w := &Writer{cfg: cfg}
	if err := w.rotate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Append writes one bar record.
func (w *Writer) Append(header RecordHeader, bar model.Bar) error {
	if header.TsNano == 0 {
		header.TsNano = time.Now().UTC().UnixNano()
	}
	w.seq++
	header.Seq = w.seq

	w.payload = encodeBar(w.payload[:0], bar)
	encodeHeader(w.headerBuf[:], header, len(w.payload))

	if w.written+int64(recordHeaderSize+len(w.payload)+recordChecksumSize) > w.cfg.MaxFileSize {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	if _, err := w.buf.Write(w.headerBuf[:]); err != nil {
		return err
	}
	if _, err := w.buf.Write(w.payload); err != nil {
		return err
	}
	var sum [recordChecksumSize]byte
	binary.LittleEndian.PutUint32(sum[:], checksum(w.headerBuf[:], w.payload))
	if _, err := w.buf.Write(sum[:]); err != nil {
		return err
	}
	w.written += int64(recordHeaderSize + len(w.payload) + recordChecksumSize)
	return nil
}

// Close flushes and closes the current log file.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	if err := w.buf.Flush(); err != nil {
		return err
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *Writer) rotate() error {
	if w.file != nil {
		if err := w.buf.Flush(); err != nil {
			return err
		}
		if err := w.file.Close(); err != nil {
			return err
		}
	}
	name := fmt.Sprintf("%s-%06d.log", w.cfg.FilePrefix, w.fileIndex)
	w.fileIndex++
	file, err := os.OpenFile(filepath.Join(w.cfg.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w.file = file
	w.buf = bufio.NewWriter(file)
	w.written = 0
	return nil
}
