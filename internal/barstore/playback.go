package barstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"main/internal/model"
)

// PlaybackConfig controls bar log playback.
type PlaybackConfig struct {
	Dir             string
	FilePrefix      string
	DisableChecksum bool
}

func (c PlaybackConfig) withDefaults() PlaybackConfig {
	if c.FilePrefix == "" {
		c.FilePrefix = defaultFilePrefix
	}
	return c
}

// Validate checks if the config is usable.
func (c PlaybackConfig) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("invalid playback config: Dir is empty")
	}
	return nil
}

// Playback replays bar records in file order.
type Playback struct {
	cfg PlaybackConfig
}

// NewPlayback validates the config and creates a playback engine.
func NewPlayback(cfg PlaybackConfig) (*Playback, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Playback{cfg: cfg}, nil
}

// Run replays bar records and calls the handler for each one.
func (p *Playback) Run(ctx context.Context, handler func(RecordHeader, model.Bar) error) error {
	if handler == nil {
		return errors.New("playback handler is nil")
	}
	files, err := p.collectFiles()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := p.playFile(ctx, path, handler); err != nil {
			return err
		}
	}
	return nil
}

func (p *Playback) playFile(ctx context.Context, path string, handler func(RecordHeader, model.Bar) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := NewReader(file, ReaderOptions{DisableChecksum: p.cfg.DisableChecksum})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		header, bar, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := handler(header, bar); err != nil {
			return err
		}
	}
}

func (p *Playback) collectFiles() ([]string, error) {
	entries, err := os.ReadDir(p.cfg.Dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, p.cfg.FilePrefix+"-") && strings.HasSuffix(name, ".log") {
			files = append(files, filepath.Join(p.cfg.Dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}
