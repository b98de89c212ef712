package snapshot

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/brunt/sulis/internal/area"
)

// Version is the archive layout written by WriteArea.
const Version = 1

// Header is the first line of an archive, readable without decoding the body.
type Header struct {
	Version int    `json:"version"`
	AreaID  string `json:"area_id"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// ParseLevel maps a tuning archive level to a zstd encoder level.
func ParseLevel(s string) (zstd.EncoderLevel, error) {
	switch s {
	case "fastest":
		return zstd.SpeedFastest, nil
	case "", "default":
		return zstd.SpeedDefault, nil
	case "better":
		return zstd.SpeedBetterCompression, nil
	case "best":
		return zstd.SpeedBestCompression, nil
	default:
		return 0, fmt.Errorf("unknown archive level %q", s)
	}
}

// WriteArea stores b as a zstd stream: a JSON header line followed by the
// YAML document.
func WriteArea(path string, b *area.Builder, level zstd.EncoderLevel) error {
	var body bytes.Buffer
	if err := b.Encode(&body); err != nil {
		return fmt.Errorf("encode area %s: %w", b.ID, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(level))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(Header{Version: Version, AreaID: b.ID, Width: b.Width, Height: b.Height})
	if err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if _, err := bw.Write(body.Bytes()); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadArea reads an archive written by WriteArea.
func ReadArea(path string) (Header, *area.Builder, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	h, err = readHeader(br)
	if err != nil {
		return h, nil, err
	}
	b, err := area.Decode(br)
	if err != nil {
		return h, nil, fmt.Errorf("decode area: %w", err)
	}
	if b.ID != h.AreaID || b.Width != h.Width || b.Height != h.Height {
		return h, nil, fmt.Errorf("header %s %dx%d does not match body %s %dx%d", h.AreaID, h.Width, h.Height, b.ID, b.Width, b.Height)
	}
	return h, b, nil
}

// ReadHeader returns only the header line of an archive.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return Header{}, err
	}
	defer dec.Close()
	return readHeader(bufio.NewReader(dec))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var h Header
	line, err := br.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("parse header: %w", err)
	}
	if h.Version != Version {
		return h, fmt.Errorf("unsupported archive version %d", h.Version)
	}
	return h, nil
}
