package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

type ArchiveMeta struct {
	AreaID    string `json:"area_id"`
	Snapshot  string `json:"snapshot"`
	CreatedAt string `json:"created_at"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ArchiveArea copies an archive into `archiveDir/<area_id>/` next to a meta.json
// and returns the copied path.
func ArchiveArea(archiveDir, snapshotPath string) (string, error) {
	h, err := ReadHeader(snapshotPath)
	if err != nil {
		return "", err
	}
	if h.AreaID == "" {
		return "", fmt.Errorf("archive %s has no area id", snapshotPath)
	}

	dir := filepath.Join(archiveDir, h.AreaID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return "", err
	}

	meta := ArchiveMeta{
		AreaID:    h.AreaID,
		Snapshot:  filepath.Base(dst),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Width:     h.Width,
		Height:    h.Height,
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
