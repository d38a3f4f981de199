package workers

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cbodonnell/racetrack/pkg/log"
	"github.com/klauspost/compress/zstd"
)

// OpenGameLog opens the append-only game log. If the existing log is larger
// than rotateBytes it is first archived next to it as <path>.<unix>.zst and
// a fresh log is started. rotateBytes <= 0 disables rotation.
func OpenGameLog(path string, rotateBytes int64) (*os.File, error) {
	if rotateBytes > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > rotateBytes {
			archive := fmt.Sprintf("%s.%d.zst", path, time.Now().Unix())
			if err := compressFile(path, archive); err != nil {
				log.Error("Failed to rotate game log: %v", err)
			} else {
				log.Info("Rotated game log to %s", archive)
				if err := os.Truncate(path, 0); err != nil {
					log.Error("Failed to truncate game log: %v", err)
				}
			}
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open game log %s: %v", path, err)
	}
	return f, nil
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := enc.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
