package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cavaliergopher/grab/v3"
	"github.com/schollz/progressbar/v3"
)

var client = grab.NewClient()

// ProgressCallback is called during download with progress info
type ProgressCallback func(bytesComplete, totalBytes int64, percentage int)

// File downloads a file from URL to the target path
func File(ctx context.Context, url, targetPath string, callback ProgressCallback) error {
	req, err := grab.NewRequest(targetPath, url)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req = req.WithContext(ctx)
	req.NoResume = true // Always overwrite, never resume

	resp := client.Do(req)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastPercentage := -1
	for {
		select {
		case <-ticker.C:
			if callback != nil {
				var percentage int
				if resp.Size() > 0 {
					percentage = int(resp.Progress() * 100)
				}
				if percentage != lastPercentage {
					callback(resp.BytesComplete(), resp.Size(), percentage)
					lastPercentage = percentage
				}
			}
		case <-resp.Done:
			if callback != nil {
				callback(resp.BytesComplete(), resp.Size(), 100)
			}
			if err := resp.Err(); err != nil {
				return fmt.Errorf("download failed: %w", err)
			}
			return nil
		}
	}
}

// ToTemp downloads to a temp file and returns its path. The caller removes it.
func ToTemp(ctx context.Context, url, prefix string, callback ProgressCallback) (string, error) {
	tempFile, err := os.CreateTemp("", prefix+"*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := File(ctx, url, tempPath, callback); err != nil {
		_ = os.Remove(tempPath) // Best effort cleanup
		return "", err
	}

	return tempPath, nil
}

// Bytes downloads url and returns its content
func Bytes(ctx context.Context, url string, callback ProgressCallback) ([]byte, error) {
	tempPath, err := ToTemp(ctx, url, "caffeine-", callback)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempPath)

	data, err := os.ReadFile(tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read download: %w", err)
	}
	return data, nil
}

// Bar returns a progress callback drawing a byte progress bar to w, and a
// function that finishes the bar
func Bar(w io.Writer, description string) (ProgressCallback, func()) {
	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	sized := false
	callback := func(bytesComplete, totalBytes int64, _ int) {
		if !sized && totalBytes > 0 {
			bar.ChangeMax64(totalBytes)
			sized = true
		}
		_ = bar.Set64(bytesComplete)
	}
	finish := func() {
		_ = bar.Finish()
	}
	return callback, finish
}
