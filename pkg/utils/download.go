package utils

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glitchlabs/glitchbot/pkg/logger"
)

// IsAudioFile reports whether a filename or content type looks like audio.
func IsAudioFile(filename, contentType string) bool {
	audioExtensions := []string{".mp3", ".wav", ".ogg", ".m4a", ".flac", ".aac", ".wma"}
	audioTypes := []string{"audio/", "application/ogg", "application/x-ogg"}

	for _, ext := range audioExtensions {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return true
		}
	}
	for _, audioType := range audioTypes {
		if strings.HasPrefix(strings.ToLower(contentType), audioType) {
			return true
		}
	}
	return false
}

// SanitizeFilename strips path separators and traversal sequences so a
// remote filename is safe to use locally.
func SanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.ReplaceAll(base, "..", "")
	base = strings.ReplaceAll(base, "/", "_")
	base = strings.ReplaceAll(base, "\\", "_")
	return base
}

type DownloadOptions struct {
	Timeout      time.Duration
	LoggerPrefix string
}

// DownloadFile fetches url into dir under a unique name and returns the
// local path, or "" on any failure. Callers own the file afterwards; the
// router removes attachment downloads once a command has run.
func DownloadFile(url, dir, filename string, opts DownloadOptions) string {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.LoggerPrefix == "" {
		opts.LoggerPrefix = "utils"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.ErrorCF(opts.LoggerPrefix, "Failed to create download directory", map[string]any{
			"dir": dir, "error": err.Error(),
		})
		return ""
	}

	localPath := filepath.Join(dir, uuid.NewString()[:8]+"_"+SanitizeFilename(filename))

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Get(url)
	if err != nil {
		logger.ErrorCF(opts.LoggerPrefix, "Failed to download file", map[string]any{
			"url": url, "error": err.Error(),
		})
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.ErrorCF(opts.LoggerPrefix, "Download returned non-200 status", map[string]any{
			"url": url, "status": resp.StatusCode,
		})
		return ""
	}

	out, err := os.Create(localPath)
	if err != nil {
		logger.ErrorCF(opts.LoggerPrefix, "Failed to create local file", map[string]any{
			"path": localPath, "error": err.Error(),
		})
		return ""
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(localPath)
		logger.ErrorCF(opts.LoggerPrefix, "Failed to write downloaded file", map[string]any{
			"path": localPath, "error": err.Error(),
		})
		return ""
	}

	return localPath
}
