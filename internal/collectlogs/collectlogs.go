// Package collectlogs bundles logs, captures, and diagnostics into a zip
// archive for support.
package collectlogs

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"serialpcap/internal/version"
)

// Inputs names the files worth bundling. Missing files are skipped; the
// archive is a best-effort diagnostic, not a backup.
type Inputs struct {
	// LogFile is the rotating sensor log, if file logging is enabled.
	LogFile string
	// ConfigFile is the JSON config in use, if any.
	ConfigFile string
	// CaptureDir is scanned for .pcap files.
	CaptureDir string
}

// Collect creates a zip archive at zipName with the capture log, config,
// recent capture files, version, and system info.
func Collect(zipName string, in Inputs) error {
	zipFile, err := os.Create(zipName)
	if err != nil {
		return fmt.Errorf("failed to create zip: %w", err)
	}
	defer zipFile.Close()

	zw := zip.NewWriter(zipFile)
	defer zw.Close()

	if in.LogFile != "" {
		_ = addFile(zw, filepath.Base(in.LogFile), in.LogFile)
	}
	if in.ConfigFile != "" {
		_ = addFile(zw, filepath.Base(in.ConfigFile), in.ConfigFile)
	}
	if in.CaptureDir != "" {
		entries, err := os.ReadDir(in.CaptureDir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pcap") {
					continue
				}
				_ = addFile(zw, "captures/"+entry.Name(), filepath.Join(in.CaptureDir, entry.Name()))
			}
		}
	}

	if err := addString(zw, "version.txt", version.Version+"\n"); err != nil {
		return err
	}
	return addString(zw, "system-info.txt", systemInfo())
}

func addFile(zw *zip.Writer, entry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(entry)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

func addString(zw *zip.Writer, name, content string) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(content))
	return err
}

func systemInfo() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Version: %s\n", version.Version)
	fmt.Fprintf(&b, "OS: %s\n", runtime.GOOS)
	fmt.Fprintf(&b, "Arch: %s\n", runtime.GOARCH)
	fmt.Fprintf(&b, "Go version: %s\n", runtime.Version())
	if hn, err := os.Hostname(); err == nil {
		fmt.Fprintf(&b, "Hostname: %s\n", hn)
	}
	return b.String()
}
