package irtl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-zglob"

	"justapengu.in/irtl/pkg/session"
)

// SessionFile is a recorded session found on disk.
type SessionFile struct {
	Path       string
	RecordedAt time.Time
	Size       int64
}

// FindSessions lists every session file under dir, including subdirectories,
// newest first. A missing directory has no sessions.
func FindSessions(dir string) ([]SessionFile, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	matches, err := zglob.Glob(filepath.Join(dir, "**", session.FilePattern))

	if err != nil {
		return nil, err
	}

	var files []SessionFile

	for _, match := range matches {
		info, err := os.Stat(match)

		if err != nil {
			return nil, err
		}

		if !info.Mode().IsRegular() {
			continue
		}

		recordedAt, err := session.RecordedAt(match)

		if err != nil {
			// renamed by hand, fall back to when it was written
			recordedAt = info.ModTime()
		}

		files = append(files, SessionFile{
			Path:       match,
			RecordedAt: recordedAt,
			Size:       info.Size(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RecordedAt.After(files[j].RecordedAt)
	})

	return files, nil
}

// WriteSessionList writes one line per session file with its size and age
// relative to now.
func WriteSessionList(w io.Writer, files []SessionFile, now time.Time) error {
	if len(files) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found")
		return err
	}

	for _, file := range files {
		_, err := fmt.Fprintf(w, "%-48s  %8s  %s\n", file.Path, humanize.Bytes(uint64(file.Size)), humanize.RelTime(file.RecordedAt, now, "ago", "from now"))

		if err != nil {
			return err
		}
	}

	return nil
}
