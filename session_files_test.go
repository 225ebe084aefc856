package irtl

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"justapengu.in/irtl/pkg/session"
)

func TestFindSessions(t *testing.T) {
	dir := t.TempDir()

	recorded := []time.Time{
		time.Date(2023, time.February, 9, 21, 10, 28, 0, time.Local),
		time.Date(2023, time.February, 10, 9, 0, 0, 0, time.Local),
		time.Date(2023, time.January, 1, 12, 30, 0, 0, time.Local),
	}

	paths := []string{
		filepath.Join(dir, session.Filename(recorded[0])),
		filepath.Join(dir, session.Filename(recorded[1])),
		filepath.Join(dir, "spa", session.Filename(recorded[2])),
	}

	if err := os.MkdirAll(filepath.Join(dir, "spa"), 0755); err != nil {
		t.Fatal(err)
	}

	for _, path := range paths {
		if err := session.Save(path, testSession([]float64{1, 1, 2})); err != nil {
			t.Fatal(err)
		}
	}

	if err := ioutil.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := FindSessions(dir)

	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 3 {
		t.Fatalf("Expected 3 sessions, got %+v", files)
	}

	// newest first
	for i, expected := range []int{1, 0, 2} {
		if files[i].Path != paths[expected] || !files[i].RecordedAt.Equal(recorded[expected]) {
			t.Errorf("Position %d: expected %s, got %s", i, paths[expected], files[i].Path)
		}

		if files[i].Size == 0 {
			t.Errorf("Expected %s to have a size", files[i].Path)
		}
	}

	var buf bytes.Buffer

	if err := WriteSessionList(&buf, files, recorded[1].Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 3 || !strings.HasSuffix(lines[0], "2 hours ago") {
		t.Errorf("Unexpected session list:\n%s", buf.String())
	}
}

func TestFindSessionsMissingDirectory(t *testing.T) {
	files, err := FindSessions(filepath.Join(t.TempDir(), "missing"))

	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 0 {
		t.Errorf("Expected no sessions, got %v", files)
	}

	var buf bytes.Buffer

	if err := WriteSessionList(&buf, files, time.Now()); err != nil {
		t.Fatal(err)
	}

	if buf.String() != "No sessions found\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}
}
