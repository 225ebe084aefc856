package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/dimchansky/utfbom"
)

const (
	filePrefix     = "iRTL"
	fileExtension  = ".json"
	filenameLayout = "01-02-2006_15-04-05"

	maxFilenameSuffix = 1000
)

var ErrNoFreeFilename = errors.New("session: no free filename")

// FilePattern matches every session file in a directory.
const FilePattern = filePrefix + "_*" + fileExtension

// Filename is the name a session recorded at t is saved under,
// e.g. iRTL_02-09-2023_21-10-28.json.
func Filename(t time.Time) string {
	return filePrefix + "_" + t.Format(filenameLayout) + fileExtension
}

// RecordedAt parses the recording time back out of a session filename,
// ignoring any suffix added by Create.
func RecordedAt(filename string) (time.Time, error) {
	base := filepath.Base(filename)

	if len(base) < len(filePrefix)+1+len(fileExtension) {
		return time.Time{}, &time.ParseError{Layout: filenameLayout, Value: base}
	}

	stamp := base[len(filePrefix)+1 : len(base)-len(fileExtension)]

	if len(stamp) > len(filenameLayout) && stamp[len(filenameLayout)] == '_' {
		stamp = stamp[:len(filenameLayout)]
	}

	return time.ParseInLocation(filenameLayout, stamp, time.Local)
}

func encode(s *Session) ([]byte, error) {
	b, err := json.Marshal(s)

	if err != nil {
		return nil, err
	}

	return append(b, '\n'), nil
}

// Save writes the session to path, replacing any existing file. Nothing is
// written if the session cannot be encoded.
func Save(path string, s *Session) error {
	b, err := encode(s)

	if err != nil {
		return err
	}

	return ioutil.WriteFile(path, b, 0644)
}

// Create writes the session to a new file in dir named for t, never replacing
// an existing file. If the name is taken a numeric suffix is added, e.g.
// iRTL_02-09-2023_21-10-28_2.json. It returns the path written.
func Create(dir string, t time.Time, s *Session) (string, error) {
	b, err := encode(s)

	if err != nil {
		return "", err
	}

	name := filePrefix + "_" + t.Format(filenameLayout)

	for n := 1; n <= maxFilenameSuffix; n++ {
		path := filepath.Join(dir, name+fileExtension)

		if n > 1 {
			path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, n, fileExtension))
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)

		if errors.Is(err, os.ErrExist) {
			continue
		} else if err != nil {
			return "", err
		}

		_, err = f.Write(b)

		if closeErr := f.Close(); err == nil {
			err = closeErr
		}

		if err != nil {
			_ = os.Remove(path)
			return "", err
		}

		return path, nil
	}

	return "", fmt.Errorf("%w: %s in %s", ErrNoFreeFilename, name, dir)
}

func Read(r io.Reader) (*Session, error) {
	var s Session

	if err := json.NewDecoder(utfbom.SkipOnly(r)).Decode(&s); err != nil {
		return nil, err
	}

	return &s, nil
}

func Load(path string) (*Session, error) {
	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	return Read(f)
}
