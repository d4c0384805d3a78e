package thumb

import (
	"errors"
	"testing"
)

func TestDataURLMissingFile(t *testing.T) {
	_, err := DataURL("/definitely/not/here.mp4")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("DataURL(missing) = %v, want ErrFileNotFound", err)
	}
}

func TestDataURLRejectsDirectories(t *testing.T) {
	_, err := DataURL(t.TempDir())
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("DataURL(directory) = %v, want ErrFileNotFound", err)
	}
}

func TestStatFileSwap(t *testing.T) {
	orig := statFile
	defer func() { statFile = orig }()

	called := ""
	statFile = func(path string) bool {
		called = path
		return false
	}

	_, err := DataURL("/some/video.mp4")
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("DataURL = %v, want ErrFileNotFound", err)
	}
	if called != "/some/video.mp4" {
		t.Errorf("statFile called with %q", called)
	}
}
