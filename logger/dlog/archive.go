package dlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

var now = time.Now

// archive moves a log file last written before today into a directory named
// after that day, next to the file. It returns the new path, empty when
// nothing was moved.
func archive(path string) (string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not stat log file: %w", err)
	}

	day := info.ModTime().Format("2006-01-02")
	if day == now().Format("2006-01-02") {
		return "", nil
	}

	base := filepath.Join(filepath.Dir(path), day)
	archiveDir := base
	counter := 1
	err = os.Mkdir(archiveDir, 0755)
	for os.IsExist(err) {
		archiveDir = base + "-" + strconv.Itoa(counter)
		counter++
		err = os.Mkdir(archiveDir, 0755)
	}
	if err != nil {
		return "", fmt.Errorf("could not create archive directory: %w", err)
	}

	target := filepath.Join(archiveDir, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("could not archive log file: %w", err)
	}
	return target, nil
}
