package linekeeper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/trviph/collection"
)

type fileInfo struct {
	filePath string
	modtime  time.Time
}

// Get the segment files matching pattern, oldest first.
func getArchives(pattern string) (*collection.List[*fileInfo], error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to get archives, caused by %w", err)
	}

	minHeap, err := collection.NewHeap(func(current, other *fileInfo) bool {
		if current.modtime.Equal(other.modtime) {
			return current.filePath < other.filePath
		}
		return current.modtime.Before(other.modtime)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get heap, caused by %w", err)
	}
	for _, match := range matches {
		info, err := getFileInfo(match)
		if err != nil {
			return nil, fmt.Errorf("failed to get file info %s, caused by %w", match, err)
		}
		if info == nil {
			continue
		}
		minHeap.Push(info)
	}

	l := collection.NewList[*fileInfo]()
	for !minHeap.IsEmpty() {
		min, err := minHeap.Pop()
		if err != nil {
			return nil, fmt.Errorf("failed to get file info, caused by %w", err)
		}
		l.Append(min)
	}
	return l, nil
}

// Get the file info of a regular file, directories yield nil.
func getFileInfo(filePath string) (*fileInfo, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed get file stat, caused by %w", err)
	}
	if stat.IsDir() {
		return nil, nil
	}
	return &fileInfo{
		filePath: filePath,
		modtime:  stat.ModTime(),
	}, nil
}
