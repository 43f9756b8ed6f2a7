package util

import (
	"golang.org/x/sys/unix"
)

// GetFileInfo retrieves detailed file information, including inode number.
func GetFileInfo(filepath string) (*FileInfo, error) {
	var stat unix.Stat_t
	if err := unix.Stat(filepath, &stat); err != nil {
		return nil, err
	}

	return &FileInfo{
		ModTime: int64(stat.Mtimespec.Sec),
		Size:    stat.Size,
		Inode:   stat.Ino,
	}, nil
}
