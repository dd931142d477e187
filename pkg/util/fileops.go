package util

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile copies a single file from src to dst
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	// Copy file permissions
	sourceInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, sourceInfo.Mode())
}

// MakeWritable clears the read-only state of path and everything below it.
// Directories also get owner read/execute so the walk can descend into them.
// On Windows, os.Chmod maps the owner write bit onto FILE_ATTRIBUTE_READONLY.
func MakeWritable(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Chmod follows links; never touch the target of a link.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		mode := info.Mode().Perm() | 0200
		if d.IsDir() {
			mode |= 0700
		}
		if mode == info.Mode().Perm() {
			return nil
		}
		return os.Chmod(p, mode)
	})
}

// RemoveTree makes the tree rooted at path writable and then deletes it.
// Unlike os.RemoveAll, a missing path is reported as an error.
func RemoveTree(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return err
	}
	if err := MakeWritable(path); err != nil {
		return err
	}
	return os.RemoveAll(path)
}
