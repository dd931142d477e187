package util

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/boyter/gocodewalker"
)

// ZipOptions controls which parts of a tree ZipDirectory leaves out.
type ZipOptions struct {
	// ExcludeDirectories holds exact directory names to skip.
	ExcludeDirectories []string
	// ExcludeFilenamePatterns holds filepath.Match patterns checked against base names.
	ExcludeFilenamePatterns []string
}

// ZipStats tracks statistics about the zipping operation
type ZipStats struct {
	FilesIncluded int
	FilesExcluded int
	BytesIncluded int64
}

// ZipDirectory archives every file and directory under srcDir into destZip,
// empty directories included. Paths inside the archive are relative to srcDir
// and always use forward slashes. Ignore files (.gitignore, .ignore) are not
// honoured, only the exclusions in opts.
func ZipDirectory(srcDir, destZip string, opts *ZipOptions) (*ZipStats, error) {
	if opts == nil {
		opts = &ZipOptions{}
	}

	stats := &ZipStats{}

	zipFile, err := os.Create(destZip)
	if err != nil {
		return nil, err
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)

	fileQueue := make(chan *gocodewalker.File, 256)
	walker := gocodewalker.NewFileWalker(srcDir, fileQueue)
	walker.IncludeHidden = true
	walker.IgnoreGitIgnore = true
	walker.IgnoreIgnoreFile = true
	walker.ExcludeDirectory = append(walker.ExcludeDirectory, opts.ExcludeDirectories...)

	errChan := make(chan error, 1)
	go func() {
		errChan <- walker.Start()
	}()

	dirsAdded := make(map[string]struct{})
	var writeErr error

	for f := range fileQueue {
		// Keep draining so the walker goroutine can finish.
		if writeErr != nil {
			continue
		}

		if matchesAny(opts.ExcludeFilenamePatterns, filepath.Base(f.Location)) {
			stats.FilesExcluded++
			continue
		}

		relPath, err := filepath.Rel(srcDir, f.Location)
		if err != nil {
			writeErr = err
			continue
		}
		relPath = filepath.ToSlash(relPath)

		if err := addParentDirs(zipWriter, relPath, dirsAdded); err != nil {
			writeErr = err
			continue
		}

		written, err := addFile(zipWriter, f.Location, relPath)
		if err != nil {
			writeErr = err
			continue
		}
		stats.FilesIncluded++
		stats.BytesIncluded += written
	}

	if err := <-errChan; err != nil {
		return stats, fmt.Errorf("directory walk failed: %w", err)
	}
	if writeErr != nil {
		return stats, writeErr
	}
	if err := addEmptyDirs(zipWriter, srcDir, opts.ExcludeDirectories, dirsAdded); err != nil {
		return stats, err
	}
	if err := zipWriter.Close(); err != nil {
		return stats, err
	}
	return stats, nil
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// addParentDirs writes a directory entry for every ancestor of relPath not yet in the archive.
func addParentDirs(zw *zip.Writer, relPath string, added map[string]struct{}) error {
	return addDirs(zw, filepath.ToSlash(filepath.Dir(relPath)), added)
}

// addEmptyDirs adds the directories the file walk never reached because
// they hold no files.
func addEmptyDirs(zw *zip.Writer, srcDir string, exclude []string, added map[string]struct{}) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == srcDir {
			return nil
		}
		if slices.Contains(exclude, d.Name()) {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return addDirs(zw, filepath.ToSlash(rel), added)
	})
}

// addDirs writes entries for dir and each of its ancestors.
func addDirs(zw *zip.Writer, dir string, added map[string]struct{}) error {
	if dir == "." || dir == "" {
		return nil
	}

	var current string
	for _, segment := range strings.Split(dir, "/") {
		if current == "" {
			current = segment
		} else {
			current = current + "/" + segment
		}
		if _, exists := added[current+"/"]; exists {
			continue
		}
		if _, err := zw.Create(current + "/"); err != nil {
			return err
		}
		added[current+"/"] = struct{}{}
	}
	return nil
}

func addFile(zw *zip.Writer, location, relPath string) (int64, error) {
	info, err := os.Lstat(location)
	if err != nil {
		return 0, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		linkTarget, err := os.Readlink(location)
		if err != nil {
			return 0, err
		}
		hdr := &zip.FileHeader{
			Name:   relPath,
			Method: zip.Store,
		}
		hdr.SetMode(os.ModeSymlink | 0777)
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return 0, err
		}
		n, err := w.Write([]byte(linkTarget))
		return int64(n), err
	}

	w, err := zw.Create(relPath)
	if err != nil {
		return 0, err
	}
	file, err := os.Open(location)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return io.Copy(w, file)
}
