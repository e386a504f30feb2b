package mediapack

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Entry is one file inside a media pack. RelativePath is slash-separated
// and includes every directory segment the pack carries, which is what the
// archive-root discovery walks.
type Entry struct {
	RelativePath string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// ZipEntries lists the files of an opened media-pack archive. The archive
// must stay open until every returned Open stream has been consumed.
func ZipEntries(archive *zip.Reader) []Entry {
	var entries []Entry
	for _, file := range archive.File {
		if file.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, Entry{
			RelativePath: path.Clean(file.Name),
			Size:         int64(file.UncompressedSize64),
			Open:         func() (io.ReadCloser, error) { return file.Open() },
		})
	}
	return entries
}

// DirEntries lists the files of an already-extracted media pack. The root
// directory's own name is prepended to every relative path so that pointing
// directly at an extracted "Visual Pinball" directory still passes
// archive-root discovery.
func DirEntries(root string) ([]Entry, error) {
	base := filepath.Base(root)
	var entries []Entry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			RelativePath: path.Join(base, filepath.ToSlash(rel)),
			Size:         info.Size(),
			Open:         func() (io.ReadCloser, error) { return os.Open(p) },
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return entries, nil
}
