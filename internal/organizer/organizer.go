// Package organizer sorts a directory tree of files into category and
// date folders. Classification is a deterministic two-step rule list:
// sniff the file content first, fall back to the extension, and land on
// Other when neither matches.
package organizer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Category is the closed set of buckets a file can land in.
type Category string

const (
	CategoryDocuments   Category = "Documents"
	CategoryImages      Category = "Images"
	CategoryArchives    Category = "Archives"
	CategoryAudio       Category = "Audio"
	CategoryVideo       Category = "Video"
	CategoryCode        Category = "Code"
	CategoryExecutables Category = "Executables"
	CategoryOther       Category = "Other"
)

// Categories lists every bucket, Other last.
var Categories = []Category{
	CategoryDocuments,
	CategoryImages,
	CategoryArchives,
	CategoryAudio,
	CategoryVideo,
	CategoryCode,
	CategoryExecutables,
	CategoryOther,
}

var extensionTable = map[string]Category{
	"pdf": CategoryDocuments, "docx": CategoryDocuments, "doc": CategoryDocuments,
	"txt": CategoryDocuments, "rtf": CategoryDocuments, "odt": CategoryDocuments,
	"xlsx": CategoryDocuments, "pptx": CategoryDocuments,

	"jpg": CategoryImages, "jpeg": CategoryImages, "png": CategoryImages,
	"gif": CategoryImages, "bmp": CategoryImages, "svg": CategoryImages,
	"webp": CategoryImages,

	"zip": CategoryArchives, "rar": CategoryArchives, "7z": CategoryArchives,
	"tar": CategoryArchives, "gz": CategoryArchives,

	"mp3": CategoryAudio, "wav": CategoryAudio, "ogg": CategoryAudio,
	"flac": CategoryAudio,

	"mp4": CategoryVideo, "mov": CategoryVideo, "avi": CategoryVideo,
	"mkv": CategoryVideo, "flv": CategoryVideo,

	"py": CategoryCode, "js": CategoryCode, "html": CategoryCode,
	"css": CategoryCode, "json": CategoryCode, "xml": CategoryCode,
	"sql": CategoryCode, "go": CategoryCode,

	"exe": CategoryExecutables, "msi": CategoryExecutables, "dmg": CategoryExecutables,
	"pkg": CategoryExecutables, "deb": CategoryExecutables,
}

// mimeTable maps a sniffed MIME major type onto a category.
var mimeTable = map[string]Category{
	"application": CategoryDocuments,
	"text":        CategoryDocuments,
	"image":       CategoryImages,
	"audio":       CategoryAudio,
	"video":       CategoryVideo,
}

// Organizer moves files from a source tree into categorised folders
// under a target directory.
type Organizer struct {
	sourceDir string
	targetDir string
	logger    *slog.Logger
}

// New validates the directories: the source must exist, the target is
// created if missing.
func New(sourceDir, targetDir string, logger *slog.Logger) (*Organizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("source directory %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", sourceDir)
	}
	if _, err := os.Stat(targetDir); errors.Is(err, fs.ErrNotExist) {
		logger.Info("creating target directory", "dir", targetDir)
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return nil, fmt.Errorf("create target directory: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("target directory %s: %w", targetDir, err)
	}
	return &Organizer{sourceDir: sourceDir, targetDir: targetDir, logger: logger}, nil
}

// Organize walks the source tree and moves every regular file into
// <target>/<Category>/<YYYY-MM-DD>/. It returns per-category counts.
// Per-file move errors are logged and skipped, not fatal.
func (o *Organizer) Organize() (map[Category]int, error) {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}

	var files []string
	err := filepath.WalkDir(o.sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source directory: %w", err)
	}

	for _, path := range files {
		category := o.Classify(path)
		counts[category]++
		if err := o.moveFile(path, category); err != nil {
			o.logger.Error("move failed", "file", path, "error", err)
		}
	}

	o.logger.Info("organization complete", "files", len(files))
	return counts, nil
}

// Classify applies the ordered rules: content sniff, extension, Other.
func (o *Organizer) Classify(path string) Category {
	if c, ok := o.sniff(path); ok {
		return c
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if c, ok := extensionTable[ext]; ok {
		return c
	}
	return CategoryOther
}

// sniff reads the file head and matches magic numbers. Unknown content
// and read errors defer to the extension rule.
func (o *Organizer) sniff(path string) (Category, bool) {
	fh, err := os.Open(path)
	if err != nil {
		o.logger.Error("cannot read file for sniffing", "file", path, "error", err)
		return CategoryOther, false
	}
	defer fh.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(fh, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return CategoryOther, false
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return CategoryOther, false
	}
	major := strings.SplitN(kind.MIME.Value, "/", 2)[0]
	if c, ok := mimeTable[major]; ok {
		return c, true
	}
	return CategoryOther, true
}

func (o *Organizer) moveFile(path string, category Category) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	dateFolder := info.ModTime().Format("2006-01-02")

	destDir := filepath.Join(o.targetDir, string(category), dateFolder)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	dest := filepath.Join(destDir, filepath.Base(path))
	dest = dedupePath(dest)

	if err := movePath(path, dest); err != nil {
		return err
	}
	o.logger.Info("moved file", "from", path, "to", dest)
	return nil
}

// dedupePath appends _1, _2, ... before the extension until the name is
// free.
func dedupePath(dest string) string {
	candidate := dest
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
}

// movePath renames, falling back to copy-and-delete across filesystems.
func movePath(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return os.Remove(src)
}
