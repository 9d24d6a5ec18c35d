package submission

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/assignpack/pkg/errors"
)

const (
	removeRetries = 25
	removeDelay   = 80 * time.Millisecond
)

// binaryExtensions are never copied into the submission folder.
var binaryExtensions = []string{"exe", "com", "dll", "so", "dylib", "out", "bin", "msi"}

// CheckExtension verifies that path is an existing regular file whose
// extension (case-insensitive, without the dot) is one of allowed.
func CheckExtension(path string, allowed []string, label string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s not found: '%s'", label, path)
	}
	if !info.Mode().IsRegular() {
		return errors.New(errors.ErrCodeInvalidInput, "%s is not a file: '%s'", label, path)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" || !slices.Contains(allowed, ext) {
		expected := make([]string, len(allowed))
		for i, a := range allowed {
			expected[i] = "." + a
		}
		return errors.New(errors.ErrCodeInvalidInput, "%s must be %s, got '%s'",
			label, strings.Join(expected, "/"), path)
	}
	return nil
}

// PrepareOutput makes sure neither the submission folder nor its archive
// exists. With force, existing ones are removed; otherwise they are errors.
func PrepareOutput(dir, zipPath string, force bool) error {
	if exists(dir) {
		if !force {
			return errors.New(errors.ErrCodeInvalidInput, "already exists: '%s' (use --force)", dir)
		}
		if err := removeRetry(dir, os.RemoveAll); err != nil {
			return err
		}
	}
	if exists(zipPath) {
		if !force {
			return errors.New(errors.ErrCodeInvalidInput, "already exists: '%s' (use --force)", zipPath)
		}
		if err := removeRetry(zipPath, os.Remove); err != nil {
			return err
		}
	}
	return nil
}

// removeRetry keeps trying remove while files are held open by another
// process (editors and virus scanners on Windows).
func removeRetry(path string, remove func(string) error) error {
	var last error
	for i := range removeRetries {
		err := remove(path)
		if err == nil || !exists(path) {
			return nil
		}
		if !retryable(err) {
			return errors.IO(err, "removing '%s'", path)
		}
		last = err
		if i+1 < removeRetries {
			time.Sleep(removeDelay)
		}
	}
	return errors.IO(last, "timed out removing '%s'", path)
}

func retryable(err error) bool {
	return !os.IsNotExist(err) && !os.IsExist(err) && !isInvalid(err)
}

func isInvalid(err error) bool {
	pe, ok := err.(*fs.PathError)
	return ok && pe.Err == fs.ErrInvalid
}

// CopyNonBinaryFiles copies the regular files directly inside src into dst,
// skipping binaries. Subdirectories are not descended into.
func CopyNonBinaryFiles(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.IO(err, "reading %s", src)
	}

	for _, entry := range entries {
		path := filepath.Join(src, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || isBinary(entry.Name(), info.Mode()) {
			continue
		}
		dest := filepath.Join(dst, entry.Name())
		if PathsEqual(path, dest) {
			continue
		}
		if err := CopyFile(path, dest); err != nil {
			return err
		}
	}
	return nil
}

// isBinary matches known binary extensions; files without an extension count
// as binary when any execute bit is set.
func isBinary(name string, mode fs.FileMode) bool {
	if ext := filepath.Ext(name); ext != "" && ext != name {
		return slices.Contains(binaryExtensions, strings.ToLower(ext[1:]))
	}
	return mode.Perm()&0o111 != 0
}

// CopyFile copies src to dst, replacing dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.IO(err, "copying '%s'", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.IO(err, "copying '%s'", src)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.IO(err, "copying '%s'", src)
	}
	if err := out.Close(); err != nil {
		return errors.IO(err, "copying '%s'", src)
	}
	return nil
}

// CreateZip archives everything under dir into zipPath with deflate
// compression. Entry names are relative to dir and use "/" separators;
// directories get their own entries.
func CreateZip(dir, zipPath string) (err error) {
	f, err := os.Create(zipPath)
	if err != nil {
		return errors.IO(err, "creating %s", zipPath)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.IO(cerr, "closing %s", zipPath)
		}
	}()

	zw := zip.NewWriter(f)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.IO(err, "walking directory")
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "relative path for '%s'", path)
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			if _, err := zw.CreateHeader(&zip.FileHeader{Name: name + "/", Method: zip.Deflate, Modified: time.Now()}); err != nil {
				return errors.IO(err, "zip add dir '%s'", name)
			}
			return nil
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()})
		if err != nil {
			return errors.IO(err, "zip add file '%s'", name)
		}
		src, err := os.Open(path)
		if err != nil {
			return errors.IO(err, "opening '%s'", path)
		}
		defer src.Close()
		if _, err := io.Copy(w, src); err != nil {
			return errors.IO(err, "writing '%s' to zip", name)
		}
		return nil
	})
	if walkErr != nil {
		zw.Close()
		return walkErr
	}
	if err := zw.Close(); err != nil {
		return errors.IO(err, "finalizing zip")
	}
	return nil
}

// ResolveSource returns provided when set, otherwise the only .c file in dir.
func ResolveSource(provided, dir string) (string, error) {
	if provided != "" {
		return provided, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.IO(err, "reading %s", dir)
	}
	var found []string
	for _, e := range entries {
		if !strings.EqualFold(filepath.Ext(e.Name()), ".c") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			found = append(found, e.Name())
		}
	}
	slices.Sort(found)

	switch len(found) {
	case 0:
		return "", errors.New(errors.ErrCodeInvalidInput, "no .c files found in current directory")
	case 1:
		return filepath.Join(dir, found[0]), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput,
			"multiple .c files found: %s, specify --c-file", strings.Join(found, ", "))
	}
}

// ResolveDoc returns provided when set, otherwise dir/expected if it exists.
func ResolveDoc(provided, dir, expected string) (string, error) {
	if provided != "" {
		return provided, nil
	}
	path := filepath.Join(dir, expected)
	if !exists(path) {
		return "", errors.New(errors.ErrCodeInvalidInput, "expected doc not found: '%s'", path)
	}
	return path, nil
}

// ReadTextLossy reads path as UTF-8, replacing invalid sequences with U+FFFD.
func ReadTextLossy(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.IO(err, "reading %s", path)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}

// FileName returns the last element of path.
func FileName(path string) (string, error) {
	base := filepath.Base(path)
	switch base {
	case ".", "..", string(filepath.Separator):
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid filename: '%s'", path)
	}
	return base, nil
}

// PathsEqual reports whether a and b both exist and are the same file.
func PathsEqual(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

// SameDir reports whether path's parent directory is dir.
func SameDir(path, dir string) bool {
	return PathsEqual(filepath.Dir(path), dir)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
