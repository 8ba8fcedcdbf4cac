package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const metaDir = ".meta"

// FilesystemStorage implements Store on a local directory.
// Objects live at baseDir/bucket/key with metadata in baseDir/.meta/bucket/key.json
type FilesystemStorage struct {
	baseDir string
}

type fileMeta struct {
	ContentType string            `json:"content_type,omitempty"`
	Custom      map[string]string `json:"custom,omitempty"`
}

// NewFilesystemStorage creates a new filesystem storage backend
func NewFilesystemStorage(baseDir string) (*FilesystemStorage, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	// Ensure base directory exists
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FilesystemStorage{
		baseDir: abs,
	}, nil
}

// resolve joins parts under baseDir and rejects traversal
func (fs *FilesystemStorage) resolve(parts ...string) (string, error) {
	path := filepath.Clean(filepath.Join(append([]string{fs.baseDir}, parts...)...))
	if !strings.HasPrefix(path, fs.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key: path traversal detected")
	}
	return path, nil
}

func (fs *FilesystemStorage) objectPath(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == metaDir {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	return fs.resolve(bucket, key)
}

func (fs *FilesystemStorage) metaPath(bucket, key string) (string, error) {
	return fs.resolve(metaDir, bucket, key+".json")
}

// GetReader returns a reader for the file at bucket/key
func (fs *FilesystemStorage) GetReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	path, err := fs.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Exists checks if a file exists at bucket/key
func (fs *FilesystemStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	path, err := fs.objectPath(bucket, key)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}

	return !info.IsDir(), nil
}

// GetMetadata returns metadata for the file at bucket/key
func (fs *FilesystemStorage) GetMetadata(ctx context.Context, bucket, key string) (*Metadata, error) {
	path, err := fs.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	md := &Metadata{
		Size:   info.Size(),
		Custom: map[string]string{},
	}

	// Objects dropped into the directory by hand have no sidecar
	mp, err := fs.metaPath(bucket, key)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(mp)
	switch {
	case err == nil:
		var fm fileMeta
		if err := json.Unmarshal(raw, &fm); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
		md.ContentType = fm.ContentType
		for k, v := range fm.Custom {
			md.Custom[strings.ToLower(k)] = v
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	return md, nil
}

// Put writes the object atomically and then its metadata sidecar
func (fs *FilesystemStorage) Put(ctx context.Context, bucket, key string, r io.Reader, meta Metadata) error {
	path, err := fs.objectPath(bucket, key)
	if err != nil {
		return err
	}
	mp, err := fs.metaPath(bucket, key)
	if err != nil {
		return err
	}

	if err := writeAtomic(path, r); err != nil {
		return err
	}

	raw, err := json.Marshal(fileMeta{ContentType: meta.ContentType, Custom: meta.Custom})
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return writeAtomic(mp, strings.NewReader(string(raw)))
}

// URI returns a file:// location for bucket/key
func (fs *FilesystemStorage) URI(bucket, key string) string {
	return "file://" + filepath.ToSlash(filepath.Join(fs.baseDir, bucket, key))
}

func writeAtomic(path string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
