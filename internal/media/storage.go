package media

import (
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrMalformedPayload = errors.New("malformed payload")

// BlobInfo describes a durably written blob, ready to be attached to an entry.
type BlobInfo struct {
	Filename         string
	OriginalFilename string
	Path             string
	Size             int64
}

// Storage is the blob store behind media metadata. The filesystem layout is an
// implementation detail of DiskStorage; callers only hold opaque paths.
type Storage interface {
	SaveRaw(data []byte, originalFilename string, cat Category) (BlobInfo, error)
	SaveDrawing(base64Payload string) (BlobInfo, error)
	Open(path string) (io.ReadCloser, error)
	Remove(path string) error
	Root() string
}

type DiskStorage struct {
	root string
}

func categoryDir(cat Category) string {
	switch cat {
	case CategoryAudio:
		return "audio"
	case CategoryDrawing:
		return "drawings"
	default:
		return "images"
	}
}

func NewDiskStorage(root string) (*DiskStorage, error) {
	for _, cat := range []Category{CategoryAudio, CategoryDrawing, CategoryImage} {
		if err := os.MkdirAll(filepath.Join(root, categoryDir(cat)), 0o755); err != nil {
			return nil, err
		}
	}
	return &DiskStorage{root: root}, nil
}

func (s *DiskStorage) Root() string { return s.root }

// SaveRaw writes bytes under a fresh random filename that keeps the original
// extension. The metadata row is only created after this returns.
func (s *DiskStorage) SaveRaw(data []byte, originalFilename string, cat Category) (BlobInfo, error) {
	filename := uuid.NewString() + filepath.Ext(originalFilename)
	path := filepath.Join(s.root, categoryDir(cat), filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return BlobInfo{}, err
	}

	return BlobInfo{
		Filename:         filename,
		OriginalFilename: originalFilename,
		Path:             path,
		Size:             int64(len(data)),
	}, nil
}

// SaveDrawing decodes a base64 PNG, stripping an optional data-URI prefix
// ("data:image/png;base64,....") first.
func (s *DiskStorage) SaveDrawing(base64Payload string) (BlobInfo, error) {
	if i := strings.Index(base64Payload, ","); i >= 0 {
		base64Payload = base64Payload[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(base64Payload)
	if err != nil {
		return BlobInfo{}, ErrMalformedPayload
	}

	filename := uuid.NewString() + ".png"
	path := filepath.Join(s.root, categoryDir(CategoryDrawing), filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return BlobInfo{}, err
	}

	return BlobInfo{
		Filename:         filename,
		OriginalFilename: "drawing_" + time.Now().Format("20060102_150405") + ".png",
		Path:             path,
		Size:             int64(len(data)),
	}, nil
}

func (s *DiskStorage) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Remove treats an already-missing blob as success.
func (s *DiskStorage) Remove(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
