package helpers

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize is the largest accepted upload in bytes
const MaxImageSize = 5 << 20

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ErrInvalidImage is returned for uploads with a bad type or size
var ErrInvalidImage = errors.New("invalid image")

// ImageStore keeps uploaded food images in a directory served under /uploads
type ImageStore struct {
	Dir string
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{Dir: dir}
}

// Accept checks an upload's extension, size and sniffed content type and
// returns the random name it should be stored under. Writing the file is
// left to the caller.
func (s *ImageStore) Accept(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedImageExt[ext] {
		return "", errors.Wrapf(ErrInvalidImage, "extension %q not allowed", ext)
	}
	if fh.Size > MaxImageSize {
		return "", errors.Wrapf(ErrInvalidImage, "size %d exceeds %d bytes", fh.Size, MaxImageSize)
	}

	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", errors.Wrap(err, "detect upload type")
	}
	if !isImage(mt) {
		return "", errors.Wrapf(ErrInvalidImage, "content type %s not allowed", mt.String())
	}
	return uuid.NewString() + ext, nil
}

func isImage(mt *mimetype.MIME) bool {
	for _, t := range allowedImageTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

// Remove deletes a stored image. A missing file is not an error.
func (s *ImageStore) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove image %s", name)
	}
	return nil
}

// Path resolves a stored name inside the store directory
func (s *ImageStore) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}
