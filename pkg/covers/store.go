package covers

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/errcodes"
)

// ErrUnsupportedType is returned by Store when the upload is not an accepted
// image type. Nothing is written in that case.
var ErrUnsupportedType = errors.New("unsupported cover image type")

// AcceptedTypes are the MIME types Store accepts for uploaded covers.
var AcceptedTypes = []string{"image/jpeg", "image/png", "image/gif"}

// Store keeps cover image blobs as flat files in a single directory. Each blob
// is addressed by a generated name that is recorded on the book.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// Init creates the cover directory and verifies it is writable.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create cover directory: %s", s.dir)
	}

	testFile := filepath.Join(s.dir, ".write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return errors.Wrapf(err, "cover directory is not writable: %s", s.dir)
	}
	f.Close()

	if err := os.Remove(testFile); err != nil {
		return errors.Wrapf(err, "failed to clean up write test file: %s", testFile)
	}

	return nil
}

// IsAcceptedType reports whether Store would accept a blob of the given MIME
// type. Parameters such as charset are ignored.
func IsAcceptedType(mimeType string) bool {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	for _, t := range AcceptedTypes {
		if strings.EqualFold(base, t) {
			return true
		}
	}
	return false
}

// Store writes the blob read from r under a new unique name and returns that
// name.
func (s *Store) Store(ctx context.Context, r io.Reader, mimeType string) (string, error) {
	if !IsAcceptedType(mimeType) {
		return "", errors.WithStack(ErrUnsupportedType)
	}
	return s.write(ctx, r, mimeType)
}

// Delete removes the named blob. A blob that is already gone is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	logger.FromContext(ctx).Err(err).Warn("cover delete failed", logger.Data{"name": name})
	return errcodes.StorageIOError("remove cover image")
}

// Path returns the location of the named blob on disk. Names that would
// escape the cover directory are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", errcodes.NotFound("Cover")
	}
	return filepath.Join(s.dir, name), nil
}

func (s *Store) write(ctx context.Context, r io.Reader, mimeType string) (string, error) {
	log := logger.FromContext(ctx)
	name := uuid.New().String() + extensionFor(mimeType)
	destPath := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		log.Err(err).Error("cover temp file create failed")
		return "", errcodes.StorageIOError("store cover image")
	}
	tmpPath := tmp.Name()

	_, err = io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		log.Err(err).Error("cover write failed", logger.Data{"name": name})
		return "", errcodes.StorageIOError("store cover image")
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		log.Err(err).Error("cover rename failed", logger.Data{"name": name})
		return "", errcodes.StorageIOError("store cover image")
	}

	log.Debug("cover stored", logger.Data{"name": name, "type": mimeType})
	return name, nil
}

func extensionFor(mimeType string) string {
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	if m := mimetype.Lookup(strings.ToLower(base)); m != nil {
		return m.Extension()
	}
	return ""
}
