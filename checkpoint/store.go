package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/rickchristie/hpolog"
)

const (
	pointerExt = ".pointer"
	gcsScheme  = "gs://"

	// maxPointerDepth bounds chains of pointer files.
	maxPointerDepth = 8
)

var (
	// ErrPointerLoop is returned when a pointer file refers to itself or a
	// chain of pointers is too deep.
	ErrPointerLoop = errors.New("checkpoint: pointer loop")

	// ErrNoGCSClient is returned for gs:// locations when the Store has no
	// storage client.
	ErrNoGCSClient = errors.New("checkpoint: no GCS client configured")

	// ErrInvalidGCSURL is returned for malformed gs:// locations.
	ErrInvalidGCSURL = errors.New("checkpoint: invalid gs:// URL")

	// ErrNotFound is returned by Load when the checkpoint, or a pointer on
	// the way to it, does not exist. Other read failures do not match it.
	ErrNotFound = errors.New("checkpoint: not found")
)

// Store loads and saves snapshots by location. See the package documentation
// for the supported locations.
type Store struct {
	gcs    *storage.Client
	logger *zap.Logger
}

// NewStore creates a Store for local and pointer locations.
func NewStore() *Store {
	return &Store{logger: zap.NewNop()}
}

// WithGCSClient enables gs:// locations.
func (s *Store) WithGCSClient(client *storage.Client) *Store {
	s.gcs = client
	return s
}

// WithLogger sets the logger used to trace loads and saves.
func (s *Store) WithLogger(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
	return s
}

// Load reads the snapshot at location, following pointer files.
func (s *Store) Load(ctx context.Context, location string) (hpolog.Snapshot, error) {
	target, err := s.Resolve(location)
	if err != nil {
		return hpolog.Snapshot{}, err
	}

	f, err := FormatFromPath(target)
	if err != nil {
		return hpolog.Snapshot{}, err
	}

	s.logger.Debug("loading checkpoint", zap.String("location", target))
	data, err := s.read(ctx, target)
	if err != nil {
		return hpolog.Snapshot{}, err
	}

	snap, err := Decode(data, f)
	if err != nil {
		return hpolog.Snapshot{}, fmt.Errorf("%s: %w", target, err)
	}
	return snap, nil
}

// Save writes snap to location. Pointer locations are resolved and the
// snapshot is written to their target.
func (s *Store) Save(ctx context.Context, location string, snap hpolog.Snapshot) error {
	target := location
	if strings.HasSuffix(location, pointerExt) {
		resolved, err := s.Resolve(location)
		if err != nil {
			return err
		}
		target = resolved
	}

	f, err := FormatFromPath(target)
	if err != nil {
		return err
	}
	data, err := Encode(snap, f)
	if err != nil {
		return err
	}

	s.logger.Debug("saving checkpoint",
		zap.String("location", target),
		zap.Int("counter", snap.Counter),
	)
	return s.write(ctx, target, data)
}

// WritePointer creates a pointer file at pointerPath that refers to target.
func (s *Store) WritePointer(pointerPath, target string) error {
	if !strings.HasSuffix(pointerPath, pointerExt) {
		return fmt.Errorf("pointer file must end in %s: %s", pointerExt, pointerPath)
	}
	if pointerPath == target {
		return fmt.Errorf("%w: %s", ErrPointerLoop, pointerPath)
	}
	return writeFileAtomic(pointerPath, []byte(target+"\n"))
}

// Resolve follows pointer files until it reaches a non-pointer location.
func (s *Store) Resolve(location string) (string, error) {
	current := location
	for depth := 0; strings.HasSuffix(current, pointerExt); depth++ {
		if depth == maxPointerDepth {
			return "", fmt.Errorf("%w: more than %d pointers from %s",
				ErrPointerLoop, maxPointerDepth, location)
		}
		content, err := os.ReadFile(current)
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: pointer %s: %w", ErrNotFound, current, err)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read pointer %s: %w", current, err)
		}
		next := strings.TrimSpace(string(content))
		if next == current {
			return "", fmt.Errorf("%w: %s points to itself", ErrPointerLoop, current)
		}
		s.logger.Debug("following pointer",
			zap.String("pointer", current),
			zap.String("target", next),
		)
		current = next
	}
	return current, nil
}

func (s *Store) read(ctx context.Context, location string) ([]byte, error) {
	if !strings.HasPrefix(location, gcsScheme) {
		data, err := os.ReadFile(location)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read checkpoint: %w", err)
		}
		return data, nil
	}
	bucket, object, err := ParseGCSURL(location)
	if err != nil {
		return nil, err
	}
	if s.gcs == nil {
		return nil, ErrNoGCSClient
	}
	return readGCS(ctx, s.gcs, bucket, object)
}

func (s *Store) write(ctx context.Context, location string, data []byte) error {
	if !strings.HasPrefix(location, gcsScheme) {
		return writeFileAtomic(location, data)
	}
	bucket, object, err := ParseGCSURL(location)
	if err != nil {
		return err
	}
	if s.gcs == nil {
		return ErrNoGCSClient
	}
	return writeGCS(ctx, s.gcs, bucket, object, data)
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never see a partial checkpoint.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}
