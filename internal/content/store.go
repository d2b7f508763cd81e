// ABOUTME: Content store: raw catalog bytes from the embedded defaults or a directory.
// ABOUTME: Missing files surface as ErrNotFound so the loader can degrade quietly.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/harperreed/fitplan/internal/models"
)

//go:embed data
var embedded embed.FS

// ErrNotFound is returned when a catalog file does not exist.
var ErrNotFound = errors.New("content not found")

// WorkoutCatalogPath is the workout catalog's path inside a content root.
const WorkoutCatalogPath = "workouts.json"

// Store reads raw catalog documents.
type Store interface {
	ReadMealCatalog(diet models.Diet) ([]byte, error)
	ReadWorkoutCatalog() ([]byte, error)
}

// FSStore reads catalogs laid out as meals/<diet>.json and workouts.json.
type FSStore struct {
	fsys fs.FS
	name string
}

// Compile-time check that FSStore implements Store.
var _ Store = (*FSStore)(nil)

// NewFSStore wraps an arbitrary filesystem. name is used in log messages.
func NewFSStore(fsys fs.FS, name string) *FSStore {
	return &FSStore{fsys: fsys, name: name}
}

// Embedded returns a store over the catalogs compiled into the binary.
func Embedded() *FSStore {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return NewFSStore(sub, "embedded")
}

// Dir returns a store over a live-editable directory.
func Dir(root string) *FSStore {
	return NewFSStore(os.DirFS(root), root)
}

// MealCatalogPath returns the path of a diet's meal catalog inside a content root.
func MealCatalogPath(diet models.Diet) string {
	return path.Join("meals", string(diet)+".json")
}

// ReadMealCatalog returns the raw meal catalog for diet.
func (s *FSStore) ReadMealCatalog(diet models.Diet) ([]byte, error) {
	return s.read(MealCatalogPath(diet))
}

// ReadWorkoutCatalog returns the raw workout catalog.
func (s *FSStore) ReadWorkoutCatalog() ([]byte, error) {
	return s.read(WorkoutCatalogPath)
}

func (s *FSStore) String() string {
	return s.name
}

func (s *FSStore) read(name string) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
