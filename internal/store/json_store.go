package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"

	producterrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/go-playground/validator/v10"
)

var _ ProductStore = (*JSONStore)(nil)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

var errIDsExhausted = errors.New("document already holds the largest possible id")

// document is the on-disk shape of the product collection.
type document struct {
	Products []Product `json:"products"`
}

// JSONStore keeps the whole product collection in a single JSON document.
// Every operation re-reads the document; every mutation rewrites it.
// Mutations through one JSONStore are serialised, separate processes sharing the file are last write wins.
type JSONStore struct {
	path     string
	mu       sync.RWMutex
	validate *validator.Validate
}

// NewJSONStore creates a store backed by the document at path. Call Initialize before use.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path:     path,
		validate: newValidator(),
	}
}

// Path returns the location of the backing document.
func (s *JSONStore) Path() string {
	return s.path
}

// Initialize creates the document directory and, when the document is missing,
// seeds it with example products. It reports whether the document was created.
// An existing document is read once to make sure it parses.
func (s *JSONStore) Initialize(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return false, storageErr("create data directory", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		_, err = s.read()
		return false, err
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, storageErr("access document", err)
	}
	if err := s.write(document{Products: seedProducts()}); err != nil {
		return false, err
	}
	return true, nil
}

// FindByID returns the product with the given id or ErrProductNotFound.
func (s *JSONStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	i := indexOf(doc.Products, id)
	if i < 0 {
		return nil, producterrors.ErrProductNotFound
	}
	p := doc.Products[i]
	return &p, nil
}

// FindAll returns every product in stored order.
func (s *JSONStore) FindAll(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

// Create validates the input, assigns max(id)+1 (1 for an empty collection) and appends the product.
func (s *JSONStore) Create(ctx context.Context, input ProductInput) (*Product, error) {
	input = normalize(input)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	id, err := nextID(doc.Products)
	if err != nil {
		return nil, err
	}
	p := fromInput(id, input)
	doc.Products = append(doc.Products, p)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update validates the input and replaces all fields of the product except its id.
func (s *JSONStore) Update(ctx context.Context, id int64, input ProductInput) (*Product, error) {
	input = normalize(input)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	i := indexOf(doc.Products, id)
	if i < 0 {
		return nil, producterrors.ErrProductNotFound
	}
	doc.Products[i] = fromInput(id, input)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	p := doc.Products[i]
	return &p, nil
}

// DeleteByID removes the product with the given id.
func (s *JSONStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := s.read()
	if err != nil {
		return err
	}
	i := indexOf(doc.Products, id)
	if i < 0 {
		return producterrors.ErrProductNotFound
	}
	doc.Products = slices.Delete(doc.Products, i, i+1)
	return s.write(doc)
}

// read loads the document. Callers hold s.mu.
func (s *JSONStore) read() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return document{}, storageErr("read document", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, storageErr("decode document", err)
	}
	if doc.Products == nil {
		doc.Products = []Product{}
	}
	return doc, nil
}

// write replaces the document through a temporary file in the same directory,
// so readers never observe a partially written file. Callers hold s.mu.
func (s *JSONStore) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return storageErr("encode document", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return storageErr("create temporary file", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return storageErr("write temporary file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return storageErr("sync temporary file", err)
	}
	if err := tmp.Close(); err != nil {
		return storageErr("close temporary file", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return storageErr("chmod temporary file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return storageErr("replace document", err)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", producterrors.ErrStorage, op, err)
}

func indexOf(products []Product, id int64) int {
	return slices.IndexFunc(products, func(p Product) bool {
		return p.ID == id
	})
}

// nextID returns max(id)+1, or 1 for an empty collection.
func nextID(products []Product) (int64, error) {
	var maxID int64
	for _, p := range products {
		maxID = max(maxID, p.ID)
	}
	if maxID == math.MaxInt64 {
		return 0, storageErr("assign id", errIDsExhausted)
	}
	return maxID + 1, nil
}

func fromInput(id int64, input ProductInput) Product {
	return Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price.InexactFloat64(),
		Category:    input.Category,
	}
}
