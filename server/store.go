package server

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"sync"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fulldump/entitycache/collection"
	"github.com/fulldump/entitycache/utils"
)

type Item = map[string]any

type IDMode string

const (
	IDModeAuto IDMode = "auto"
	IDModeUUID IDMode = "uuid"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrConflict         = errors.New("item already exists")
	ErrBadRequest       = errors.New("bad request")
)

type Config struct {
	IDField    string
	IDMode     IDMode
	AutoCreate bool // create unknown resources on first access
}

func DefaultConfig() Config {
	return Config{
		IDField:    "id",
		IDMode:     IDModeAuto,
		AutoCreate: true,
	}
}

// Store holds the resources served by the API.
type Store struct {
	mu        sync.RWMutex
	config    Config
	resources map[string]*Resource
}

func NewStore(config Config) *Store {
	if config.IDField == "" {
		config.IDField = "id"
	}
	if config.IDMode == "" {
		config.IDMode = IDModeAuto
	}
	return &Store{
		config:    config,
		resources: map[string]*Resource{},
	}
}

// Resource returns the resource called name, creating it when the store is
// configured with AutoCreate.
func (s *Store) Resource(name string) (*Resource, error) {
	s.mu.RLock()
	r, exists := s.resources[name]
	s.mu.RUnlock()
	if exists {
		return r, nil
	}
	if !s.config.AutoCreate {
		return nil, fmt.Errorf("%w: '%s'", ErrResourceNotFound, name)
	}
	return s.CreateResource(name), nil
}

// CreateResource returns the resource called name, creating it if needed.
func (s *Store) CreateResource(name string) *Resource {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, exists := s.resources[name]; exists {
		return r
	}
	r := newResource(name, s.config.IDField, s.config.IDMode)
	s.resources[name] = r
	return r
}

func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return utils.GetKeys(s.resources)
}

// Load creates the given resources and inserts their items.
func (s *Store) Load(data map[string][]Item) error {
	for _, name := range utils.GetKeys(data) {
		r := s.CreateResource(name)
		for i, item := range data[name] {
			if _, err := r.Create(item); err != nil {
				return fmt.Errorf("seed %s[%d]: %w", name, i, err)
			}
		}
	}
	return nil
}

// LoadFile reads seed data from a YAML (or JSON) file mapping resource names
// to lists of items.
func (s *Store) LoadFile(filename string) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read seed: %w", err)
	}

	data := map[string][]Item{}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}

	return s.Load(data)
}

type Resource struct {
	mu      sync.RWMutex
	name    string
	idField string
	idMode  IDMode
	seq     int64
	rows    *collection.Collection[Item]
}

func newResource(name, idField string, idMode IDMode) *Resource {
	return &Resource{
		name:    name,
		idField: idField,
		idMode:  idMode,
		rows: collection.New(func(item Item) string {
			return collection.NormalizeID(item[idField])
		}),
	}
}

func (r *Resource) Name() string {
	return r.name
}

func (r *Resource) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rows.Len()
}

// List returns the items matching filter, in insertion order or in the order
// requested by filter.Sort.
func (r *Resource) List(filter Filter) ([]Item, error) {
	if filter.Sort != "" {
		r.mu.Lock()
		defer r.mu.Unlock()
		if err := r.ensureSortIndex(filter.Sort); err != nil {
			return nil, err
		}
	} else {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	result := []Item{}
	var err error
	visit := func(row *collection.Row[Item]) bool {
		var match bool
		match, err = filter.Matches(row.Value)
		if err != nil {
			return false
		}
		if match {
			result = append(result, maps.Clone(row.Value))
		}
		return true
	}

	if filter.Sort != "" {
		r.rows.Indexes[sortIndexName(filter.Sort)].Traverse(false, visit)
	} else {
		r.rows.Traverse(visit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	return result, nil
}

func sortIndexName(field string) string {
	return "sort:" + field
}

func (r *Resource) ensureSortIndex(field string) error {
	name := sortIndexName(field)
	if _, exists := r.rows.Indexes[name]; exists {
		return nil
	}
	return r.rows.AddIndex(name, field)
}

func (r *Resource) Get(id string) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.rows.Get(collection.NormalizeID(id))
	if !exists {
		return nil, fmt.Errorf("%w: '%s' in '%s'", ErrItemNotFound, id, r.name)
	}
	return maps.Clone(item), nil
}

// Create stores item. Items without id get one assigned according to the
// id mode. In auto mode a zero id counts as no id.
func (r *Resource) Create(item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item = maps.Clone(item)
	if item == nil {
		item = Item{}
	}

	key := collection.NormalizeID(item[r.idField])
	if key == "" || (key == "0" && r.idMode == IDModeAuto) {
		item[r.idField] = r.nextID()
	} else {
		if r.rows.Has(key) {
			return nil, fmt.Errorf("%w: '%s' in '%s'", ErrConflict, key, r.name)
		}
		r.observeID(key)
	}

	r.rows.Append(item)
	return maps.Clone(item), nil
}

// Replace stores item under id. The id in the path wins over the one in the
// body. It reports whether the item was created.
func (r *Resource) Replace(id string, item Item) (Item, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := collection.NormalizeID(id)
	if key == "" {
		return nil, false, fmt.Errorf("%w: id is required", ErrBadRequest)
	}

	item = maps.Clone(item)
	if item == nil {
		item = Item{}
	}

	existing, exists := r.rows.Get(key)
	if exists {
		item[r.idField] = existing[r.idField]
	} else {
		item[r.idField] = r.parseID(key)
		r.observeID(key)
	}

	r.rows.Upsert(key, item)
	return maps.Clone(item), !exists, nil
}

// Patch applies a JSON merge patch (RFC 7396) to the item stored under id.
// The id field cannot be patched.
func (r *Resource) Patch(id string, patch []byte) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := collection.NormalizeID(id)
	existing, exists := r.rows.Get(key)
	if !exists {
		return nil, fmt.Errorf("%w: '%s' in '%s'", ErrItemNotFound, id, r.name)
	}

	doc, err := json.Marshal(existing)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}

	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot apply patch: %w", ErrBadRequest, err)
	}

	item := Item{}
	if err := json.Unmarshal(merged, &item); err != nil || item == nil {
		return nil, fmt.Errorf("%w: patch must leave an object", ErrBadRequest)
	}
	item[r.idField] = existing[r.idField]

	r.rows.Upsert(key, item)
	return maps.Clone(item), nil
}

func (r *Resource) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, removed := r.rows.RemoveKey(collection.NormalizeID(id)); !removed {
		return fmt.Errorf("%w: '%s' in '%s'", ErrItemNotFound, id, r.name)
	}
	return nil
}

func (r *Resource) nextID() any {
	if r.idMode == IDModeUUID {
		return uuid.NewString()
	}
	r.seq++
	return r.seq
}

// observeID keeps the sequence ahead of numeric ids set by clients.
func (r *Resource) observeID(key string) {
	if n, err := strconv.ParseInt(key, 10, 64); err == nil && n > r.seq {
		r.seq = n
	}
}

func (r *Resource) parseID(key string) any {
	if r.idMode == IDModeAuto {
		if n, err := strconv.ParseInt(key, 10, 64); err == nil {
			return n
		}
	}
	return key
}
