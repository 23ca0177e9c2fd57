package twin

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

// store holds resources as JSON objects keyed by resource name. Insertion
// order is kept so list pages are stable.
type store struct {
	mu    sync.Mutex
	items map[string]bcapi.Object
	seq   map[string]int
	next  int
}

func newStore() *store {
	return &store{
		items: make(map[string]bcapi.Object),
		seq:   make(map[string]int),
	}
}

// create assigns a name under parent/collection and stores a copy of obj.
func (s *store) create(parent, collection string, obj bcapi.Object) bcapi.Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	name := collection + "/" + id

	if parent != "" {
		name = parent + "/" + name
	}

	stored := bcapi.ApplyMask(obj, nil, nil)
	stored["name"] = name

	s.items[name] = stored
	s.seq[name] = s.next
	s.next++

	return bcapi.ApplyMask(stored, nil, nil)
}

func (s *store) get(name string) (bcapi.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.items[name]
	if !ok {
		return nil, false
	}

	return bcapi.ApplyMask(obj, nil, nil), true
}

func (s *store) exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.items[name]

	return ok
}

// update runs merge on a copy of name's current value and stores the
// result, all under the lock, so a concurrent delete or update cannot be
// lost. merge may look up other names with exists; it must not call back
// into the store. Returns false when name does not exist, and merge's error
// without storing anything.
func (s *store) update(name string, merge func(current bcapi.Object, exists func(string) bool) (bcapi.Object, error)) (bcapi.Object, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[name]
	if !ok {
		return nil, false, nil
	}

	exists := func(n string) bool {
		_, ok := s.items[n]
		return ok
	}

	updated, err := merge(bcapi.ApplyMask(current, nil, nil), exists)
	if err != nil {
		return nil, true, err
	}

	s.items[name] = bcapi.ApplyMask(updated, nil, nil)

	return bcapi.ApplyMask(updated, nil, nil), true, nil
}

// remove deletes name and every resource nested under it. Returns false when
// name did not exist.
func (s *store) remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[name]; !ok {
		return false
	}

	prefix := name + "/"

	for k := range s.items {
		if k == name || strings.HasPrefix(k, prefix) {
			delete(s.items, k)
			delete(s.seq, k)
		}
	}

	return true
}

// list returns the direct children of parent/collection starting at offset
// token, at most pageSize of them, and the token for the following page.
func (s *store) list(parent, collection string, pageSize int, token string) ([]bcapi.Object, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := collection + "/"
	if parent != "" {
		prefix = parent + "/" + prefix
	}

	var names []string

	for k := range s.items {
		rest, ok := strings.CutPrefix(k, prefix)
		if ok && !strings.Contains(rest, "/") {
			names = append(names, k)
		}
	}

	sort.Slice(names, func(i, j int) bool { return s.seq[names[i]] < s.seq[names[j]] })

	offset := 0

	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(names) {
			return nil, "", errBadPageToken
		}

		offset = n
	}

	end := offset + pageSize
	if end > len(names) {
		end = len(names)
	}

	out := make([]bcapi.Object, 0, end-offset)
	for _, name := range names[offset:end] {
		out = append(out, bcapi.ApplyMask(s.items[name], nil, nil))
	}

	next := ""
	if end < len(names) {
		next = strconv.Itoa(end)
	}

	return out, next, nil
}

func (s *store) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}
