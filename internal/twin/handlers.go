package twin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

// immutable fields cannot appear in an update mask.
var immutable = map[string]bool{"name": true}

// collections nested under a brand, with the JSON key their list pages use.
var collections = map[string]string{
	"agents":    "agents",
	"locations": "locations",
}

// resourceName rebuilds the resource name from the route parameters.
func resourceName(r *http.Request) string {
	name := "brands/" + chi.URLParam(r, "brand")

	if coll := chi.URLParam(r, "collection"); coll != "" {
		name += "/" + coll + "/" + chi.URLParam(r, "id")
	}

	return name
}

func decodeObject(r *http.Request) (bcapi.Object, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	var obj bcapi.Object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("body is not a JSON object: %w", err)
	}

	if obj == nil {
		obj = bcapi.Object{}
	}

	return obj, nil
}

func pageParams(r *http.Request) (int, string, error) {
	size := defaultPageSize

	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, "", fmt.Errorf("pageSize %q is not a non-negative integer", raw)
		}

		if n > 0 {
			size = min(n, maxPageSize)
		}
	}

	return size, r.URL.Query().Get("pageToken"), nil
}

func (s *Server) createBrand(w http.ResponseWriter, r *http.Request) {
	obj, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	if str(obj, "displayName") == "" {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "brand.displayName is required")
		return
	}

	writeJSON(w, http.StatusOK, s.store.create("", "brands", obj))
}

func (s *Server) listBrands(w http.ResponseWriter, r *http.Request) {
	s.writeList(w, r, "", "brands", "brands")
}

func (s *Server) createChild(w http.ResponseWriter, r *http.Request) {
	coll := chi.URLParam(r, "collection")
	if _, ok := collections[coll]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown collection "+coll)
		return
	}

	parent := "brands/" + chi.URLParam(r, "brand")
	if !s.store.exists(parent) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "brand "+parent+" not found")
		return
	}

	obj, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	if err := s.validateChild(coll, parent, obj, s.store.exists); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	created := s.store.create(parent, coll, obj)

	if coll == "locations" {
		name := str(created, "name")

		withURL, ok, _ := s.store.update(name, func(cur bcapi.Object, _ func(string) bool) (bcapi.Object, error) {
			cur["locationTestUrl"] = "https://business.google.com/message?location=" + name
			return cur, nil
		})
		if !ok {
			writeError(w, http.StatusNotFound, "NOT_FOUND", name+" not found")
			return
		}

		created = withURL
	}

	writeJSON(w, http.StatusOK, created)
}

func (s *Server) listChildren(w http.ResponseWriter, r *http.Request) {
	coll := chi.URLParam(r, "collection")

	key, ok := collections[coll]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown collection "+coll)
		return
	}

	parent := "brands/" + chi.URLParam(r, "brand")
	if !s.store.exists(parent) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "brand "+parent+" not found")
		return
	}

	s.writeList(w, r, parent, coll, key)
}

func (s *Server) writeList(w http.ResponseWriter, r *http.Request, parent, coll, key string) {
	size, token, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	items, next, err := s.store.list(parent, coll, size, token)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	page := map[string]any{key: items}
	if next != "" {
		page["nextPageToken"] = next
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) getResource(w http.ResponseWriter, r *http.Request) {
	name := resourceName(r)

	obj, ok := s.store.get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", name+" not found")
		return
	}

	writeJSON(w, http.StatusOK, obj)
}

// patchResource applies the partial body under updateMask and answers with
// the full stored resource.
func (s *Server) patchResource(w http.ResponseWriter, r *http.Request) {
	name := resourceName(r)

	if !s.store.exists(name) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", name+" not found")
		return
	}

	mask, err := bcapi.ParseFieldMask(r.URL.Query().Get("updateMask"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "updateMask: "+err.Error())
		return
	}

	for _, path := range mask {
		if immutable[strings.SplitN(path, ".", 2)[0]] {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "field "+path+" is immutable")
			return
		}
	}

	partial, err := decodeObject(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}

	if s.strict {
		if err := mask.Validate(partial); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
			return
		}
	}

	updated, ok, err := s.store.update(name, func(current bcapi.Object, exists func(string) bool) (bcapi.Object, error) {
		merged := bcapi.ApplyMask(current, partial, mask)
		merged["name"] = name

		if parts := strings.Split(name, "/"); len(parts) == 4 {
			return merged, s.validateChild(parts[2], "brands/"+parts[1], merged, exists)
		}

		if str(merged, "displayName") == "" {
			return nil, errors.New("brand.displayName is required")
		}

		return merged, nil
	})

	switch {
	case !ok:
		writeError(w, http.StatusNotFound, "NOT_FOUND", name+" not found")
	case err != nil:
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	default:
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	name := resourceName(r)

	if !s.store.remove(name) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", name+" not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{})
}

// validateChild enforces the required fields of an agent or location.
// A location's agent must be an existing agent of the same brand.
func (s *Server) validateChild(coll, parent string, obj bcapi.Object, exists func(string) bool) error {
	switch coll {
	case "agents":
		if str(obj, "displayName") == "" {
			return errors.New("agent.displayName is required")
		}
	case "locations":
		if str(obj, "placeId") == "" {
			return errors.New("location.placeId is required")
		}

		agent := str(obj, "agent")
		if agent == "" {
			return errors.New("location.agent is required")
		}

		if !strings.HasPrefix(agent, parent+"/agents/") || !exists(agent) {
			return fmt.Errorf("location.agent %q is not an agent of %s", agent, parent)
		}
	}

	return nil
}

func str(obj bcapi.Object, key string) string {
	v, _ := obj[key].(string)
	return v
}
