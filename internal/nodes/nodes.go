// Package nodes manages the set of remote daemon endpoints: the built-in
// fleet from configuration plus a single user-supplied custom slot, with
// a persisted active selection.
package nodes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/storage"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// CustomID is the fixed identifier for the single custom node slot.
const CustomID = "custom"

// Storage keys.
const (
	activeStorageKey = "nodes/active"
	customStorageKey = "nodes/custom"
)

// Node is a remote daemon endpoint. Username and Password are basic-auth
// credentials extracted from a custom URI, empty for built-in nodes.
type Node struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	URI      string `json:"uri"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Custom   bool   `json:"custom,omitempty"`
}

// Registry tracks the available nodes and the active selection.
type Registry struct {
	mu       sync.Mutex
	store    storage.Store
	builtin  []Node
	teardown func(old, new Node)
}

// NewRegistry builds a registry from the configured built-in fleet.
// The teardown hook, if set, fires after the active node changes so the
// caller can dispose any engine instance bound to the old endpoint.
func NewRegistry(store storage.Store, builtin []config.NodeConfig, teardown func(old, new Node)) *Registry {
	r := &Registry{store: store, teardown: teardown}
	for _, n := range builtin {
		r.builtin = append(r.builtin, Node{ID: n.ID, Label: n.Label, URI: n.URI})
	}
	return r
}

// List returns the built-in nodes plus the custom node when one is set.
func (r *Registry) List() ([]Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := append([]Node(nil), r.builtin...)
	custom, err := r.loadCustom()
	if err != nil {
		return nil, err
	}
	if custom != nil {
		out = append(out, *custom)
	}
	return out, nil
}

// Get returns the node with the given id.
func (r *Registry) Get(id string) (Node, error) {
	all, err := r.List()
	if err != nil {
		return Node{}, err
	}
	for _, n := range all {
		if n.ID == id {
			return n, nil
		}
	}
	return Node{}, lanternerr.WithDetails(lanternerr.ErrUnknownNode, map[string]string{"node": id})
}

// Active returns the currently selected node. When no selection has been
// persisted, or the persisted selection no longer exists, it falls back
// to the first built-in node.
func (r *Registry) Active() (Node, error) {
	id, err := r.store.Get(activeStorageKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return Node{}, fmt.Errorf("reading active node: %w", err)
	}
	if err == nil {
		if n, getErr := r.Get(string(id)); getErr == nil {
			return n, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.builtin) == 0 {
		return Node{}, lanternerr.ErrNoNodesAvailable
	}
	return r.builtin[0], nil
}

// SetActive selects the node with the given id and fires the teardown
// hook when the selection actually changed.
func (r *Registry) SetActive(id string) error {
	old, err := r.Active()
	if err != nil {
		return err
	}

	next, err := r.Get(id)
	if err != nil {
		return err
	}

	if err := r.store.Set(activeStorageKey, []byte(id)); err != nil {
		return fmt.Errorf("persisting active node: %w", err)
	}

	if r.teardown != nil && old.ID != next.ID {
		r.teardown(old, next)
	}
	return nil
}

// SetCustom normalizes and stores the custom node URI, then selects it.
// The URI is upgraded to https when bare, rejected when explicitly http,
// required to carry a port, and stripped of any path, query, and
// embedded basic-auth credentials (kept separately).
func (r *Registry) SetCustom(rawURI string) (Node, error) {
	node, err := normalizeURI(rawURI)
	if err != nil {
		return Node{}, err
	}

	data, err := json.Marshal(node)
	if err != nil {
		return Node{}, fmt.Errorf("marshaling custom node: %w", err)
	}
	if err := r.store.Set(customStorageKey, data); err != nil {
		return Node{}, fmt.Errorf("persisting custom node: %w", err)
	}

	if err := r.SetActive(CustomID); err != nil {
		return Node{}, err
	}
	return node, nil
}

// RemoveCustom deletes the custom node. When it was the active
// selection, the registry fails over to the first built-in node.
func (r *Registry) RemoveCustom() error {
	active, err := r.Active()
	if err != nil {
		return err
	}

	if err := r.store.Delete(customStorageKey); err != nil {
		return fmt.Errorf("deleting custom node: %w", err)
	}

	if active.ID == CustomID {
		r.mu.Lock()
		noBuiltin := len(r.builtin) == 0
		var first Node
		if !noBuiltin {
			first = r.builtin[0]
		}
		r.mu.Unlock()

		if noBuiltin {
			return lanternerr.ErrNoNodesAvailable
		}
		return r.SetActive(first.ID)
	}
	return nil
}

// Reset deletes the persisted selection and the custom node, returning
// the registry to its built-in defaults. Used on wallet deletion.
func (r *Registry) Reset() error {
	if err := r.store.Delete(activeStorageKey); err != nil {
		return fmt.Errorf("deleting active node: %w", err)
	}
	return r.store.Delete(customStorageKey)
}

func (r *Registry) loadCustom() (*Node, error) {
	data, err := r.store.Get(customStorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading custom node: %w", err)
	}

	var node Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing custom node: %w", err)
	}
	return &node, nil
}

// normalizeURI validates and canonicalizes a user-supplied node URI.
func normalizeURI(raw string) (Node, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Node{}, lanternerr.ErrInvalidInput
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return Node{}, lanternerr.WithDetails(lanternerr.ErrInvalidInput, map[string]string{"uri": raw})
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		return Node{}, lanternerr.ErrInsecureScheme
	default:
		return Node{}, lanternerr.WithDetails(lanternerr.ErrInvalidInput, map[string]string{"scheme": parsed.Scheme})
	}

	if parsed.Hostname() == "" {
		return Node{}, lanternerr.ErrInvalidInput
	}
	if parsed.Port() == "" {
		return Node{}, lanternerr.ErrPortRequired
	}

	node := Node{
		ID:     CustomID,
		Label:  "Custom node",
		URI:    "https://" + parsed.Hostname() + ":" + parsed.Port(),
		Custom: true,
	}
	if parsed.User != nil {
		node.Username = parsed.User.Username()
		node.Password, _ = parsed.User.Password()
	}
	return node, nil
}
