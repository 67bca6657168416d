// Package data loads and caches test fixtures from JSON and YAML files under
// a data directory. Lookups use dot-separated paths into the decoded
// documents.
package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"apibdd/pkg/logging"
)

// Well-known fixture files.
const (
	UsersFile     = "users.json"
	EndpointsFile = "endpoints.yaml"
	PaymentsFile  = "payments.json"
)

// Provider loads fixture files from a directory and caches the decoded
// documents. It is safe for concurrent use.
type Provider struct {
	dir string

	mu    sync.RWMutex
	cache map[string]interface{}
}

// NewProvider creates a provider rooted at the data directory.
func NewProvider(dir string) *Provider {
	return &Provider{
		dir:   dir,
		cache: make(map[string]interface{}),
	}
}

// Dir returns the data directory the provider reads from.
func (p *Provider) Dir() string {
	return p.dir
}

// Load decodes the named file, serving repeat loads from cache. The decoder
// is chosen by extension: .json, .yaml or .yml.
func (p *Provider) Load(name string) (interface{}, error) {
	p.mu.RLock()
	cached, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return cached, nil
	}

	path := filepath.Join(p.dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test data %s: %w", name, err)
	}

	var doc interface{}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse JSON test data %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse YAML test data %s: %w", name, err)
		}
		doc = normalizeYAML(doc)
	default:
		return nil, fmt.Errorf("unsupported test data format: %s", name)
	}

	p.mu.Lock()
	p.cache[name] = doc
	p.mu.Unlock()

	logging.Debug("data", "Loaded test data file: %s", path)
	return doc, nil
}

// Get resolves a dot-separated path inside the named file. Numeric segments
// index into arrays.
func (p *Provider) Get(name, path string) (interface{}, error) {
	doc, err := p.Load(name)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return doc, nil
	}

	current := doc
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]interface{}:
			next, ok := node[segment]
			if !ok {
				return nil, fmt.Errorf("path %q not found in %s", path, name)
			}
			current = next
		case []interface{}:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return nil, fmt.Errorf("invalid array index %q at path %q in %s", segment, path, name)
			}
			current = node[index]
		default:
			return nil, fmt.Errorf("path %q not found in %s", path, name)
		}
	}
	return current, nil
}

// GetString resolves a path and formats the value as a string.
func (p *Provider) GetString(name, path string) (string, error) {
	value, err := p.Get(name, path)
	if err != nil {
		return "", err
	}
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// GetMap resolves a path that must point at an object.
func (p *Provider) GetMap(name, path string) (map[string]interface{}, error) {
	value, err := p.Get(name, path)
	if err != nil {
		return nil, err
	}
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("path %q in %s is not an object", path, name)
	}
	return m, nil
}

// Has reports whether the path resolves in the named file.
func (p *Provider) Has(name, path string) bool {
	_, err := p.Get(name, path)
	return err == nil
}

// User returns the named user fixture from users.json.
func (p *Provider) User(key string) (map[string]interface{}, error) {
	return p.GetMap(UsersFile, key)
}

// Endpoint returns the endpoint template registered under the key in
// endpoints.yaml.
func (p *Provider) Endpoint(key string) (string, error) {
	value, err := p.GetString(EndpointsFile, key)
	if err != nil {
		return "", err
	}
	if value == "" {
		return "", fmt.Errorf("endpoint %q is empty", key)
	}
	return value, nil
}

// Scenario returns the named scenario fixture from the given file.
func (p *Provider) Scenario(name, key string) (map[string]interface{}, error) {
	return p.GetMap(name, "scenarios."+key)
}

// Merge overlays the override map onto a copy of the base fixture. Nested
// objects merge recursively, every other value is replaced.
func Merge(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range override {
		if overMap, ok := value.(map[string]interface{}); ok {
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				merged[key] = Merge(baseMap, overMap)
				continue
			}
		}
		merged[key] = value
	}
	return merged
}

// Reload drops the cache entry for the file and loads it again.
func (p *Provider) Reload(name string) (interface{}, error) {
	p.mu.Lock()
	delete(p.cache, name)
	p.mu.Unlock()
	return p.Load(name)
}

// ClearCache drops every cached document.
func (p *Provider) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]interface{})
}

// normalizeYAML converts map[interface{}]interface{} trees into
// map[string]interface{} so JSON and YAML fixtures share one lookup path.
func normalizeYAML(value interface{}) interface{} {
	switch node := value.(type) {
	case map[string]interface{}:
		for key, item := range node {
			node[key] = normalizeYAML(item)
		}
		return node
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(node))
		for key, item := range node {
			converted[fmt.Sprintf("%v", key)] = normalizeYAML(item)
		}
		return converted
	case []interface{}:
		for i, item := range node {
			node[i] = normalizeYAML(item)
		}
		return node
	default:
		return value
	}
}
