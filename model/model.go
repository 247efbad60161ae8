// Package model holds the types shared between the host platform and the
// Virtualmin adapter.
package model

import (
	"sort"
	"sync"
)

// Config is the connection configuration supplied by the host platform.
type Config struct {
	Host      string `yaml:"host"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	VerifySSL bool   `yaml:"verify_ssl"`
}

// Property is a single key/value pair stored against a service by the host.
type Property struct {
	Key    string `yaml:"key"`
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Hidden bool   `yaml:"hidden,omitempty"`
}

// Service is the host-owned handle of a provisioned service. The adapter
// writes its properties through it but never owns the storage.
type Service interface {
	ID() string
	Email() string
	SetProperty(p Property) error
	DeleteProperties(keys ...string) error
}

// Plan is a Virtualmin account plan.
type Plan struct {
	Name string
}

// MemoryService is a Service kept in memory.
type MemoryService struct {
	mu         sync.Mutex
	id         string
	email      string
	properties map[string]Property
}

// NewMemoryService creates an empty MemoryService.
func NewMemoryService(id, email string) *MemoryService {
	return &MemoryService{
		id:         id,
		email:      email,
		properties: map[string]Property{},
	}
}

func (m *MemoryService) ID() string {
	return m.id
}

func (m *MemoryService) Email() string {
	return m.email
}

// SetProperty creates or replaces the property with the same key.
func (m *MemoryService) SetProperty(p Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[p.Key] = p
	return nil
}

// DeleteProperties removes the given keys, ignoring unknown ones.
func (m *MemoryService) DeleteProperties(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.properties, key)
	}
	return nil
}

// Property returns the stored property for key.
func (m *MemoryService) Property(key string) (Property, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.properties[key]
	return p, ok
}

// Values returns the stored properties as a key/value map, the shape the
// adapter receives them in.
func (m *MemoryService) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := make(map[string]string, len(m.properties))
	for key, p := range m.properties {
		values[key] = p.Value
	}
	return values
}

// Keys returns the stored property keys in sorted order.
func (m *MemoryService) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.properties))
	for key := range m.properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
