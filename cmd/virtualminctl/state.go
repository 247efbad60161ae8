package main

import (
	"os"
	"sort"

	"github.com/dirien/virtualmin-sdk/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// stateFile is the on-disk property store of the CLI, keyed by service id.
type stateFile struct {
	Services map[string]*serviceState `yaml:"services"`
}

type serviceState struct {
	Email      string           `yaml:"email,omitempty"`
	Properties []model.Property `yaml:"properties"`
}

type fileStore struct {
	path  string
	state stateFile
}

func loadStore(path string) (*fileStore, error) {
	store := &fileStore{path: path, state: stateFile{Services: map[string]*serviceState{}}}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read state file")
	}
	if err := yaml.Unmarshal(data, &store.state); err != nil {
		return nil, errors.Wrapf(err, "failed to parse state file %s", path)
	}
	if store.state.Services == nil {
		store.state.Services = map[string]*serviceState{}
	}
	return store, nil
}

func (s *fileStore) save() error {
	data, err := yaml.Marshal(&s.state)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// service returns the handle for id. email is only recorded for services
// that are not yet known.
func (s *fileStore) service(id, email string) *fileService {
	if _, ok := s.state.Services[id]; !ok {
		s.state.Services[id] = &serviceState{Email: email}
	}
	return &fileService{store: s, id: id}
}

// fileService implements model.Service on top of a fileStore.
type fileService struct {
	store *fileStore
	id    string
}

func (f *fileService) entry() *serviceState {
	return f.store.state.Services[f.id]
}

func (f *fileService) ID() string {
	return f.id
}

func (f *fileService) Email() string {
	return f.entry().Email
}

func (f *fileService) SetProperty(p model.Property) error {
	entry := f.entry()
	for i := range entry.Properties {
		if entry.Properties[i].Key == p.Key {
			entry.Properties[i] = p
			return f.store.save()
		}
	}
	entry.Properties = append(entry.Properties, p)
	sort.Slice(entry.Properties, func(i, j int) bool {
		return entry.Properties[i].Key < entry.Properties[j].Key
	})
	return f.store.save()
}

func (f *fileService) DeleteProperties(keys ...string) error {
	drop := make(map[string]bool, len(keys))
	for _, key := range keys {
		drop[key] = true
	}
	entry := f.entry()
	kept := entry.Properties[:0]
	for _, p := range entry.Properties {
		if !drop[p.Key] {
			kept = append(kept, p)
		}
	}
	entry.Properties = kept
	return f.store.save()
}

// values returns the stored properties as the adapter expects them.
func (f *fileService) values() map[string]string {
	values := map[string]string{}
	for _, p := range f.entry().Properties {
		values[p.Key] = p.Value
	}
	return values
}
