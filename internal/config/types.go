package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/realmctl/internal/realm"
)

// Document is a YAML file describing one or more realm requests to run in order.
type Document struct {
	Version         string  `yaml:"version" validate:"required,semver"`
	Name            string  `yaml:"name" validate:"required,min=1,max=100"`
	Description     string  `yaml:"description,omitempty"`
	ContinueOnError bool    `yaml:"continue_on_error,omitempty"`
	Requests        []Entry `yaml:"requests" validate:"required,min=1,dive"`
}

// Entry is one named request inside a Document.
type Entry struct {
	ID      string `yaml:"id" validate:"required,entry_id"`
	Name    string `yaml:"name,omitempty"`
	Enabled bool   `yaml:"enabled,omitempty"`
	// PasswordEnv names an environment variable holding the password, so
	// documents need not contain it.
	PasswordEnv string `yaml:"password_env,omitempty"`

	Request realm.Request `yaml:"-" validate:"-"`
}

var entryKeys = []string{"id", "name", "enabled", "password_env"}

// UnmarshalYAML decodes the entry metadata and the realm request from the same
// mapping. Keys that neither the entry nor the request know are rejected.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys(value); err != nil {
		return err
	}

	var base struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Enabled     *bool  `yaml:"enabled"`
		PasswordEnv string `yaml:"password_env"`
	}
	if err := value.Decode(&base); err != nil {
		return err
	}

	var req realm.Request
	if err := value.Decode(&req); err != nil {
		return err
	}

	e.ID = base.ID
	e.Name = base.Name
	e.PasswordEnv = base.PasswordEnv
	e.Enabled = true
	if base.Enabled != nil {
		e.Enabled = *base.Enabled
	}
	e.Request = req
	return nil
}

func checkKeys(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return nil
	}

	known := make(map[string]struct{}, len(entryKeys)+32)
	for _, key := range entryKeys {
		known[key] = struct{}{}
	}
	for _, key := range realm.Keys() {
		known[key] = struct{}{}
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		if _, ok := known[keyNode.Value]; !ok {
			return fmt.Errorf("line %d: unknown request key %q", keyNode.Line, keyNode.Value)
		}
	}
	return nil
}

// Resolve returns the entry's request with the password filled in from
// PasswordEnv when set. lookup defaults to os.LookupEnv.
func (e Entry) Resolve(lookup func(string) (string, bool)) (realm.Request, error) {
	req := e.Request
	if e.PasswordEnv == "" {
		return req, nil
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(e.PasswordEnv)
	if !ok {
		return realm.Request{}, fmt.Errorf("request %s: environment variable %s is not set", e.ID, e.PasswordEnv)
	}
	req.Password = value
	return req, nil
}

// EnabledEntries returns the entries that should run, in document order.
func (d *Document) EnabledEntries() []Entry {
	out := make([]Entry, 0, len(d.Requests))
	for _, entry := range d.Requests {
		if entry.Enabled {
			out = append(out, entry)
		}
	}
	return out
}
