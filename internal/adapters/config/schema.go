package config

import (
	"gopkg.in/yaml.v3"
)

// Cdnfile represents the structure of the cdnloader.yaml configuration file.
type Cdnfile struct {
	Version    string       `yaml:"version"`
	OutputDir  string       `yaml:"outputDir"`
	AutoCreate *bool        `yaml:"autoCreate"`
	BaseURL    string       `yaml:"baseURL"`
	Timeout    string       `yaml:"timeout"`
	Libraries  []LibraryDTO `yaml:"libraries"`
}

// LibraryDTO represents a library declaration in the configuration.
type LibraryDTO struct {
	Name     string      `yaml:"name"`
	Version  string      `yaml:"version"`
	Files    *StringList `yaml:"files"`
	Minified *bool       `yaml:"minified"`
	Min      *bool       `yaml:"min"`
	Type     string      `yaml:"type"`
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*s = StringList{value.Value}
		return nil
	}

	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	if list == nil {
		list = []string{}
	}
	*s = list
	return nil
}

// knownKeys lists the top-level keys read from a Cdnfile.
var knownKeys = map[string]struct{}{
	"version":    {},
	"outputDir":  {},
	"autoCreate": {},
	"baseURL":    {},
	"timeout":    {},
	"libraries":  {},
}
