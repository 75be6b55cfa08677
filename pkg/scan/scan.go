// Package scan defines the depdiscover scan document model.
//
// A scan document is the JSON file produced by the depdiscover scanner: the
// project name plus one record per discovered dependency, each carrying the
// vulnerability findings for that dependency. This package parses the
// document and classifies each dependency's security status.
//
// # Document Format
//
//	{
//	  "project_name": "my-project",
//	  "dependencies": [
//	    {
//	      "name": "openssl",
//	      "version": "3.0.2",
//	      "type": "library",
//	      "cves": [{"id": "CVE-2023-0286"}]
//	    }
//	  ]
//	}
//
// All fields are optional; missing values fall back to display defaults via
// the Display* accessors.
package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/depdiscover/depviz/pkg/errors"
)

// Dependency type categories recognized by the filter.
const (
	// TypeSystem marks dependencies provided by the operating system.
	// These are skipped when Options.SkipSystemLibs is set.
	TypeSystem = "system"
)

// Display defaults for absent fields.
const (
	defaultName        = "unknown"
	defaultType        = "unknown"
	defaultVersion     = "?"
	defaultProjectName = "Project"
)

// Finding is a single vulnerability record attached to a dependency.
//
// The ID field carries either a real vulnerability identifier (e.g. a CVE
// number) or one of the scanner's sentinel values: "SAFE", "NOT-CHECKED",
// "CHECK-ERROR".
type Finding struct {
	ID string `json:"id"`
}

// Sentinel finding IDs emitted by the scanner.
const (
	FindingSafe       = "SAFE"
	FindingNotChecked = "NOT-CHECKED"
	FindingCheckError = "CHECK-ERROR"
)

// Dependency is one entry from the scan document's dependency list.
type Dependency struct {
	Name    string    `json:"name"`
	Version string    `json:"version"`
	Type    string    `json:"type"`
	CVEs    []Finding `json:"cves"`
}

// DisplayName returns the dependency name, or "unknown" if absent.
func (d Dependency) DisplayName() string {
	if d.Name == "" {
		return defaultName
	}
	return d.Name
}

// DisplayVersion returns the dependency version, or "?" if absent.
func (d Dependency) DisplayVersion() string {
	if d.Version == "" {
		return defaultVersion
	}
	return d.Version
}

// DisplayType returns the dependency type, or "unknown" if absent.
func (d Dependency) DisplayType() string {
	if d.Type == "" {
		return defaultType
	}
	return d.Type
}

// IsSystem reports whether the dependency is an operating-system library.
func (d Dependency) IsSystem() bool {
	return d.Type == TypeSystem
}

// Document is a parsed scan document.
type Document struct {
	ProjectName  string       `json:"project_name"`
	Dependencies []Dependency `json:"dependencies"`
}

// DisplayProjectName returns the project name, or a placeholder if absent.
func (d Document) DisplayProjectName() string {
	if d.ProjectName == "" {
		return defaultProjectName
	}
	return d.ProjectName
}

// Read decodes a scan document from r.
//
// Read returns a PARSE_FAILURE error if the content is not well-formed JSON.
// No partial document is accepted. Read does not close r.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeParseFailure, err, "decode scan document")
	}
	return doc, nil
}

// Load reads the scan document at path.
//
// Load returns an INPUT_NOT_FOUND error if the path does not exist and a
// PARSE_FAILURE error if the content cannot be decoded. The error message
// includes the path for context.
func Load(path string) (Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Document{}, errors.Wrap(errors.ErrCodeInputNotFound, err, "input file not found: %s", path)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInputNotFound, err, "open %s", path)
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
