package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-industrial/song"
)

const (
	// DocumentVersion is written into every save
	DocumentVersion = 1

	timestampLayout = "2006-01-02_15-04-05"
	defaultProject  = "untitled"
)

// Document is the saved form of an arrangement
type Document struct {
	Version  int            `json:"version"`
	Sections []song.Section `json:"sections"`
	Params   song.Params    `json:"params"`
	Looping  bool           `json:"looping,omitempty"`
}

// Capture snapshots a timeline and parameters into a Document
func Capture(tl *song.Timeline, p song.Params, looping bool) Document {
	return Document{
		Version:  DocumentVersion,
		Sections: tl.Sections(),
		Params:   p,
		Looping:  looping,
	}
}

// Apply replaces the timeline contents with the saved sections
func (d Document) Apply(tl *song.Timeline) error {
	if err := song.Validate(d.Sections); err != nil {
		return err
	}
	tl.Replace(d.Sections)
	return nil
}

// SaveInfo represents a saved project file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Store keeps projects as folders of timestamped JSON saves under Root
type Store struct {
	Root string
}

// DefaultStore returns the store in ~/.config/go-industrial/projects
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{Root: filepath.Join(home, ".config", "go-industrial", "projects")}, nil
}

func (s *Store) dir(projectName string) string {
	if projectName == "" {
		projectName = defaultProject
	}
	return filepath.Join(s.Root, sanitizeFilename(projectName))
}

// Projects returns all project folder names
func (s *Store) Projects() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// Saves returns timestamped saves for a project, newest first
func (s *Store) Saves(projectName string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(s.dir(projectName))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, ok := parseSaveName(entry.Name())
		if ok {
			saves = append(saves, info)
		}
	}

	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

// parseSaveName reads 2006-01-02_15-04-05[_name].json
func parseSaveName(filename string) (SaveInfo, bool) {
	if !strings.HasSuffix(filename, ".json") {
		return SaveInfo{}, false
	}
	base := strings.TrimSuffix(filename, ".json")
	if len(base) < len(timestampLayout) {
		return SaveInfo{}, false
	}
	ts, err := time.Parse(timestampLayout, base[:len(timestampLayout)])
	if err != nil {
		return SaveInfo{}, false
	}

	name := ""
	if rest := base[len(timestampLayout):]; len(rest) > 1 && rest[0] == '_' {
		name = rest[1:]
	}
	return SaveInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

// Save writes doc as a new timestamped save in the project
func (s *Store) Save(projectName, name string, doc Document, at time.Time) (SaveInfo, error) {
	dir := s.dir(projectName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SaveInfo{}, fmt.Errorf("%w: %v", song.ErrFileWriteFailed, err)
	}

	if doc.Version == 0 {
		doc.Version = DocumentVersion
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return SaveInfo{}, err
	}

	filename := at.Format(timestampLayout)
	if name != "" {
		filename += "_" + sanitizeFilename(name)
	}
	filename += ".json"

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return SaveInfo{}, fmt.Errorf("%w: %v", song.ErrFileWriteFailed, err)
	}
	info, _ := parseSaveName(filename)
	return info, nil
}

// Load reads a specific save, or the most recent if filename is empty
func (s *Store) Load(projectName, filename string) (Document, error) {
	if filename == "" {
		saves, err := s.Saves(projectName)
		if err != nil {
			return Document{}, err
		}
		if len(saves) == 0 {
			return Document{}, fmt.Errorf("no saves found in project %s: %w", projectName, song.ErrInvalidParameter)
		}
		filename = saves[0].Filename
	}

	data, err := os.ReadFile(filepath.Join(s.dir(projectName), filename))
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	if doc.Version > DocumentVersion {
		return Document{}, fmt.Errorf("save %s has version %d, newer than %d: %w", filename, doc.Version, DocumentVersion, song.ErrInvalidParameter)
	}
	return doc, nil
}

// Delete deletes a specific save file
func (s *Store) Delete(projectName, filename string) error {
	return os.Remove(filepath.Join(s.dir(projectName), filename))
}

// Rename changes the name part of a save, keeping its timestamp
func (s *Store) Rename(projectName, oldFilename, newName string) (string, error) {
	info, ok := parseSaveName(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid save filename %q: %w", oldFilename, song.ErrInvalidParameter)
	}

	newFilename := info.Timestamp.Format(timestampLayout)
	if newName != "" {
		newFilename += "_" + sanitizeFilename(newName)
	}
	newFilename += ".json"

	dir := s.dir(projectName)
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

// DeleteProject deletes an entire project folder
func (s *Store) DeleteProject(name string) error {
	return os.RemoveAll(s.dir(name))
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	return r.Replace(name)
}
