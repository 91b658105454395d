// Package content loads IELTS test sections and validates them on load.
//
// Sections are JSON files laid out as <kind>/<testId>/section-<N>.json
// with an optional <kind>/<testId>/test.json holding test metadata.
// The built-in catalog is embedded; a directory with the same layout can
// replace it.
package content

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/ieltsprep/internal/question"
)

//go:embed data
var embedded embed.FS

//go:embed section.schema.json
var sectionSchema []byte

// ErrSectionNotFound is returned when no section matches a request.
var ErrSectionNotFound = errors.New("section not found")

// TestInfo describes one test in the catalog.
type TestInfo struct {
	Kind     question.Kind
	ID       string
	Title    string
	Sections []SectionInfo
}

// SectionInfo is a lightweight summary of a section.
type SectionInfo struct {
	ID        string
	Number    int
	Title     string
	Questions int
}

// Catalog is an immutable, validated set of test sections.
type Catalog struct {
	sections map[string]*question.TestSection
	tests    map[question.Kind][]TestInfo
}

func sectionKey(kind question.Kind, testID, sectionID string) string {
	return string(kind) + "/" + testID + "/" + sectionID
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load reads and validates every section under fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		sections: make(map[string]*question.TestSection),
		tests:    make(map[question.Kind][]TestInfo),
	}
	for _, kind := range question.Kinds {
		testDirs, err := fs.ReadDir(fsys, string(kind))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s tests: %w", kind, err)
		}
		for _, d := range testDirs {
			if !d.IsDir() {
				continue
			}
			info, err := c.loadTest(fsys, schema, kind, d.Name())
			if err != nil {
				return nil, err
			}
			if len(info.Sections) > 0 {
				c.tests[kind] = append(c.tests[kind], info)
			}
		}
		sort.Slice(c.tests[kind], func(i, j int) bool {
			return c.tests[kind][i].ID < c.tests[kind][j].ID
		})
	}
	return c, nil
}

func (c *Catalog) loadTest(fsys fs.FS, schema *jsonschema.Schema, kind question.Kind, testID string) (TestInfo, error) {
	dir := path.Join(string(kind), testID)
	info := TestInfo{Kind: kind, ID: testID, Title: testID}

	if b, err := fs.ReadFile(fsys, path.Join(dir, "test.json")); err == nil {
		var meta struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(b, &meta); err != nil {
			return info, fmt.Errorf("%s/test.json: %w", dir, err)
		}
		if meta.Title != "" {
			info.Title = meta.Title
		}
	}

	files, err := fs.Glob(fsys, path.Join(dir, "section-*.json"))
	if err != nil {
		return info, err
	}
	for _, file := range files {
		sec, err := loadSection(fsys, schema, kind, testID, file)
		if err != nil {
			return info, err
		}
		c.sections[sectionKey(kind, testID, sec.ID)] = sec
		info.Sections = append(info.Sections, SectionInfo{
			ID:        sec.ID,
			Number:    sec.SectionNumber,
			Title:     sec.Title,
			Questions: len(sec.Questions),
		})
	}
	slices.SortFunc(info.Sections, func(a, b SectionInfo) int { return a.Number - b.Number })
	return info, nil
}

func loadSection(fsys fs.FS, schema *jsonschema.Schema, kind question.Kind, testID, file string) (*question.TestSection, error) {
	raw, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON: %w", file, err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("%s: schema validation failed: %w", file, err)
	}

	var sec question.TestSection
	if err := json.Unmarshal(raw, &sec); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	sec.Kind = kind
	sec.TestID = testID
	sec.ID = strings.TrimSuffix(path.Base(file), ".json")
	if sec.TotalQuestions == 0 {
		sec.TotalQuestions = len(sec.Questions)
	}
	if err := checkSection(&sec); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return &sec, nil
}

// checkSection enforces the rules the schema cannot express.
func checkSection(sec *question.TestSection) error {
	n, err := question.SectionNumber(sec.ID)
	if err != nil {
		return err
	}
	if n != sec.SectionNumber {
		return fmt.Errorf("sectionNumber %d does not match %s", sec.SectionNumber, sec.ID)
	}
	if n > sec.Kind.LastSection() {
		return fmt.Errorf("%s tests have %d sections, got %s", sec.Kind, sec.Kind.LastSection(), sec.ID)
	}
	if sec.TotalQuestions != len(sec.Questions) {
		return fmt.Errorf("totalQuestions %d but %d questions", sec.TotalQuestions, len(sec.Questions))
	}
	if sec.Kind == question.KindListening && sec.AudioFile == "" {
		return errors.New("listening section has no audioFile")
	}

	seen := make(map[string]bool, len(sec.Questions))
	for _, q := range sec.Questions {
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if err := checkQuestion(q); err != nil {
			return fmt.Errorf("question %s: %w", q.ID, err)
		}
	}
	return nil
}

func checkQuestion(q question.Question) error {
	if q.CorrectAnswer == nil {
		return nil
	}
	key := *q.CorrectAnswer
	switch {
	case q.Type.IsChoice():
		if key.Shape() != question.ShapeSingle {
			return errors.New("choice question needs a single correct answer")
		}
		if !slices.Contains(q.Choices(), key.Value()) {
			return fmt.Errorf("correct answer %q is not one of the options", key.Value())
		}
	case q.Type.IsForm():
		if len(q.Fields) == 0 {
			return errors.New("form question has no fields")
		}
		if key.Shape() != question.ShapeSequence || len(key.Parts()) != len(q.Fields) {
			return fmt.Errorf("form question needs %d answers, one per field", len(q.Fields))
		}
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal(sectionSchema, &doc); err != nil {
		return nil, fmt.Errorf("parse section schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	const url = "schema://section.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile section schema: %w", err)
	}
	return compiled, nil
}

// Section returns the requested section or ErrSectionNotFound.
func (c *Catalog) Section(kind question.Kind, testID, sectionID string) (*question.TestSection, error) {
	sec, ok := c.sections[sectionKey(kind, testID, sectionID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrSectionNotFound, kind, testID, sectionID)
	}
	return sec, nil
}

// Tests lists the tests of a kind ordered by ID.
func (c *Catalog) Tests(kind question.Kind) []TestInfo {
	return slices.Clone(c.tests[kind])
}

// Test returns one test's summary.
func (c *Catalog) Test(kind question.Kind, testID string) (TestInfo, bool) {
	for _, t := range c.tests[kind] {
		if t.ID == testID {
			return t, true
		}
	}
	return TestInfo{}, false
}

// Sections returns every section of a test in order.
func (c *Catalog) Sections(kind question.Kind, testID string) ([]*question.TestSection, error) {
	info, ok := c.Test(kind, testID)
	if !ok {
		return nil, fmt.Errorf("%w: no test %s/%s", ErrSectionNotFound, kind, testID)
	}
	out := make([]*question.TestSection, 0, len(info.Sections))
	for _, s := range info.Sections {
		out = append(out, c.sections[sectionKey(kind, testID, s.ID)])
	}
	return out, nil
}
