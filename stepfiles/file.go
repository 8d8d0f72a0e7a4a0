package stepfiles

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reusee/bgpipe/configs"
	"github.com/reusee/bgpipe/envelopes"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownFormat = errors.New("unknown chain file format")
	ErrBadStep       = errors.New("bad step")
)

// File is a chain definition: the initial input and the steps.
type File struct {
	Input any
	Steps []Step
}

// Step is one entry of a chain file. A bare string is source.
type Step struct {
	Name   string
	Source string
}

func (s Step) Func() (envelopes.Func, error) {
	switch {
	case s.Name != "" && s.Source != "":
		return envelopes.Func{}, fmt.Errorf("%w: both name and source", ErrBadStep)
	case s.Name != "":
		return envelopes.Ref(s.Name), nil
	case s.Source != "":
		return envelopes.Source(s.Source), nil
	}
	return envelopes.Func{}, fmt.Errorf("%w: empty", ErrBadStep)
}

// Funcs returns the steps as functions, in order.
func (f *File) Funcs() ([]any, error) {
	ret := make([]any, 0, len(f.Steps))
	for i, step := range f.Steps {
		fn, err := step.Func()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		ret = append(ret, fn)
	}
	return ret, nil
}

type rawFile struct {
	Input any   `json:"input" yaml:"input"`
	Steps []any `json:"steps" yaml:"steps"`
}

func (r rawFile) file() (*File, error) {
	ret := &File{
		Input: r.Input,
	}
	for i, v := range r.Steps {
		step, err := parseStep(v)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		ret.Steps = append(ret.Steps, step)
	}
	return ret, nil
}

func parseStep(v any) (Step, error) {
	switch v := v.(type) {
	case string:
		return Step{Source: v}, nil
	case map[string]any:
		var step Step
		for key, value := range v {
			str, ok := value.(string)
			if !ok {
				return step, fmt.Errorf("%w: %s is %T", ErrBadStep, key, value)
			}
			switch key {
			case "name":
				step.Name = str
			case "source":
				step.Source = str
			default:
				return step, fmt.Errorf("%w: unknown key %s", ErrBadStep, key)
			}
		}
		if _, err := step.Func(); err != nil {
			return step, err
		}
		return step, nil
	}
	return Step{}, fmt.Errorf("%w: %T", ErrBadStep, v)
}

// Load reads a chain file, in a format chosen by extension.
func Load(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return loadCue(path)
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(content)
	}
	return ParseYAML(content)
}

func ParseJSON(content []byte) (*File, error) {
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.UseNumber()
	var raw rawFile
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode chain file: %w", err)
	}
	return raw.file()
}

func ParseYAML(content []byte) (*File, error) {
	var raw rawFile
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("decode chain file: %w", err)
	}
	return raw.file()
}

const cueSchema = `
input?: _
steps: [...(string | close({name: string}) | close({source: string}))]
`

func loadCue(path string) (*File, error) {
	loader := configs.NewLoader([]string{path}, cueSchema)
	var raw rawFile
	if err := loader.AssignFirst("input", &raw.Input); err != nil && !errors.Is(err, configs.ErrValueNotFound) {
		return nil, err
	}
	if err := loader.AssignFirst("steps", &raw.Steps); err != nil && !errors.Is(err, configs.ErrValueNotFound) {
		return nil, err
	}
	return raw.file()
}
