// Package config loads and validates campaign configuration.
//
// A campaign file is YAML. Before decoding it is unified with an
// embedded CUE schema, so type and range mistakes are caught with file
// positions instead of surfacing later as zero values deep inside a
// running campaign.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Scheduler kinds a campaign may select.
const (
	SchedulerQueue  = "queue"
	SchedulerRandom = "random"
)

// DefaultMaxInputSize bounds seed imports to 1 MiB unless configured.
const DefaultMaxInputSize = 1 << 20

// Campaign is the decoded campaign configuration.
type Campaign struct {
	// CorpusDir is the on-disk corpus root. Required.
	CorpusDir string `yaml:"corpus_dir"`

	// Journal is the SQLite journal path. Empty disables journaling.
	Journal string `yaml:"journal"`

	// Scheduler selects traversal policy: "queue" (default) or "random".
	Scheduler string `yaml:"scheduler"`

	// Seed seeds the randomness source for replayable campaigns.
	Seed uint64 `yaml:"seed"`

	// MaxInputSize rejects seed files larger than this many bytes.
	MaxInputSize int `yaml:"max_input_size"`
}

// LoadError is a config failure with an optional file position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants.
const (
	ErrCodeNotFound  = "C001" // config file missing/unreadable
	ErrCodeBadYAML   = "C002" // YAML does not parse
	ErrCodeSchema    = "C003" // schema constraint violated
	ErrCodeBadSchema = "C004" // embedded schema failed to compile
)

// Load reads, validates, and decodes a campaign file.
func Load(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return Parse(path, data)
}

// Parse validates and decodes campaign bytes. The filename is used for
// error positions only.
func Parse(filename string, data []byte) (*Campaign, error) {
	if err := validate(filename, data); err != nil {
		return nil, err
	}

	c := &Campaign{
		Scheduler:    SchedulerQueue,
		MaxInputSize: DefaultMaxInputSize,
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, &LoadError{Code: ErrCodeBadYAML, Message: fmt.Sprintf("decoding config: %v", err)}
	}
	return c, nil
}

// validate unifies the YAML document with the embedded schema.
func validate(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return &LoadError{Code: ErrCodeBadSchema, Message: fmt.Sprintf("compiling schema: %v", err)}
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return &LoadError{Code: ErrCodeBadYAML, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return &LoadError{Code: ErrCodeBadYAML, Message: fmt.Sprintf("building YAML value: %v", err)}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return convertCUEError(err)
	}
	return nil
}

// convertCUEError keeps the first position CUE reports so the user
// gets file:line:col instead of a bare message.
func convertCUEError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeSchema, Message: cueerrors.Details(err, nil)}
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			le.Pos = pos
			le.Message = e.Error()
			break
		}
	}
	return le
}
