package inputs

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Source is a flat set of named action inputs.
type Source interface {
	// Get returns the trimmed value or "" when the input is not supplied.
	Get(name string) string
	// Raw returns the value as supplied, surrounding whitespace included.
	Raw(name string) string
	Required(name string) (string, error)
	// Bool is true only for the literal "true".
	Bool(name string) bool
}

type Declaration struct {
	Name        string `yaml:"-"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

type actionMetadata struct {
	Name   string                 `yaml:"name"`
	Inputs map[string]Declaration `yaml:"inputs"`
}

// ParseDeclarations reads the inputs block of an action.yml, sorted by name.
func ParseDeclarations(metadata []byte) ([]Declaration, error) {
	var action actionMetadata
	if err := yaml.Unmarshal(metadata, &action); err != nil {
		return nil, fmt.Errorf("could not parse action metadata: %v", err)
	}
	declarations := make([]Declaration, 0, len(action.Inputs))
	for name, d := range action.Inputs {
		d.Name = name
		declarations = append(declarations, d)
	}
	sort.Slice(declarations, func(i, j int) bool {
		return declarations[i].Name < declarations[j].Name
	})
	return declarations, nil
}

// Inputs resolves action inputs from flags and INPUT_* environment variables.
type Inputs struct {
	vip      *viper.Viper
	declared map[string]Declaration
}

func New(declarations []Declaration) *Inputs {
	vip := viper.New()
	vip.SetEnvPrefix("INPUT")
	vip.AutomaticEnv()

	declared := make(map[string]Declaration, len(declarations))
	for _, d := range declarations {
		declared[d.Name] = d
		// the runner keeps dashes (INPUT_ASANA-PAT), shells cannot export them (INPUT_ASANA_PAT)
		upper := strings.ToUpper(d.Name)
		vip.BindEnv(d.Name, "INPUT_"+upper, "INPUT_"+strings.ReplaceAll(upper, "-", "_"))
		if d.Default != "" {
			vip.SetDefault(d.Name, d.Default)
		}
	}
	return &Inputs{vip: vip, declared: declared}
}

// BindFlags adds one string flag per declared input. Flags win over the environment.
func (in *Inputs) BindFlags(flags *pflag.FlagSet) {
	for _, d := range in.Declarations() {
		flags.String(d.Name, "", d.Description)
		in.vip.BindPFlag(d.Name, flags.Lookup(d.Name))
	}
}

func (in *Inputs) Declarations() []Declaration {
	declarations := make([]Declaration, 0, len(in.declared))
	for _, d := range in.declared {
		declarations = append(declarations, d)
	}
	sort.Slice(declarations, func(i, j int) bool {
		return declarations[i].Name < declarations[j].Name
	})
	return declarations
}

func (in *Inputs) Get(name string) string {
	return strings.TrimSpace(in.Raw(name))
}

func (in *Inputs) Raw(name string) string {
	if _, ok := in.declared[name]; !ok {
		slog.Warn("reading an input that action.yml does not declare", "input", name)
	}
	return in.vip.GetString(name)
}

func (in *Inputs) Required(name string) (string, error) {
	value := in.Get(name)
	if value == "" {
		return "", &ConfigurationError{Input: name, Message: fmt.Sprintf("Input required and not supplied: %v", name)}
	}
	return value, nil
}

func (in *Inputs) Bool(name string) bool {
	return in.Get(name) == "true"
}

// LoadEnvFile seeds the environment from a dotenv file for local runs.
// Variables that are already set are left untouched.
func LoadEnvFile(path string) error {
	envMap, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("could not read env file %v: %v", path, err)
	}
	for k, v := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			if err := os.Setenv(k, v); err != nil {
				return fmt.Errorf("could not set %v: %v", k, err)
			}
		}
	}
	slog.Debug("env file loaded", "path", path, "variables", len(envMap))
	return nil
}

// MapSource is a Source backed by a plain map, used by tests and callers
// that already hold their inputs.
type MapSource map[string]string

func (m MapSource) Get(name string) string {
	return strings.TrimSpace(m[name])
}

func (m MapSource) Raw(name string) string {
	return m[name]
}

func (m MapSource) Required(name string) (string, error) {
	value := m.Get(name)
	if value == "" {
		return "", &ConfigurationError{Input: name, Message: fmt.Sprintf("Input required and not supplied: %v", name)}
	}
	return value, nil
}

func (m MapSource) Bool(name string) bool {
	return m.Get(name) == "true"
}
