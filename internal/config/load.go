package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Loader resolves a Config for a project directory.
type Loader struct {
	// Dir is searched for a config file and a .env file.
	Dir string
	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Load resolves the config for dir using the process environment.
func Load(dir string) (*Config, error) {
	return (&Loader{Dir: dir}).Load()
}

// Load applies, in order: defaults, the first config file found in Dir,
// the .env file in Dir, then the process environment. Every layer is
// validated against the schema before it is applied.
func (l *Loader) Load() (*Config, error) {
	cfg := New()

	path, err := l.findFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		o, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.apply(o); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Source = path
	}

	env, err := l.environment()
	if err != nil {
		return nil, err
	}
	o, err := envOverlay(env)
	if err != nil {
		return nil, err
	}
	if err := validate(o, "environment"); err != nil {
		return nil, err
	}
	if err := cfg.apply(o); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return cfg, nil
}

// LoadFile applies a single config file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	o, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg := New()
	if err := cfg.apply(o); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

func (l *Loader) findFile() (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(l.Dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", path)
		}
		return path, nil
	}
	return "", nil
}

// environment merges the .env file with the process environment. Process
// variables win, matching godotenv.Load's no-override behaviour.
func (l *Loader) environment() (map[string]string, error) {
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	env := map[string]string{}
	dotenv := filepath.Join(l.Dir, ".env")
	vars, err := godotenv.Read(dotenv)
	switch {
	case err == nil:
		for k, v := range vars {
			if strings.HasPrefix(k, EnvPrefix) {
				env[k] = v
			}
		}
	case errors.Is(err, fs.ErrNotExist):
		// .env is optional
	default:
		return nil, fmt.Errorf("failed to read %s: %w", dotenv, err)
	}

	for _, key := range envKeys {
		if v, ok := lookup(EnvPrefix + key); ok {
			env[EnvPrefix+key] = v
		}
	}
	return env, nil
}

var envKeys = []string{
	"FORMAT", "VERBOSE", "NO_COLOR", "ISOLATE", "TIMEOUT", "FAIL_FAST",
	"FILTERS", "OUTPUT", "HISTORY", "HISTORY_DSN", "KEEP",
}

// envOverlay converts FIXTUREKIT_* variables into an overlay. Unknown
// FIXTUREKIT_* keys from a .env file are rejected.
func envOverlay(env map[string]string) (overlay, error) {
	var o overlay
	for key, v := range env {
		name := strings.TrimPrefix(key, EnvPrefix)
		var err error
		switch name {
		case "FORMAT":
			o.Format = &v
		case "VERBOSE":
			o.Verbose, err = parseBool(v)
		case "NO_COLOR":
			o.NoColor, err = parseBool(v)
		case "ISOLATE":
			o.Isolate, err = parseBool(v)
		case "TIMEOUT":
			o.Timeout = &v
		case "FAIL_FAST":
			o.FailFast, err = parseBool(v)
		case "FILTERS":
			o.Filters = splitList(v)
		case "OUTPUT":
			o.Output = &v
		case "HISTORY":
			o.History = &v
		case "HISTORY_DSN":
			o.HistoryDSN = &v
		case "KEEP":
			var n int
			n, err = strconv.Atoi(v)
			o.Keep = &n
		default:
			err = errors.New("unknown setting")
		}
		if err != nil {
			return overlay{}, fmt.Errorf("environment %s=%q: %w", key, v, err)
		}
	}
	return o, nil
}

func parseBool(s string) (*bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readFile decodes and validates one config file.
func readFile(path string) (overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return overlay{}, fmt.Errorf("failed to read config: %w", err)
	}

	var o overlay
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
			return overlay{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
		if err := validate(o, path); err != nil {
			return overlay{}, err
		}
	case ".cue":
		o, err = decodeCUE(path, data)
		if err != nil {
			return overlay{}, err
		}
	default:
		return overlay{}, fmt.Errorf("%s: unsupported config extension %q", path, filepath.Ext(path))
	}
	return o, nil
}

// schema compiles the embedded #Config definition.
func schema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile config schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}

// validate checks an overlay against the schema by round-tripping it
// through JSON, which CUE accepts as input.
func validate(o overlay, source string) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return err
	}
	v := ctx.CompileBytes(data, cue.Filename(source))
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s: invalid config: %w", source, err)
	}
	return nil
}

// decodeCUE compiles a CUE config file, unifies it with the schema, and
// decodes the result.
func decodeCUE(path string, data []byte) (overlay, error) {
	ctx := cuecontext.New()
	def, err := schema(ctx)
	if err != nil {
		return overlay{}, err
	}
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return overlay{}, fmt.Errorf("%s: failed to parse CUE: %w", path, err)
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return overlay{}, fmt.Errorf("%s: invalid config: %w", path, err)
	}
	var o overlay
	if err := unified.Decode(&o); err != nil {
		return overlay{}, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}
