package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/trialrun/internal/config"
	"github.com/vk/trialrun/internal/ctxlog"
	"github.com/vk/trialrun/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ supplies the values exposed as env.<NAME>. It defaults to
	// os.Environ.
	Environ func() []string
}

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// settingsFile is the top-level structure of a settings file for decoding.
type settingsFile struct {
	Defaults *programBlock        `hcl:"defaults,block"`
	Programs []*namedProgramBlock `hcl:"program,block"`
}

type programBlock struct {
	Option  *string `hcl:"option,optional"`
	Verbose *bool   `hcl:"verbose,optional"`
}

type namedProgramBlock struct {
	Name    string  `hcl:"name,label"`
	Option  *string `hcl:"option,optional"`
	Verbose *bool   `hcl:"verbose,optional"`
}

// Load parses every .hcl file under paths and merges them, later files
// overriding earlier ones.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Settings, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL settings loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered settings files.", "count", len(files))

	evalCtx := l.evalContext()
	parser := hclparse.NewParser()
	settings := config.NewSettings()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root settingsFile
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		settings.Merge(translate(&root))
		logger.Debug("Settings file loaded.", "path", file, "programs", len(root.Programs))
	}

	logger.Debug("HCL settings loading complete.", "files", len(files), "programs", len(settings.Programs))
	return settings, nil
}

// evalContext exposes the process environment as the env object.
func (l *Loader) evalContext() *hcl.EvalContext {
	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}

	vars := make(map[string]cty.Value)
	for _, kv := range environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	env := cty.EmptyObjectVal
	if len(vars) > 0 {
		env = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": env},
	}
}

func translate(root *settingsFile) *config.Settings {
	out := config.NewSettings()
	if root.Defaults != nil {
		out.Defaults = toProgram(root.Defaults.Option, root.Defaults.Verbose)
	}
	for _, p := range root.Programs {
		out.Programs[p.Name] = config.Merged(out.Programs[p.Name], toProgram(p.Option, p.Verbose))
	}
	return out
}

func toProgram(option *string, verbose *bool) config.Program {
	var p config.Program
	if option != nil {
		p.Option = *option
	}
	p.Verbose = verbose
	return p
}
