package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/zodwire/zodwire/internal/emitter/tsemitter"
	"github.com/zodwire/zodwire/internal/gen"
	"github.com/zodwire/zodwire/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Out         string
	Filter      string
	PackageName string
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Zod validators and request templates from an OpenAPI document",
		Long: "Generate a TypeScript project of Zod validators and request templates " +
			"from an OpenAPI/Swagger document. Options can be provided via flags, " +
			"config files, or defaults.",
		Example: strings.TrimSpace(`  zodwire generate --input openapi.yaml --out ./client
  zodwire generate --input https://example.com/openapi.json --filter 'method == "GET"'
  zodwire --config zodwire.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the Swagger/OpenAPI document")
	flags.String("out", "", "Output directory (derived from the spec title when omitted)")
	flags.String("filter", "", "Expression selecting operations over method, path, tags, summary")
	flags.String("package-name", "", "Override the generated package name")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("filter") {
		value, err := flags.GetString("filter")
		if err != nil {
			return err
		}
		cfg.Filter = strings.TrimSpace(value)
	}
	if flags.Changed("package-name") {
		value, err := flags.GetString("package-name")
		if err != nil {
			return err
		}
		cfg.PackageName = strings.TrimSpace(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.Filter = strings.TrimSpace(c.Filter)
	c.PackageName = strings.TrimSpace(c.PackageName)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	// Compile the filter before touching the network so a bad expression
	// fails fast.
	filter, err := gen.CompileFilter(cfg.Filter)
	if err != nil {
		return usagef("generate: invalid --filter: %v", err)
	}

	// 1) Load the spec (file or http/https URL) with validation and conversion
	res, err := spec.Load(ctx, cfg.Input)
	if err != nil {
		// Map structured spec errors into friendly messages
		var se *spec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	// 2) Scope templates to the operations the filter keeps
	doc, err := gen.FilterDocument(res.Doc, filter)
	if err != nil {
		return usagef("generate: %v", err)
	}

	// 3) Register every named schema, then build validator modules and
	// request templates in declaration order
	reg := gen.NewRegistry(doc.Schemas)
	modules := gen.BuildSchemaModules(reg)
	templates := gen.BuildTemplates(doc)

	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Loaded %s: %d schemas, %d operations\n", res.Source, reg.Len(), len(templates))
	}

	// 4) Derive the output directory from the spec title when omitted
	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveDirName(doc.Title)
		if outDir == "" {
			outDir = "generated-client"
		}
	}

	// Ensure outDir is absolute only for display; the emitter handles actual
	// creation and writes.
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	// 5) Emit the TypeScript project
	emitRes, err := tsemitter.Emit(ctx, modules, templates, tsemitter.Options{
		OutDir:      outDir,
		PackageName: cfg.PackageName,
		Title:       doc.Title,
		Force:       cfg.Force,
		DryRun:      cfg.DryRun,
		Verbose:     cfg.Verbose,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		paths := make([]string, 0, len(emitRes.Planned))
		for _, p := range emitRes.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(emitRes.Planned), paths)
	} else if cfg.Verbose {
		fmt.Fprintf(os.Stdout, "Wrote %d files to %s\n", len(emitRes.Planned), absOut)
	}

	return nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return usagef("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg)
	}
	return err
}

func deriveDirName(title string) string {
	t := strings.TrimSpace(title)
	if t == "" {
		return ""
	}
	t = strings.ToLower(t)
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	t = repl.Replace(t)
	parts := strings.Fields(t)
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "-")
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return usagef("read config file %q: %v", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return usagef("parse config file %q: %v", path, err)
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return usagef("config field %q: %v", key, err)
			}
			cfg.Input = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return usagef("config field %q: %v", key, err)
			}
			cfg.Out = str
		case "filter":
			str, err := valueAsString(value)
			if err != nil {
				return usagef("config field %q: %v", key, err)
			}
			cfg.Filter = str
		case "packagename":
			str, err := valueAsString(value)
			if err != nil {
				return usagef("config field %q: %v", key, err)
			}
			cfg.PackageName = str
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return usagef("config field %q: %v", key, err)
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return usagef("config field %q: %v", key, err)
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return usagef("config field %q: %v", key, err)
			}
			cfg.Verbose = val
		default:
			return usagef("config file %q: unknown field %q", path, key)
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
