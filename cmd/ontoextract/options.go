// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/ontoextract/internal/acquire"
	"github.com/pdiddy/ontoextract/internal/engine"
	"github.com/pdiddy/ontoextract/internal/llm"
	"github.com/pdiddy/ontoextract/internal/pipeline"
	"github.com/pdiddy/ontoextract/internal/search"
	"github.com/pdiddy/ontoextract/internal/secrets"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// keyExtraction is the config-file section holding extraction defaults.
const keyExtraction = "extraction"

// extractOptions holds the flags every extraction command shares.
type extractOptions struct {
	cfg       types.ExtractionConfig
	inputFile string
	noRecurse bool
	output    string
	format    string
	setSlots  []string

	flags *pflag.FlagSet
}

// register adds the shared flags to cmd.
func (o *extractOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	o.flags = f
	f.StringVarP(&o.cfg.Template, "template", "t", "", "template name or path; NAME.Class selects another root class")
	f.StringVarP(&o.cfg.TargetClass, "target-class", "T", "", "class to extract instead of the template root")
	f.StringVarP(&o.cfg.Model, "model", "m", "", "model name (default from config, else "+llm.DefaultModel+")")
	f.BoolVar(&o.cfg.Recurse, "recurse", true, "extract nested objects with their own prompts")
	f.BoolVar(&o.noRecurse, "no-recurse", false, "same as --recurse=false")
	f.StringVarP(&o.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&o.format, "output-format", "O", string(types.DefaultOutputFormat), "output format: "+types.FormatNames())
	f.StringArrayVarP(&o.setSlots, "set-slot-value", "S", nil, "set a slot after extraction, as slot=value; an empty value clears it (repeatable)")
	f.StringVar(&o.cfg.Dictionary, "dictionary", "", "term to identifier dictionary (YAML or TSV) used for grounding")
	f.StringVar(&o.cfg.AutoPrefix, "auto-prefix", engine.DefaultAutoPrefix, "CURIE prefix for values no dictionary entry grounds")
	f.BoolVar(&o.cfg.Interactive, "interactive", false, "type each completion yourself instead of calling the model")
	_ = cmd.MarkFlagRequired("template")
	_ = f.MarkHidden("no-recurse")
}

// registerInputFile adds --inputfile for commands that read local text.
func (o *extractOptions) registerInputFile(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.inputFile, "inputfile", "i", "", "read input text from this file")
}

// changed reports whether the named flag was given on the command line.
func (o *extractOptions) changed(name string) bool {
	return o.flags != nil && o.flags.Changed(name)
}

// config returns the invocation's extraction config. Flags given on the
// command line win over the "extraction" section of the config file, which
// wins over flag defaults.
func (o *extractOptions) config(a *app) (types.ExtractionConfig, error) {
	var file types.ExtractionConfig
	if err := viper.UnmarshalKey(keyExtraction, &file, yamlTags); err != nil {
		return types.ExtractionConfig{}, fmt.Errorf("reading %s config: %w", keyExtraction, err)
	}

	cfg := o.cfg
	pick := func(flag string, dst *string, fromFile string) {
		if !o.changed(flag) && fromFile != "" {
			*dst = fromFile
		}
	}
	pick("model", &cfg.Model, file.Model)
	pick("dictionary", &cfg.Dictionary, file.Dictionary)
	pick("auto-prefix", &cfg.AutoPrefix, file.AutoPrefix)
	if !o.changed("recurse") && viper.IsSet(keyExtraction+".recurse") {
		cfg.Recurse = file.Recurse
	}
	if !o.changed("interactive") && file.Interactive {
		cfg.Interactive = true
	}
	if o.noRecurse {
		cfg.Recurse = false
	}

	cfg.Model = modelName(cfg.Model)
	cfg.MaxRetries = file.MaxRetries
	cfg.APIKey, cfg.BaseURL = providerCredentials(a, cfg.Model)
	if file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	return cfg, nil
}

// yamlTags decodes config sections through the yaml tags of pkg/types.
func yamlTags(c *mapstructure.DecoderConfig) {
	c.TagName = "yaml"
	c.Squash = true
}

// newEngine builds the extraction engine for the invocation, applying the
// process Settings during construction.
func (o *extractOptions) newEngine(ctx context.Context, a *app) (engine.Engine, error) {
	cfg, err := o.config(a)
	if err != nil {
		return nil, err
	}
	return engine.New(ctx, engine.KindSPIRES, cfg.Template, engine.Options{
		Model:       cfg.Model,
		Recurse:     cfg.Recurse,
		Settings:    a.settings,
		Templates:   a.templates,
		Interactive: cfg.Interactive,
		Dictionary:  cfg.Dictionary,
		AutoPrefix:  cfg.AutoPrefix,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		MaxRetries:  cfg.MaxRetries,
		HTTPClient:  a.client,
	})
}

// run builds the engine, then acquires, extracts and writes through the
// pipeline. source is called after the engine exists so keyword sources
// can read the template's keywords.
func (o *extractOptions) run(cmd *cobra.Command, source func(e engine.Engine) (acquire.Source, error), after func(*types.ExtractionResult)) error {
	ctx := cmd.Context()
	a := appFrom(cmd)

	e, err := o.newEngine(ctx, a)
	if err != nil {
		return err
	}
	defer engine.Close(e)

	src, err := source(e)
	if err != nil {
		return err
	}

	out, closeOut := openOutput(cmd, o.output)
	_, err = pipeline.Run(ctx, pipeline.Invocation{
		Engine:      e,
		Source:      src,
		TargetClass: o.cfg.TargetClass,
		Overrides:   o.setSlots,
		Format:      o.format,
		Output:      out,
		After:       after,
	})
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

// templateKeywords merges user keywords with the keywords of e's template.
func templateKeywords(e engine.Engine, user []string) []string {
	var fromTemplate []string
	if sv, err := engine.As[engine.SchemaViewer](e); err == nil {
		fromTemplate = sv.SchemaView().Keywords()
	}
	return search.MergeKeywords(user, fromTemplate)
}

func modelName(flag string) string {
	if flag != "" {
		return flag
	}
	return viper.GetString(keyModel)
}

// providerCredentials returns the API key and base URL for the backend
// that serves model.
func providerCredentials(a *app, model string) (apiKey, baseURL string) {
	cfg := llm.Config{Model: model}
	if cfg.Provider() == llm.ProviderAnthropic {
		return a.secrets.Get(secrets.AnthropicAPIKey), viper.GetString(keyAnthropicBaseURL)
	}
	return a.secrets.Get(secrets.OpenAIAPIKey), viper.GetString(keyOpenAIBaseURL)
}

// lazyFile creates its file on the first write, so a failed command leaves
// no empty output file behind.
type lazyFile struct {
	path string
	f    *os.File
}

func (l *lazyFile) Write(p []byte) (int, error) {
	if l.f == nil {
		f, err := os.Create(l.path)
		if err != nil {
			return 0, fmt.Errorf("creating output file: %w", err)
		}
		l.f = f
	}
	return l.f.Write(p)
}

func (l *lazyFile) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}

// openOutput returns the sink for path; empty or "-" is the command's
// stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }
	}
	lf := &lazyFile{path: path}
	return lf, lf.Close
}
