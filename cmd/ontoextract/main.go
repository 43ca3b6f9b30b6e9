// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ontoextract CLI. Each source of
// input text is its own subcommand; all of them share the engine, override
// and output flags registered in options.go.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ontoextract/internal/secrets"
	"github.com/pdiddy/ontoextract/internal/template"
	"github.com/pdiddy/ontoextract/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Viper keys.
const (
	keyModel            = "model"
	keyCacheDB          = "cache_db"
	keySkipAnnotators   = "skip_annotators"
	keyTemplatesDir     = "templates_dir"
	keyAnthropicBaseURL = "anthropic_base_url"
	keyOpenAIBaseURL    = "openai_base_url"
	keyHTTPTimeout      = "http_timeout"
	keyUserAgent        = "user_agent"
)

// app is what PersistentPreRunE builds once per process and every
// subcommand reads from its context.
type app struct {
	settings  *types.Settings
	secrets   secrets.Secrets
	templates *template.Registry
	http      types.HTTPConfig
	client    *http.Client
}

type appKey struct{}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// appFrom returns the app attached by the root command. Commands run
// outside Execute (tests) get one built from defaults.
func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
		return a
	}
	return newApp(&types.Settings{}, secrets.Secrets{}, nil)
}

func newApp(settings *types.Settings, s secrets.Secrets, templateDirs []string) *app {
	hc := types.HTTPConfig{
		Timeout:   viper.GetDuration(keyHTTPTimeout),
		UserAgent: viper.GetString(keyUserAgent),
	}
	if hc.Timeout <= 0 {
		hc.Timeout = 60 * time.Second
	}
	if hc.UserAgent == "" {
		hc.UserAgent = "ontoextract/" + version
	}
	return &app{
		settings:  settings,
		secrets:   s,
		templates: template.NewRegistry(templateDirs...),
		http:      hc,
		client:    &http.Client{Timeout: hc.Timeout},
	}
}

var rootCmd = &cobra.Command{
	Use:   "ontoextract",
	Short: "Extract structured knowledge from text with schema templates",
	Long: `ontoextract fills a schema template from free text with a language model.

Each subcommand takes its text from a different place (a file, a PubMed
article, a Wikipedia page, a web page, a recipe) and writes the extracted
object in one of several formats: ` + types.FormatNames() + `.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debug().Strs("keys", keys).Msg("loaded secrets")
		}

		settings := &types.Settings{}
		settings.Set(viper.GetString(keyCacheDB), viper.GetStringSlice(keySkipAnnotators))

		var dirs []string
		if d := viper.GetString(keyTemplatesDir); d != "" {
			dirs = append(dirs, d)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(withApp(ctx, newApp(settings, s, dirs)))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./ontoextract.yaml or ~/.config/ontoextract/ontoextract.yaml)")
	pf.CountP("verbose", "v", "increase log verbosity (-v info, -vv debug)")
	pf.BoolP("quiet", "q", false, "only log errors")
	pf.String("cache-db", "", "SQLite file caching model completions")
	pf.StringArray("skip-annotator", nil, "annotator to skip during grounding (repeatable)")
	pf.String("templates-dir", "", "directory searched for templates before the built-in ones")

	_ = viper.BindPFlag(keyCacheDB, pf.Lookup("cache-db"))
	_ = viper.BindPFlag(keySkipAnnotators, pf.Lookup("skip-annotator"))
	_ = viper.BindPFlag(keyTemplatesDir, pf.Lookup("templates-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ontoextract")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ontoextract"))
		}
	}

	viper.SetEnvPrefix("ONTOEXTRACT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug().Str("file", viper.ConfigFileUsed()).Msg("using config file")
	}
}

// setupLogging maps -v/-q onto the global zerolog level: warn by default,
// info with -v, debug with -vv, error with -q.
func setupLogging(cmd *cobra.Command) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339})

	verbose, _ := cmd.Flags().GetCount("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose >= 2:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case verbose == 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
