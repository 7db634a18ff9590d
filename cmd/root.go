package cmd

import (
	"github.com/spf13/cobra"

	"github.com/telhawk-systems/jsonapi-provider/internal/config"
	"github.com/telhawk-systems/jsonapi-provider/internal/logging"
	"github.com/telhawk-systems/jsonapi-provider/internal/requestid"
	"github.com/telhawk-systems/jsonapi-provider/pkg/dataprovider"
	"github.com/telhawk-systems/jsonapi-provider/pkg/output"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jap",
	Short: "JSON:API data provider CLI",
	Long: `jap talks to any JSON:API server through the seven data-provider verbs.

List, fetch, create, update and delete resources from your terminal and get
flat records back, with related resources from "included" embedded in place.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		output.Error("%v", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.jap/config.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "profile to use (default: current profile)")
	rootCmd.PersistentFlags().String("output", "table", "output format: table, json")
	rootCmd.PersistentFlags().String("url", "", "API base URL, overrides the profile")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		output.Warn("Ignoring config: %v", err)
		cfg = config.Default()
	}
}

// activeProfile resolves --profile against the config and applies --url.
func activeProfile(cmd *cobra.Command) (*config.Profile, error) {
	name, _ := cmd.Flags().GetString("profile")
	p, err := cfg.GetProfile(name)
	if err != nil {
		return nil, err
	}
	if u, _ := cmd.Flags().GetString("url"); u != "" {
		p.BaseURL = u
	}
	return p, nil
}

func newLogger(cmd *cobra.Command) *logging.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	if level == "" {
		level = cfg.Logging.Level
	}
	format, _ := cmd.Flags().GetString("log-format")
	if format == "" {
		format = cfg.Logging.Format
	}
	return logging.New(logging.ParseLevel(level), format)
}

// runVerb performs one verb call with the active profile and prints the result.
func runVerb(cmd *cobra.Command, verb dataprovider.Verb, resource string, params dataprovider.Params) error {
	p, err := activeProfile(cmd)
	if err != nil {
		return err
	}

	ctx, _ := requestid.Ensure(cmd.Context())
	logger := newLogger(cmd).With(logging.Command(cmd.CommandPath()), logging.BaseURL(p.BaseURL))
	logger.DebugContext(ctx, "running verb", logging.Verb(string(verb)), logging.Resource(resource))
	client := p.NewClient(logger)

	res, err := client.Do(ctx, verb, resource, params)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("output")
	return output.Result(res, format)
}
