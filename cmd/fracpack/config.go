package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oy3o/fracpack"
	"github.com/oy3o/fracpack/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultMaxInput = 16 << 20

// Config is the command configuration, read from fracpack.yaml, FRACPACK_*
// environment variables and flags, in increasing precedence.
type Config struct {
	Format                  string `mapstructure:"format"`
	TolerateUnknownVariants bool   `mapstructure:"tolerate_unknown_variants"`
	MaxInput                int64  `mapstructure:"max_input"`
	Verbose                 bool   `mapstructure:"verbose"`
}

// app is the state shared by the subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *Config
	format     schema.Format
	log        *zap.Logger
}

func newApp() *app {
	return &app{v: viper.New(), log: zap.NewNop()}
}

func (a *app) bindFlags(flags *pflag.FlagSet) {
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("tolerate_unknown_variants", flags.Lookup("tolerate-unknown-variants"))
	_ = a.v.BindPFlag("max_input", flags.Lookup("max-input"))
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.format, err = schema.ParseFormat(cfg.Format)
	if err != nil {
		return fmt.Errorf("config format: %w", err)
	}
	a.log, err = newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	fracpack.SetLogger(a.log)
	a.log.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("config_file", a.v.ConfigFileUsed()),
		zap.String("format", cfg.Format),
		zap.Bool("tolerate_unknown_variants", cfg.TolerateUnknownVariants),
		zap.Int64("max_input", cfg.MaxInput))
	return nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

// loadConfig reads the configuration. A missing config file is not an error
// unless it was named explicitly.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	v.SetDefault("format", string(schema.FormatJSON))
	v.SetDefault("tolerate_unknown_variants", false)
	v.SetDefault("max_input", defaultMaxInput)
	v.SetDefault("verbose", false)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fracpack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fracpack"))
		}
	}

	v.SetEnvPrefix("FRACPACK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.MaxInput <= 0 {
		return nil, fmt.Errorf("max_input must be positive, got %d", cfg.MaxInput)
	}
	return &cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// codec returns the fracpack codec for the configured decode policy.
func (a *app) codec() *fracpack.Codec {
	return fracpack.New(fracpack.Options{TolerateUnknownVariants: a.cfg.TolerateUnknownVariants})
}

// readInput reads the named file, or stdin for no name or "-", up to max_input bytes.
func (a *app) readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	var src io.Reader = cmd.InOrStdin()
	name := "<stdin>"
	if len(args) > 0 && args[0] != "-" {
		name = args[0]
		f, err := os.Open(name)
		if err != nil {
			return nil, name, err
		}
		defer f.Close()
		src = f
	}
	data, err := fracpack.ReadAll(src, a.cfg.MaxInput)
	if err != nil {
		return nil, name, fmt.Errorf("%s: %w", name, err)
	}
	a.log.Debug("input read", zap.String("name", name), zap.Int("bytes", len(data)))
	return data, name, nil
}
