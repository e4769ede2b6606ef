// main.go bootstraps csvtok: it builds the root Cobra command, binds flags to
// CSVTOK_ environment variables and an optional config file, and executes with
// a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shapestone/shape-csvstream/pkg/csv"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(os.Stderr, err)
	if err != nil {
		os.Exit(1)
	}
}

// bindViper fills every flag of cmd the user did not set from CSVTOK_*
// environment variables or the config file. It runs from the root
// PersistentPreRunE so it sees the command actually being executed.
func bindViper(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("CSVTOK")
	v.AutomaticEnv()

	configFile := os.Getenv("CSVTOK_CONFIG")
	if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
		configFile = f.Value.String()
	}
	configureConfigFile(v, configFile)

	flagSets := []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()}
	for _, fs := range flagSets {
		if err := v.BindPFlags(fs); err != nil {
			return err
		}
	}
	if err := readConfigFile(v, configFile != ""); err != nil {
		return err
	}

	var setErr error
	for _, fs := range flagSets {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) || setErr != nil {
				return
			}
			val := v.Get(f.Name)
			if list, ok := val.([]interface{}); ok {
				parts := make([]string, len(list))
				for i, p := range list {
					parts[i] = fmt.Sprintf("%v", p)
				}
				val = strings.Join(parts, ",")
			}
			if s := fmt.Sprintf("%v", val); s != "" && s != f.Value.String() {
				if err := f.Value.Set(s); err != nil {
					setErr = fmt.Errorf("config %s: %w", f.Name, err)
				}
			}
		})
	}
	return setErr
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("csvtok")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "csvtok"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "csvtok"))
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func handleError(w io.Writer, err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	var optErr *csv.OptionsError
	switch {
	case errors.As(err, &optErr):
		message = fmt.Sprintf("%s\nHint: check --delimiter, --quote, --escape and --comment; they must be distinct single characters.", err)
	case errors.Is(err, csv.ErrMissingField):
		message = fmt.Sprintf("%s\nHint: pass --missing empty or --missing null to pad short records.", err)
	case errors.Is(err, context.Canceled):
		message = "interrupted"
	}
	fmt.Fprintf(w, "Error: %s\n", message)
}
