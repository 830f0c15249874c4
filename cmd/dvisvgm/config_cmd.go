package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	dvisvg "github.com/alnah/go-dvisvg"
	"github.com/alnah/go-dvisvg/internal/yamlutil"
)

// runConfigCmd prints the configuration a conversion would use, after
// the config file and DVISVGM_* variables are applied.
func runConfigCmd(args []string, env *Environment) error {
	flags, _, err := parseCommonFlags("config", args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	ec := loadEnvConfig()
	cfg, err := resolveConfig(flags.config, ec)
	if err != nil {
		return err
	}
	applyEnvConfig(ec, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", dvisvg.ErrConfiguration, err)
	}
	cfg.ApplyDefaults()

	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(data)
	return err
}
