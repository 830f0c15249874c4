// Command dvisvgm converts DVI, EPS, PostScript and PDF files to SVG.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for command dispatch.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runMain(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// runMain dispatches args to a command and returns the exit code.
// Arguments that do not start with a command name are converted.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if err := loadDotEnv(dotEnvFile); err != nil {
		fmt.Fprintln(env.Stderr, "warning:", err)
	}

	args = args[1:]
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "convert":
		return exitWith(env, runConvertCmd(ctx, rest, env))
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		return exitWith(env, runConfigCmd(rest, env))
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "dvisvgm %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return exitWith(env, runHelp(rest, env))
	}

	if isCommand(cmd) {
		return exitWith(env, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd))
	}
	return exitWith(env, runConvertCmd(ctx, args, env))
}

// isCommand reports whether s looks like a command name rather than a
// flag or an input file.
func isCommand(s string) bool {
	if s == "" || s[0] == '-' {
		return false
	}
	if _, ok := kindOf(s); ok {
		return false
	}
	_, err := os.Stat(s)
	return err != nil
}

func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return runConvert(ctx, positional, flags, env)
}

// exitWith prints err, if any, and maps it to an exit code.
func exitWith(env *Environment, err error) int {
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
	}
	return exitCodeFor(err)
}
