package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/flovouin/mbops/internal/catalog"
	"github.com/flovouin/mbops/logger"
)

func usage(flags *flag.FlagSet) string {
	var b strings.Builder
	b.WriteString("usage: mbops [-config mbops.yml] <command>\n\ncommands:\n")
	for _, name := range commandNames() {
		fmt.Fprintf(&b, "  %-18s %s\n", name, commands[name].description)
	}
	b.WriteString("\nflags:\n")
	flags.SetOutput(&b)
	flags.PrintDefaults()
	return b.String()
}

// Runs the command line.
func run(ctx context.Context, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("mbops", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	configFilePath := flags.String("config", defaultConfigFilePath, "the path to the YAML configuration file")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage(flags))
	}

	if flags.NArg() != 1 {
		return fmt.Errorf("expected exactly one command\n%s", usage(flags))
	}

	name := flags.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command '%s'\n%s", name, usage(flags))
	}

	config, err := loadConfig(*configFilePath)
	if err != nil {
		return err
	}

	if err := logger.SetLevel(config.LogLevel); err != nil {
		return err
	}
	logger.Debug("configuration loaded",
		zap.String("command", name),
		zap.String("config_file", *configFilePath),
		zap.String("transport", config.Transport))

	if cmd.requiresMetabase {
		if err := validateMetabaseConfig(config.Metabase); err != nil {
			return err
		}
	}

	caller, err := makeCaller(ctx, config)
	if err != nil {
		return err
	}

	return cmd.run(ctx, &commandEnv{
		config:  config,
		catalog: catalog.New(caller),
		out:     out,
	})
}

// The main entrypoint.
func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout)
	logger.Sync()
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}
