package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/flovouin/mbops/internal/catalog"
	"github.com/flovouin/mbops/internal/rpc"
	"github.com/flovouin/mbops/logger"
)

// What a command needs to run.
type commandEnv struct {
	config  *toolConfig
	catalog *catalog.Catalog
	out     io.Writer // Where human-readable summaries are written.
}

func (e *commandEnv) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(e.out, format, a...)
}

func (e *commandEnv) println(a ...any) {
	_, _ = fmt.Fprintln(e.out, a...)
}

// A subcommand of the CLI.
type command struct {
	description      string
	requiresMetabase bool // Whether the Metabase URL and credentials must be set, whatever the transport.
	run              func(ctx context.Context, env *commandEnv) error
}

var commands = map[string]command{
	"explore": {
		description: "Lists databases and the tables of the production database, and looks for common table names.",
		run:         runExplore,
	},
	"key-tables": {
		description: "Lists the fields of the key tables of the production database.",
		run:         runKeyTables,
	},
	"create-card": {
		description:      "Creates the accounts payable card from the SQL file.",
		requiresMetabase: true,
		run:              runCreateCard,
	},
	"create-dashboard": {
		description: "Checks the ROAS cards and arranges them into a new dashboard with filters.",
		run:         runCreateDashboard,
	},
}

// Returns the names of all commands, sorted.
func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Logs a failed operation, along with the status code and body of the response if the service answered.
func logCallError(msg string, operation string, err error) {
	fields := []zap.Field{zap.String("operation", operation)}

	var statusErr *rpc.StatusError
	if errors.As(err, &statusErr) {
		fields = append(fields, zap.Int("status_code", statusErr.StatusCode), zap.String("body", statusErr.Body))
	} else {
		fields = append(fields, zap.Error(err))
	}

	logger.Error(msg, fields...)
}
