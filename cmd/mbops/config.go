package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	"github.com/flovouin/mbops/internal/catalog"
	"github.com/flovouin/mbops/internal/plans"
	"github.com/flovouin/mbops/internal/rpc"
)

// The prefix for all environment variables to consider when loading the configuration.
// Levels are separated by a double underscore, e.g. `MBOPS_METABASE__API_KEY`.
const environmentVariablesPrefix = "MBOPS_"

const environmentVariablesLevelSeparator = "__"

// The default location of the configuration file.
const defaultConfigFilePath = "mbops.yml"

// The supported transports for remote operations.
const (
	transportREST    = "rest"
	transportJSONRPC = "jsonrpc"
)

// Variables read from the settings file and the process environment, and the configuration keys they set.
var settingsVariables = map[string]string{
	"METABASE_URL":      "metabase.url",
	"METABASE_API_KEY":  "metabase.api_key",
	"METABASE_TOKEN":    "metabase.token",
	"METABASE_USERNAME": "metabase.username",
	"METABASE_PASSWORD": "metabase.password",
	"MCP_URL":           "mcp.url",
	"LOG_LEVEL":         "log_level",
}

// The configuration used to call the Metabase API.
type metabaseConfig struct {
	Url      string `koanf:"url"`      // The URL of the Metabase site. The `/api` suffix is optional.
	ApiKey   string `koanf:"api_key"`  // A static API key, sent in the `X-Api-Key` header.
	Token    string `koanf:"token"`    // A bearer token, used if no API key is set.
	Username string `koanf:"username"` // The username (email address) to log in with, if no API key or token is set.
	Password string `koanf:"password"` // The password to log in with.
}

// The configuration used to call the MCP server, when using the JSON-RPC transport.
type mcpConfig struct {
	Url  string `koanf:"url"`  // The URL of the MCP server.
	Path string `koanf:"path"` // The path of the JSON-RPC endpoint.
}

// Defines a reference to a collection in Metabase.
type collectionDefinition struct {
	Id   int    `koanf:"id"`   // The ID of the collection in the Metabase API. Can be omitted (0) if the name is provided.
	Name string `koanf:"name"` // A regexp the collection name should match. Can be omitted ("") if the ID is provided.
}

// Configures the exploration of the production database.
type exploreConfig struct {
	ProductionDatabaseId int      `koanf:"production_database_id"` // The database used if none is named after production.
	KeyTables            []string `koanf:"key_tables"`             // The tables for which fields are listed.
	CandidateTables      []string `koanf:"candidate_tables"`       // The table names looked up in the database metadata.
}

// Configures the creation of the accounts payable card.
type cardConfig struct {
	SqlFile             string                 `koanf:"sql_file"`             // The file containing the SQL of the card.
	DatabaseId          int                    `koanf:"database_id"`          // The database the card runs against.
	IncludedCollections []collectionDefinition `koanf:"included_collections"` // The collections in which the card can be created. The first match is used.
	ExcludedCollections []collectionDefinition `koanf:"excluded_collections"` // The collections in which the card should never be created.
}

// Configures the creation of the ROAS dashboard.
type dashboardConfig struct {
	CollectionId    int    `koanf:"collection_id"`     // The collection in which the dashboard is created.
	CardCheckPolicy string `koanf:"card_check_policy"` // What to do when cards do not return data: `warn`, `abort` or `skip`.
}

// The entire configuration of the operator commands.
type toolConfig struct {
	Transport string          `koanf:"transport"` // Either `rest` or `jsonrpc`.
	EnvFile   string          `koanf:"env_file"`  // The settings file from which `METABASE_*` variables are read.
	LogLevel  string          `koanf:"log_level"` // The level of logs written to stderr.
	Metabase  metabaseConfig  `koanf:"metabase"`  // The configuration used to call the Metabase API.
	MCP       mcpConfig       `koanf:"mcp"`       // The configuration used to call the MCP server.
	Explore   exploreConfig   `koanf:"explore"`   // Configures the exploration of the production database.
	Card      cardConfig      `koanf:"card"`      // Configures the creation of the accounts payable card.
	Dashboard dashboardConfig `koanf:"dashboard"` // Configures the creation of the ROAS dashboard.
}

func defaultConfig() toolConfig {
	included := make([]collectionDefinition, 0, len(plans.FinancialCollections))
	for _, c := range plans.FinancialCollections {
		included = append(included, collectionDefinition{Id: c.Id, Name: c.Name})
	}

	return toolConfig{
		Transport: transportREST,
		EnvFile:   ".env",
		LogLevel:  "info",
		MCP: mcpConfig{
			Url:  "http://localhost:8000",
			Path: rpc.DefaultMCPPath,
		},
		Explore: exploreConfig{
			ProductionDatabaseId: plans.ProductionDatabaseId,
			KeyTables:            plans.KeyTables,
			CandidateTables:      plans.CandidateTables,
		},
		Card: cardConfig{
			SqlFile:             "reports/monthly/accounts_payable_query.sql",
			DatabaseId:          plans.ProductionDatabaseId,
			IncludedCollections: included,
		},
		Dashboard: dashboardConfig{
			CollectionId:    plans.RoasCollectionId,
			CardCheckPolicy: string(catalog.CardCheckWarn),
		},
	}
}

// Reads the settings variables from the settings file, overridden by the process environment.
// A missing settings file is not an error.
func loadSettingsVariables(path string) (map[string]interface{}, error) {
	values := make(map[string]interface{})

	if len(path) > 0 {
		var settings = koanf.New(".")
		err := settings.Load(file.Provider(path), dotenv.Parser())
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading settings file '%s': %w", path, err)
		}

		for variable, key := range settingsVariables {
			if v := settings.String(variable); len(v) > 0 {
				values[key] = v
			}
		}
	}

	for variable, key := range settingsVariables {
		if v, ok := os.LookupEnv(variable); ok && len(v) > 0 {
			values[key] = v
		}
	}

	return values, nil
}

func environmentKey(s string) string {
	return strings.Replace(strings.ToLower(
		strings.TrimPrefix(s, environmentVariablesPrefix)), environmentVariablesLevelSeparator, ".", -1)
}

// Loads the `toolConfig` from the defaults, the config file, the settings file and the environment, in increasing
// order of precedence.
func loadConfig(configFilePath string) (*toolConfig, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil)
	if err != nil {
		return nil, err
	}

	if len(configFilePath) == 0 {
		configFilePath = defaultConfigFilePath
	}

	err = k.Load(file.Provider(configFilePath), yaml.Parser())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// The location of the settings file can itself be set from the environment.
	envFile := k.String("env_file")
	if v, ok := os.LookupEnv(environmentVariablesPrefix + "ENV_FILE"); ok {
		envFile = v
	}

	settings, err := loadSettingsVariables(envFile)
	if err != nil {
		return nil, err
	}

	err = k.Load(confmap.Provider(settings, "."), nil)
	if err != nil {
		return nil, err
	}

	err = k.Load(env.Provider(environmentVariablesPrefix, ".", environmentKey), nil)
	if err != nil {
		return nil, err
	}

	var conf toolConfig
	err = k.Unmarshal("", &conf)
	if err != nil {
		return nil, err
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

// Checks the values that do not depend on the command being run.
func (c *toolConfig) validate() error {
	switch c.Transport {
	case transportREST, transportJSONRPC:
	default:
		return fmt.Errorf("unknown transport '%s', expected %s or %s", c.Transport, transportREST, transportJSONRPC)
	}

	if _, err := catalog.ParseCardCheckPolicy(c.Dashboard.CardCheckPolicy); err != nil {
		return err
	}

	for _, d := range append(c.Card.IncludedCollections, c.Card.ExcludedCollections...) {
		if d.Id <= 0 && len(d.Name) == 0 {
			return errors.New("collection ID or name should be specified")
		}
	}

	return nil
}

// Converts collection definitions from the configuration.
func toCollectionDefinitions(config []collectionDefinition) []catalog.CollectionDefinition {
	definitions := make([]catalog.CollectionDefinition, 0, len(config))
	for _, d := range config {
		definitions = append(definitions, catalog.CollectionDefinition{Id: d.Id, Name: d.Name})
	}
	return definitions
}
