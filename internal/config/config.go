// Package config loads the service settings. Sources are layered, lowest
// priority first: built-in defaults, a JSON or YAML config file, the
// environment (optionally seeded from a .env file) and command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/patric-chuzhbe/usuaris/internal/models"
)

// Config holds every setting of the service.
type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" json:"server_address" yaml:"server_address" validate:"hostname_port"`
	GRPCRunAddr         string        `env:"GRPC_SERVER_ADDRESS" json:"grpc_server_address" yaml:"grpc_server_address" validate:"omitempty,hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" json:"log_level" yaml:"log_level" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" yaml:"file_storage_path" validate:"omitempty,filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn" yaml:"database_dsn"`
	MySQLDSN            string        `env:"MYSQL_DSN" json:"mysql_dsn" yaml:"mysql_dsn"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"-" yaml:"-"`
	AttributeName       string        `env:"ATTRIBUTE_NAME" json:"attribute_name" yaml:"attribute_name" validate:"attrname"`
	IDPolicy            string        `env:"ID_POLICY" json:"id_policy" yaml:"id_policy" validate:"oneof=length monotonic"`
	APIDocs             string        `env:"API_DOCS" json:"api_docs" yaml:"api_docs" validate:"oneof=none static generated"`
	TrustedSubnet       string        `env:"TRUSTED_SUBNET" json:"trusted_subnet" yaml:"trusted_subnet" validate:"omitempty,cidr"`
	SkipSeed            bool          `env:"SKIP_SEED" json:"skip_seed" yaml:"skip_seed"`
	ConfigFile          string        `env:"CONFIG" json:"-" yaml:"-"`
}

const (
	APIDocsNone      = "none"
	APIDocsStatic    = "static"
	APIDocsGenerated = "generated"
)

var defaultConfig = Config{
	RunAddr:             ":3000",
	GRPCRunAddr:         "",
	LogLevel:            "info",
	DBFileName:          "",
	DatabaseDSN:         "",
	MySQLDSN:            "",
	DBConnectionTimeout: 10 * time.Second,
	AttributeName:       models.DefaultAttributeName,
	IDPolicy:            models.IDPolicyLength,
	APIDocs:             APIDocsGenerated,
	TrustedSubnet:       "",
	SkipSeed:            false,
}

var attrNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

var errUnsupportedConfigFile = errors.New("unsupported config file extension")

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func validateAttrName(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	return attrNamePattern.MatchString(value) && value != "id" && value != "nom"
}

func (c *Config) validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	if err := validate.RegisterValidation("filepath", validateFilePath); err != nil {
		return err
	}

	if err := validate.RegisterValidation("attrname", validateAttrName); err != nil {
		return err
	}

	return validate.Struct(c)
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

// WithDisableFlagsParsing skips command-line parsing, for tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs replaces os.Args[1:] as the source of flags.
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

// New builds the configuration from all sources and validates it.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	var valuesFromFlags Config
	if !options.disableFlagsParsing {
		if err := parseFlags(&valuesFromFlags, options.args); err != nil {
			return nil, err
		}
	}

	var valuesFromEnv Config
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	values := defaultConfig

	configFile := firstNonEmpty(valuesFromFlags.ConfigFile, valuesFromEnv.ConfigFile)
	if configFile != "" {
		valuesFromFile, err := loadFile(configFile)
		if err != nil {
			return nil, err
		}
		values.override(valuesFromFile)
		values.ConfigFile = configFile
	}

	values.override(&valuesFromEnv)
	values.override(&valuesFromFlags)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}

func parseFlags(values *Config, args []string) error {
	flags := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)

	flags.StringVar(&values.RunAddr, "a", "", "address and port to run the HTTP server")
	flags.StringVar(&values.GRPCRunAddr, "g", "", "address and port to run the gRPC server")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.DBFileName, "f", "", "JSON file name with the records")
	flags.StringVar(&values.DatabaseDSN, "d", "", "PostgreSQL connection string")
	flags.StringVar(&values.MySQLDSN, "m", "", "MySQL connection string")
	flags.StringVar(&values.AttributeName, "attr", "", "name of the numeric record attribute")
	flags.StringVar(&values.IDPolicy, "id-policy", "", "id assignment policy: length or monotonic")
	flags.StringVar(&values.APIDocs, "docs", "", "API description mode: none, static or generated")
	flags.StringVar(&values.TrustedSubnet, "t", "", "CIDR allowed to read internal stats")
	flags.BoolVar(&values.SkipSeed, "skip-seed", false, "do not insert the initial records")
	flags.StringVar(&values.ConfigFile, "c", "", "path to a JSON or YAML config file")
	flags.StringVar(&values.ConfigFile, "config", "", "path to a JSON or YAML config file")

	return flags.Parse(args)
}

func loadFile(fileName string) (*Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/loadFile(): error while `os.ReadFile()` calling: %w", err)
	}

	var result Config
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		err = json.Unmarshal(data, &result)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &result)
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedConfigFile, fileName)
	}
	if err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/loadFile(): error while parsing %s: %w", fileName, err)
	}

	return &result, nil
}

// override copies every non-zero field of src over c.
func (c *Config) override(src *Config) {
	if src.RunAddr != "" {
		c.RunAddr = src.RunAddr
	}

	if src.GRPCRunAddr != "" {
		c.GRPCRunAddr = src.GRPCRunAddr
	}

	if src.LogLevel != "" {
		c.LogLevel = src.LogLevel
	}

	if src.DBFileName != "" {
		c.DBFileName = src.DBFileName
	}

	if src.DatabaseDSN != "" {
		c.DatabaseDSN = src.DatabaseDSN
	}

	if src.MySQLDSN != "" {
		c.MySQLDSN = src.MySQLDSN
	}

	if src.DBConnectionTimeout != 0 {
		c.DBConnectionTimeout = src.DBConnectionTimeout
	}

	if src.AttributeName != "" {
		c.AttributeName = src.AttributeName
	}

	if src.IDPolicy != "" {
		c.IDPolicy = src.IDPolicy
	}

	if src.APIDocs != "" {
		c.APIDocs = src.APIDocs
	}

	if src.TrustedSubnet != "" {
		c.TrustedSubnet = src.TrustedSubnet
	}

	if src.SkipSeed {
		c.SkipSeed = true
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
