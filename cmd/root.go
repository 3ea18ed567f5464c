package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ratedesk/internal/ratetable"

	"github.com/joho/godotenv"
)

// Environment variables read by ParseFlags.
const (
	EnvData     = "RATEDESK_DATA"
	EnvDB       = "RATEDESK_DB"
	EnvCategory = "RATEDESK_CATEGORY"
	EnvLogLevel = "RATEDESK_LOG_LEVEL"
	EnvLogFile  = "RATEDESK_LOG_FILE"
)

// Config holds CLI configuration.
type Config struct {
	ConfigDir  string
	DataPath   string
	DBPath     string
	Category   ratetable.Category
	Search     string
	SortKey    ratetable.SortKey
	SortDir    ratetable.Direction
	Export     string
	ExportPath string
	LogLevel   string
	LogFile    string

	ShowVersion bool

	categoryChosen bool
}

// ParseFlags parses command-line flags and returns configuration. It may run
// the first-run setup screen when nothing is configured yet.
func ParseFlags() (*Config, error) {
	// Load .env files first so env-based defaults work with existing flag parsing.
	// Real environment variables are never overridden.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	config, err := Parse(flag.CommandLine, os.Args[1:], filepath.Join(home, ".ratedesk"))
	if err != nil {
		return nil, err
	}
	if config.ShowVersion {
		return config, nil
	}

	if err := os.MkdirAll(config.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	settings, err := loadOnboardingSettings(config.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if shouldRunOnboarding(settings, config) && isTerminal() {
		settings, err = runOnboarding(config.ConfigDir)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
	}
	config.applyOnboarding(settings)

	return config, nil
}

// Parse resolves configuration from args, the environment, the YAML file
// and defaults, in that order of precedence.
func Parse(fs *flag.FlagSet, args []string, configDir string) (*Config, error) {
	var (
		data, dbPath, configPath, category, search, sortArg string
		export, exportPath, logLevel, logFile                string
		showVersion                                          bool
	)

	fs.StringVar(&data, "data", "", "Rates dataset to import, .csv or .json (or set "+EnvData+")")
	fs.StringVar(&dbPath, "db", "", "Path to SQLite cache (default: ~/.ratedesk/ratedesk.db)")
	fs.StringVar(&configPath, "config", "", "Path to YAML config (default: ~/.ratedesk/config.yaml)")
	fs.StringVar(&category, "category", "", "Initial loan type: "+categoryList())
	fs.StringVar(&search, "search", "", "Initial institution name search")
	fs.StringVar(&sortArg, "sort", "", "Initial sort: name|link|bestprogram|bestrate[:asc|desc]")
	fs.StringVar(&export, "export", "", "Write the table as HTML to this path and exit")
	fs.StringVar(&exportPath, "export-path", "", "Target of the in-app export key (default: mortgage_rates.html)")
	fs.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&logFile, "log-file", "", "Log file (default: ~/.ratedesk/ratedesk.log)")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if configPath == "" {
		configPath = filepath.Join(configDir, "config.yaml")
	}
	fc, err := LoadFileConfig(configPath, set["config"])
	if err != nil {
		return nil, err
	}

	pick := func(name, flagVal, envKey, fileVal, def string) (string, bool) {
		if set[name] {
			return strings.TrimSpace(flagVal), true
		}
		if envKey != "" {
			if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
				return v, true
			}
		}
		if v := strings.TrimSpace(fileVal); v != "" {
			return v, true
		}
		return def, false
	}
	value := func(name, flagVal, envKey, fileVal, def string) string {
		v, _ := pick(name, flagVal, envKey, fileVal, def)
		return v
	}

	config := &Config{
		ConfigDir:   configDir,
		DataPath:    value("data", data, EnvData, fc.Data, ""),
		DBPath:      value("db", dbPath, EnvDB, fc.DB, filepath.Join(configDir, "ratedesk.db")),
		Search:      value("search", search, "", fc.Search, ""),
		Export:      strings.TrimSpace(export),
		ExportPath:  value("export-path", exportPath, "", fc.ExportPath, "mortgage_rates.html"),
		LogLevel:    value("log-level", logLevel, EnvLogLevel, fc.LogLevel, "info"),
		ShowVersion: showVersion,
	}

	// Headless export logs to stderr unless a file was asked for.
	defaultLog := filepath.Join(configDir, "ratedesk.log")
	if config.Export != "" {
		defaultLog = ""
	}
	config.LogFile = value("log-file", logFile, EnvLogFile, fc.LogFile, defaultLog)

	rawCategory, chosen := pick("category", category, EnvCategory, fc.Category, string(ratetable.CategoryAll))
	config.Category, err = ratetable.ParseCategory(rawCategory)
	if err != nil {
		return nil, fmt.Errorf("invalid category: %w", err)
	}
	config.categoryChosen = chosen

	if raw := value("sort", sortArg, "", fc.Sort, ""); raw != "" {
		config.SortKey, config.SortDir, err = ratetable.ParseSort(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid sort: %w", err)
		}
	}

	return config, nil
}

// applyOnboarding fills what the user left unconfigured from the setup answers.
func (c *Config) applyOnboarding(s OnboardingSettings) {
	if c.DataPath == "" && s.DataPath != "" {
		c.DataPath = s.DataPath
	}
	if !c.categoryChosen && s.Category != "" {
		if cat, err := ratetable.ParseCategory(s.Category); err == nil {
			c.Category = cat
		}
	}
}

func categoryList() string {
	names := make([]string, 0, len(ratetable.Categories))
	for _, c := range ratetable.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
