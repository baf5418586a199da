package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"finanzas/internal/core"
	applog "finanzas/internal/log"
)

type Config struct {
	// Storage
	DataBackend  string
	SQLiteDBPath string

	// AMQP (optional change fan-out)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Category vocabulary
	Vocabulary core.Vocabulary

	// Logging
	LogLevel string

	// Reports
	ChartOutputDir string
	ReportMonth    string

	ShutdownTimeout time.Duration
}

var validBackends = []string{"memory", "sqlite"}

func Load() *Config {
	defaults := core.DefaultVocabulary()

	return &Config{
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finanzas.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finanzas"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "finanzas_changes"),

		Vocabulary: core.Vocabulary{
			Income:  getEnvList("INCOME_CATEGORIES", defaults.Income),
			Expense: getEnvList("EXPENSE_CATEGORIES", defaults.Expense),
		},

		LogLevel: getEnv("LOG_LEVEL", "info"),

		ChartOutputDir: getEnv("CHART_OUTPUT_DIR", "./charts"),
		ReportMonth:    getEnv("REPORT_MONTH", string(core.MonthOf(time.Now()))),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	for _, name := range c.Vocabulary.Income {
		if slices.Contains(c.Vocabulary.Expense, name) {
			errors = append(errors, fmt.Sprintf("category '%s' cannot be both an income and an expense category", name))
		}
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if c.ChartOutputDir == "" {
		errors = append(errors, "chart output directory cannot be empty")
	}

	if _, err := core.ParseMonth(c.ReportMonth); err != nil {
		errors = append(errors, fmt.Sprintf("invalid report month '%s': must be YYYY-MM", c.ReportMonth))
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	} else if c.ShutdownTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at most 5 minutes", c.ShutdownTimeout))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma separated variable. A variable that is set but
// empty yields an empty list, which disables category checks for that type.
func getEnvList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return slices.Clone(defaultValue)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
