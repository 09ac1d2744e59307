package cmd

import (
	"log"

	"github.com/avoran/jobscout/internal/adzuna"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobscout"
)

type Config struct {
	Search   *adzuna.SearchFilters `mapstructure:"search"`
	Resume   *ResumeConfig         `mapstructure:"resume"`
	Adzuna   *AdzunaConfig         `mapstructure:"adzuna"`
	Gemini   *GeminiConfig         `mapstructure:"gemini"`
	Matching *MatchingConfig       `mapstructure:"matching"`
	Session  *SessionConfig        `mapstructure:"session"`
	Archive  *ArchiveConfig        `mapstructure:"archive"`
}

type ResumeConfig struct {
	File string `mapstructure:"file"`
}

type AdzunaConfig struct {
	AppIDFile  string `mapstructure:"app-id-file"`
	AppKeyFile string `mapstructure:"app-key-file"`
	Country    string `mapstructure:"country"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	MaxRetries     int    `mapstructure:"max-retries"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds"`
}

type MatchingConfig struct {
	BatchLimit int `mapstructure:"batch-limit"`
	GroupSize  int `mapstructure:"group-size"`
}

type SessionConfig struct {
	RedisURL string `mapstructure:"redis-url"`
	Key      string `mapstructure:"key"`
	TTLHours int    `mapstructure:"ttl-hours"`
}

type ArchiveConfig struct {
	DatabaseURL string `mapstructure:"database-url"`
	Owner       string `mapstructure:"owner"`
	Language    string `mapstructure:"language"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobscout is a cli for searching job boards and scoring postings against your resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"adzuna.app-id-file":   "ADZUNA_APP_ID_FILE",
		"adzuna.app-key-file":  "ADZUNA_APP_KEY_FILE",
		"gemini.api-key-file":  "GEMINI_API_KEY_FILE",
		"session.redis-url":    "REDIS_URL",
		"archive.database-url": "DATABASE_URL",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)



	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
