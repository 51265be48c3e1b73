package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Import   ImportConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

// ImportConfig carries the spreadsheet import policy. DefaultColor is applied
// to every classified item regardless of type; pending product clarification
// on per-type colors it stays a single knob. TypeKeywords is an ordered list,
// first match wins. FallbackType is used when no keyword matches.
type ImportConfig struct {
	TypeKeywords []string
	FallbackType string
	DefaultColor string
	DeadlineDays int
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "printshop")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "printshop")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("IMPORT_TYPE_KEYWORDS", []string{"Roblox", "Minecraft", "Harry Potter", "Barbie"})
	viper.SetDefault("IMPORT_FALLBACK_TYPE", "Normal")
	viper.SetDefault("IMPORT_DEFAULT_COLOR", "Standard")
	viper.SetDefault("ORDER_DEADLINE_DAYS", 5)

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Import: ImportConfig{
			TypeKeywords: viper.GetStringSlice("IMPORT_TYPE_KEYWORDS"),
			FallbackType: viper.GetString("IMPORT_FALLBACK_TYPE"),
			DefaultColor: viper.GetString("IMPORT_DEFAULT_COLOR"),
			DeadlineDays: viper.GetInt("ORDER_DEADLINE_DAYS"),
		},
	}

	return cfg, nil
}
