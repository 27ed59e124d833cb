package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Log struct {
		Level string
	}
	JWT struct {
		Key               string
		Issuer            string
		Audience          string
		DurationInMinutes int
	}
	Seed struct {
		Role      string
		UserName  string
		Email     string
		Password  string
		FirstName string
		LastName  string
	}
}

// Load reads configuration from environment variables and optional config files.
// Variables already present in the environment win over values from .env.
func Load() (Config, error) {
	_ = godotenv.Load() // optional file

	v := viper.New()
	v.SetEnvPrefix("TASKMASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.path", "data/taskmaster.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.key", "")
	v.SetDefault("jwt.issuer", "taskmaster")
	v.SetDefault("jwt.audience", "taskmaster-clients")
	v.SetDefault("jwt.durationinminutes", 60)
	v.SetDefault("seed.role", "Client")
	v.SetDefault("seed.username", "admin")
	v.SetDefault("seed.email", "clientprueba@email.com")
	v.SetDefault("seed.password", "123Pa$$word!")
	v.SetDefault("seed.firstname", "prueba")
	v.SetDefault("seed.lastname", "1")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
