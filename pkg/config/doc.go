// Package config loads environment configuration into tagged structs.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for parsing. Every variable is read with the
// PPP_ prefix unless WithPrefix says otherwise:
//
//	type Config struct {
//		LogLevel string `env:"LOG_LEVEL" envDefault:"info"` // PPP_LOG_LEVEL
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Without WithEnvFiles the default .env in the working directory is loaded
// when present. Variables already set in the process environment win over
// .env values.
package config
