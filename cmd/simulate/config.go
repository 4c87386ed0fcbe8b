package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type simulationConfig struct {
	Ticks            int     `yaml:"ticks" env:"TICKS" env-default:"1000" validate:"gt=0"`
	Seed             int64   `yaml:"seed" env:"SEED" env-default:"42"`
	InitialFairPrice float64 `yaml:"initial_fair_price" env:"INITIAL_FAIR_PRICE" env-default:"1000" validate:"gt=0"`
	NewsArrivalRate  float64 `yaml:"news_arrival_rate" env:"NEWS_ARRIVAL_RATE" env-default:"0.1" validate:"gte=0,lte=1"`
	GoodNewsProb     float64 `yaml:"good_news_prob" env:"GOOD_NEWS_PROB" env-default:"0.5" validate:"gte=0,lte=1"`
}

type agentsConfig struct {
	KyleMakers      int     `yaml:"kyle_makers" env:"KYLE_MAKERS" env-default:"1" validate:"gte=0"`
	AdaptiveMakers  int     `yaml:"adaptive_makers" env:"ADAPTIVE_MAKERS" env-default:"1" validate:"gte=0"`
	InformedTraders int     `yaml:"informed_traders" env:"INFORMED_TRADERS" env-default:"1" validate:"gte=0"`
	NoiseTraders    int     `yaml:"noise_traders" env:"NOISE_TRADERS" env-default:"10" validate:"gte=0"`
	NoiseRate       float64 `yaml:"noise_rate" env:"NOISE_RATE" env-default:"1.0" validate:"gte=0,lte=1"`
	NoiseMaxVolume  int64   `yaml:"noise_max_volume" env:"NOISE_MAX_VOLUME" env-default:"10" validate:"gt=0"`
}

type config struct {
	Simulation simulationConfig `yaml:"simulation"`
	Agents     agentsConfig     `yaml:"agents"`
	ListenAddr string           `yaml:"listen_addr" env:"LISTEN_ADDR"`
	StatePath  string           `yaml:"state_path" env:"STATE_PATH"`
	LogLevel   string           `yaml:"log_level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
}

// loadConfig reads the yaml file at path when one is given, otherwise falls
// back to environment variables and tag defaults, then validates the result.
func loadConfig(path string) (*config, error) {
	var cfg config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config from env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
