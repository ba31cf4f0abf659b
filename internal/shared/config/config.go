package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv     string
	LogLevel   string
	EventBus   EventBusConfig
	Metrics    MetricsConfig
	Telegram   TelegramConfig
	Simulation SimulationConfig
}

// EventBusConfig bounds the subscriber registry. Zero means unbounded.
type EventBusConfig struct {
	MaxSubscribers         int
	MaxTopicsPerSubscriber int
	MaxTopicLength         int
	MaxIDLength            int
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string
}

// TelegramConfig enables the news notifier when both fields are set.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

// Enabled reports whether the notifier should be started.
func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != 0
}

// SimulationConfig drives the sensor scenario.
type SimulationConfig struct {
	Rounds   int
	Interval time.Duration
}

// env bindings: viper key -> environment variable
var bindings = map[string]string{
	"app.env":                   "APP_ENV",
	"log.level":                 "LOG_LEVEL",
	"eventbus.max_subscribers":  "EVENTBUS_MAX_SUBSCRIBERS",
	"eventbus.max_topics":       "EVENTBUS_MAX_TOPICS",
	"eventbus.max_topic_length": "EVENTBUS_MAX_TOPIC_LENGTH",
	"eventbus.max_id_length":    "EVENTBUS_MAX_ID_LENGTH",
	"metrics.addr":              "METRICS_ADDR",
	"telegram.token":            "TELEGRAM_TOKEN",
	"telegram.chat_id":          "TELEGRAM_CHAT_ID",
	"simulation.rounds":         "SIMULATION_ROUNDS",
	"simulation.interval":       "SIMULATION_INTERVAL",
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// A missing .env is fine, the process environment is used instead.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	viper.SetDefault("app.env", "dev")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("simulation.rounds", 1)
	viper.SetDefault("simulation.interval", "0s")

	cfg := Config{
		AppEnv:   viper.GetString("app.env"),
		LogLevel: viper.GetString("log.level"),
		EventBus: EventBusConfig{
			MaxSubscribers:         viper.GetInt("eventbus.max_subscribers"),
			MaxTopicsPerSubscriber: viper.GetInt("eventbus.max_topics"),
			MaxTopicLength:         viper.GetInt("eventbus.max_topic_length"),
			MaxIDLength:            viper.GetInt("eventbus.max_id_length"),
		},
		Metrics: MetricsConfig{
			Addr: viper.GetString("metrics.addr"),
		},
		Telegram: TelegramConfig{
			Token:  viper.GetString("telegram.token"),
			ChatID: viper.GetInt64("telegram.chat_id"),
		},
		Simulation: SimulationConfig{
			Rounds:   viper.GetInt("simulation.rounds"),
			Interval: viper.GetDuration("simulation.interval"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot check for us.
func (c *Config) Validate() error {
	bus := c.EventBus
	if bus.MaxSubscribers < 0 || bus.MaxTopicsPerSubscriber < 0 || bus.MaxTopicLength < 0 || bus.MaxIDLength < 0 {
		return errors.New("event bus limits must not be negative")
	}
	if c.Simulation.Rounds < 0 {
		return fmt.Errorf("SIMULATION_ROUNDS must not be negative, got %d", c.Simulation.Rounds)
	}
	if c.Simulation.Interval < 0 {
		return fmt.Errorf("SIMULATION_INTERVAL must not be negative, got %s", c.Simulation.Interval)
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID must be set when TELEGRAM_TOKEN is set")
	}
	if c.Telegram.Token == "" && c.Telegram.ChatID != 0 {
		return errors.New("TELEGRAM_TOKEN must be set when TELEGRAM_CHAT_ID is set")
	}
	return nil
}
