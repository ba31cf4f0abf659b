package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, env := range bindings {
		t.Setenv(env, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, EventBusConfig{}, cfg.EventBus)
	assert.Equal(t, 1, cfg.Simulation.Rounds)
	assert.Equal(t, time.Duration(0), cfg.Simulation.Interval)
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EVENTBUS_MAX_SUBSCRIBERS", "100")
	t.Setenv("EVENTBUS_MAX_TOPICS", "20")
	t.Setenv("EVENTBUS_MAX_TOPIC_LENGTH", "50")
	t.Setenv("EVENTBUS_MAX_ID_LENGTH", "100")
	t.Setenv("METRICS_ADDR", "127.0.0.1:9090")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")
	t.Setenv("SIMULATION_ROUNDS", "3")
	t.Setenv("SIMULATION_INTERVAL", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, EventBusConfig{
		MaxSubscribers:         100,
		MaxTopicsPerSubscriber: 20,
		MaxTopicLength:         50,
		MaxIDLength:            100,
	}, cfg.EventBus)
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Addr)
	assert.Equal(t, int64(-1001), cfg.Telegram.ChatID)
	assert.True(t, cfg.Telegram.Enabled())
	assert.Equal(t, 3, cfg.Simulation.Rounds)
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.Interval)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "zero value", cfg: Config{}},
		{name: "negative bound", cfg: Config{EventBus: EventBusConfig{MaxTopicsPerSubscriber: -1}}, wantErr: true},
		{name: "negative rounds", cfg: Config{Simulation: SimulationConfig{Rounds: -2}}, wantErr: true},
		{name: "negative interval", cfg: Config{Simulation: SimulationConfig{Interval: -time.Second}}, wantErr: true},
		{name: "token without chat", cfg: Config{Telegram: TelegramConfig{Token: "t"}}, wantErr: true},
		{name: "chat without token", cfg: Config{Telegram: TelegramConfig{ChatID: 42}}, wantErr: true},
		{name: "telegram pair", cfg: Config{Telegram: TelegramConfig{Token: "t", ChatID: 42}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTelegramConfig_Enabled(t *testing.T) {
	testCases := []struct {
		name string
		cfg  TelegramConfig
		want bool
	}{
		{"both set", TelegramConfig{Token: "t", ChatID: 42}, true},
		{"token only", TelegramConfig{Token: "t"}, false},
		{"chat only", TelegramConfig{ChatID: 42}, false},
		{"neither", TelegramConfig{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.cfg.Enabled())
		})
	}
}
