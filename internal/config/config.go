package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Storage    string    `yaml:"storage" env:"STORAGE" env-default:"memory"`
	Redis      Redis     `yaml:"redis"`
	Room       Room      `yaml:"room"`
	Limits     Limits    `yaml:"limits"`
	WebSocket  WebSocket `yaml:"websocket"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Room struct {
	TTL          time.Duration `yaml:"ttl" env:"ROOM_TTL" env-default:"24h"`
	CodeAttempts int           `yaml:"code-attempts" env-default:"32"`
}

type Limits struct {
	MaxNameLength int   `yaml:"max-name-length" env-default:"20"`
	MaxChatLength int   `yaml:"max-chat-length" env-default:"500"`
	SendBuffer    int   `yaml:"send-buffer" env-default:"32"`
	ReadLimit     int64 `yaml:"read-limit" env-default:"4096"`
}

type WebSocket struct {
	WriteTimeout   time.Duration `yaml:"write-timeout" env-default:"10s"`
	PongTimeout    time.Duration `yaml:"pong-timeout" env-default:"60s"`
	PingPeriod     time.Duration `yaml:"ping-period" env-default:"54s"`
	AllowedOrigins []string      `yaml:"allowed-origins" env:"ALLOWED_ORIGINS" env-separator:","`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.Storage {
	case StorageMemory, StorageRedis:
	default:
		return fmt.Errorf("unknown storage %q", that.Storage)
	}

	if that.WebSocket.PongTimeout > 0 && that.WebSocket.PingPeriod >= that.WebSocket.PongTimeout {
		return fmt.Errorf("ping-period %s must be shorter than pong-timeout %s",
			that.WebSocket.PingPeriod, that.WebSocket.PongTimeout)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
