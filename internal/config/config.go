package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BroadcastRedis = "redis"
	BroadcastLocal = "local"
)

type Config struct {
	LogLevel     string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort     string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort   string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis        Redis     `yaml:"redis"`
	JWTSecretKey string    `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY" env-required:"true"`
	Rating       Rating    `yaml:"rating"`
	WebSocket    WebSocket `yaml:"websocket"`
	Broadcast    Broadcast `yaml:"broadcast"`
	CORS         CORS      `yaml:"cors"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Rating - points applied by the rating updater on a terminal game.
type Rating struct {
	Win  int `yaml:"win" env:"RATING_WIN" env-default:"25"`
	Loss int `yaml:"loss" env:"RATING_LOSS" env-default:"15"`
	Draw int `yaml:"draw" env:"RATING_DRAW" env-default:"5"`
}

type WebSocket struct {
	AllowObservers bool          `yaml:"allow-observers" env:"WS_ALLOW_OBSERVERS" env-default:"false"`
	SendBuffer     int           `yaml:"send-buffer" env:"WS_SEND_BUFFER" env-default:"16"`
	MaxMessageSize int64         `yaml:"max-message-size" env:"WS_MAX_MESSAGE_SIZE" env-default:"1024"`
	PingPeriod     time.Duration `yaml:"ping-period" env:"WS_PING_PERIOD" env-default:"30s"`
	MoveTimeout    time.Duration `yaml:"move-timeout" env:"WS_MOVE_TIMEOUT" env-default:"5s"`
}

type Broadcast struct {
	Mode string `yaml:"mode" env:"BROADCAST_MODE" env-default:"redis"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed-origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the yaml file at path, then applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Broadcast.Mode {
	case BroadcastRedis, BroadcastLocal:
	default:
		return fmt.Errorf("unknown broadcast mode %q", that.Broadcast.Mode)
	}

	if that.Rating.Win < 0 || that.Rating.Loss < 0 || that.Rating.Draw < 0 {
		return fmt.Errorf("rating points must not be negative")
	}

	if that.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("websocket send-buffer must be positive")
	}

	if that.WebSocket.MaxMessageSize <= 0 {
		return fmt.Errorf("websocket max-message-size must be positive")
	}

	if that.WebSocket.PingPeriod <= 0 {
		return fmt.Errorf("websocket ping-period must be positive")
	}

	if that.WebSocket.MoveTimeout <= 0 {
		return fmt.Errorf("websocket move-timeout must be positive")
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
