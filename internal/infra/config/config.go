package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	API struct {
		BaseURL string `envconfig:"GS_API_BASE_URL" default:"https://api.gurushots.com"`
		Token   string `envconfig:"GS_TOKEN"`
	} `envconfig:""`

	Device struct {
		Env        string `envconfig:"GS_DEVICE_ENV" default:"IOS"`
		APIVersion string `envconfig:"GS_API_VERSION" default:"20"`
		Brand      string `envconfig:"GS_DEVICE_BRAND" default:"Apple"`
		Model      string `envconfig:"GS_DEVICE_MODEL" default:"iPhone13,3"`
		OSVersion  string `envconfig:"GS_DEVICE_OS_VERSION" default:"16.6"`
		AppVersion string `envconfig:"GS_APP_VERSION" default:"2.31.1"`
	} `envconfig:""`

	Voting struct {
		PoolLimit  int `envconfig:"VOTE_POOL_LIMIT" default:"100"`
		PauseMinMS int `envconfig:"VOTE_PAUSE_MIN_MS" default:"2000"`
		PauseMaxMS int `envconfig:"VOTE_PAUSE_MAX_MS" default:"7000"`
	} `envconfig:""`

	Boost struct {
		LookaheadSec int `envconfig:"BOOST_LOOKAHEAD_SEC" default:"600"`
	} `envconfig:""`

	Cycle struct {
		IntervalSec int `envconfig:"CYCLE_INTERVAL_SEC" default:"180"`
	} `envconfig:""`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	PGDSN     string `envconfig:"PG_DSN"`

	Telegram struct {
		Token       string `envconfig:"TG_BOT_TOKEN"`
		AdminChatID int64  `envconfig:"TG_ADMIN_CHAT_ID"`
	} `envconfig:""`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
