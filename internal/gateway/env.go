package gateway

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config содержит конфигурацию для подключения к платёжному шлюзу
type Config struct {
	// BaseURL — адрес удалённого платёжного шлюза.
	// Значение зависит от среды выполнения:
	//   - локальная разработка (go run): http://localhost:9090
	//   - запуск в Docker: http://gateway:9090
	BaseURL string `env:"GATEWAY_BASE_URL" envDefault:"http://localhost:9090"`
	// Timeout — таймаут одного HTTP-вызова шлюза.
	// Ретраев на этом слое нет: политика повторов принадлежит транспорту/вызывающему.
	Timeout time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
}

// LoadEnv загружает конфигурацию из переменных окружения
// Использует пакет caarlos0/env/v10 для парсинга env-тегов
func LoadEnv(cfg *Config) error {
	return env.Parse(cfg)
}
