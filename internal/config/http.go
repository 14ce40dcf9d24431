package config

import (
	"fmt"
	"time"
)

// HTTPConfig представляет конфигурацию HTTP сервера.
type HTTPConfig struct {
	Host          string        `yaml:"host" env:"NOTESAPP_HTTP_HOST" env-default:"0.0.0.0"`
	Port          int           `yaml:"port" env:"NOTESAPP_HTTP_PORT" env-default:"8080"`
	ReadTimeout   time.Duration `yaml:"read_timeout" env:"NOTESAPP_HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout  time.Duration `yaml:"write_timeout" env:"NOTESAPP_HTTP_WRITE_TIMEOUT" env-default:"15s"`
	MaxUploadSize int           `yaml:"max_upload_size" env:"NOTESAPP_HTTP_MAX_UPLOAD_SIZE" env-default:"10485760"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
