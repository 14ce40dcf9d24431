package config

import "time"

// StorageConfig содержит настройки объектного хранилища изображений.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint" env:"NOTESAPP_STORAGE_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"NOTESAPP_STORAGE_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `yaml:"secret_key" env:"NOTESAPP_STORAGE_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `yaml:"bucket" env:"NOTESAPP_STORAGE_BUCKET" env-default:"notes"`
	UseSSL    bool   `yaml:"use_ssl" env:"NOTESAPP_STORAGE_USE_SSL" env-default:"false"`
	URLTTL    string `yaml:"url_ttl" env:"NOTESAPP_STORAGE_URL_TTL" env-default:"1h"`
}

// GetURLTTL возвращает время жизни подписанных ссылок на изображения.
func (c *StorageConfig) GetURLTTL() time.Duration {
	duration, err := time.ParseDuration(c.URLTTL)
	if err != nil {
		return time.Hour
	}
	return duration
}
