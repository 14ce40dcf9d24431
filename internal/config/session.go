package config

import "time"

// SessionConfig содержит настройки пользовательских сессий.
type SessionConfig struct {
	SecretKey    string `yaml:"secret_key" env:"NOTESAPP_SESSION_SECRET_KEY" env-default:"super-secret-key-change-me-in-production"`
	TTL          string `yaml:"ttl" env:"NOTESAPP_SESSION_TTL" env-default:"24h"`
	CookieName   string `yaml:"cookie_name" env:"NOTESAPP_SESSION_COOKIE_NAME" env-default:"notesapp_session"`
	CookieSecure bool   `yaml:"cookie_secure" env:"NOTESAPP_SESSION_COOKIE_SECURE" env-default:"false"`
	BCryptCost   int    `yaml:"bcrypt_cost" env:"NOTESAPP_SESSION_BCRYPT_COST" env-default:"10"`
}

// GetTTL возвращает продолжительность времени жизни сессии.
func (c *SessionConfig) GetTTL() time.Duration {
	duration, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}
