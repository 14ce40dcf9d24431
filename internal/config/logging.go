package config

// LoggingConfig представляет конфигурацию логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"NOTESAPP_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"NOTESAPP_LOGGER_MODE" env-default:"production"`
}
