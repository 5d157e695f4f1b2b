package config

// ConfigServer настройки HTTP сервера эмулятора бэкенда
type ConfigServer struct {
	PortHTTP                int    `mapstructure:"port_http"`
	PublicURL               string `mapstructure:"public_url"`
	HTTPReadTimeout         int    `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int    `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int    `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int    `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int    `mapstructure:"graceful_shutdown_timeout"`
}

// ConfigHTTP настройки HTTP surface (CORS и rate limiting)
type ConfigHTTP struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// ConfigStorage настройки Storage Service эмулятора
type ConfigStorage struct {
	SigningSecret    string `mapstructure:"signing_secret"`
	SignedURLTTLSecs int    `mapstructure:"signed_url_ttl"`
}

// ConfigUser учетная запись пользователя эмулятора
type ConfigUser struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ConfigAuth настройки Auth Service эмулятора
type ConfigAuth struct {
	Users []ConfigUser `mapstructure:"users"`
}

// ConfigClient настройки клиентского приложения (SDK)
type ConfigClient struct {
	BaseURL  string `mapstructure:"base_url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Timeout  int    `mapstructure:"timeout"`
}

// Config основная структура конфигурации
type Config struct {
	Server  *ConfigServer  `mapstructure:"server"`
	HTTP    *ConfigHTTP    `mapstructure:"http"`
	Storage *ConfigStorage `mapstructure:"storage"`
	Auth    *ConfigAuth    `mapstructure:"auth"`
	Client  *ConfigClient  `mapstructure:"client"`
}
