package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config armazena todas as configurações do aplicativo GoContatos.
// Todos os campos são definidos com base nos requisitos do projeto
// (API upstream, Sessão, Cache, Robustez).
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// API de Contatos (upstream)
	UpstreamURL     string
	UpstreamTimeout time.Duration

	// Cache e armazenamento de sessão (Redis)
	RedisAddr  string
	SessionTTL time.Duration

	// Cookie de sessão
	SessionSecret string
	SessionCookie string

	// Rate Limiting (tentativas de login)
	RateLimitMaxAttempts int
	RateLimitPeriod      time.Duration
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. API upstream
		// mustGetEnv garante que a aplicação não inicie sem saber onde está a API.
		UpstreamURL:     mustGetEnv("UPSTREAM_URL"),
		UpstreamTimeout: getDurationEnv("UPSTREAM_TIMEOUT_SEC", 10) * time.Second, // 10s padrão

		// 3. Redis (sessões + cache de CEP)
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		SessionTTL: getDurationEnv("SESSION_TTL_HOURS", 24) * time.Hour, // 24h padrão

		// 4. Cookie de sessão
		SessionSecret: mustGetEnv("SESSION_SECRET"),
		SessionCookie: getEnv("SESSION_COOKIE", "_gocontatos_session"),

		// 5. Rate Limiting (proteção do login)
		RateLimitMaxAttempts: getIntEnv("RATE_LIMIT_MAX_ATTEMPTS", 10),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute, // 1 min padrão
	}

	return cfg
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica inteira.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
