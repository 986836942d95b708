package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"gocontatos/config"
	"gocontatos/internal/pkg/cache"
	"gocontatos/internal/pkg/logger"
	"gocontatos/internal/pkg/middleware"
	"gocontatos/internal/pkg/session"
	"gocontatos/internal/registry"
	"gocontatos/internal/upstream"
	"gocontatos/internal/web"

	// Camadas da aplicação para Injeção de Dependências
	"gocontatos/internal/api/auth"
	"gocontatos/internal/api/contacts"
	"gocontatos/internal/api/router"
	"gocontatos/internal/service/authservice"
	"gocontatos/internal/service/contactservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço GoContatos...")

	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	logg := logger.NewLogger(cfg.LogLevel)
	logg.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Cache/Sessões (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	logg.Info("Conexão Redis estabelecida.", nil)

	// B. Cookies assinados (session id + flashes)
	cookies := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cookies.Options.HttpOnly = true
	cookies.Options.SameSite = http.SameSiteLaxMode

	// 3. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Gateway/Stores -> Service -> Handler

	// A. Gateway da API upstream (camada de acesso a dados)
	apiClient := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, cacheClient, logg)
	logg.Debug("Cliente da API upstream inicializado.", nil)

	// B. Stores de estado por sessão
	sessionStore := session.NewStore(cacheClient, cfg.SessionTTL)
	registries := registry.NewStore()

	// C. Serviços (camada de lógica)
	authSvc := authservice.NewService(apiClient, sessionStore, logg)
	contactSvc := contactservice.NewService(apiClient, registries, logg)
	logg.Debug("Serviços inicializados.", nil)

	// D. Views (templates embutidos + flashes)
	renderer, err := web.NewRenderer(cookies, cfg.SessionCookie, logg)
	if err != nil {
		logg.Fatal("Falha ao compilar os templates.", err)
	}

	// E. Handlers (camada de apresentação)
	authHandler := auth.NewHandler(authSvc, contactSvc, renderer, cookies, cfg.SessionCookie, logg)
	contactsHandler := contacts.NewHandler(contactSvc, authSvc, renderer, cookies, cfg.SessionCookie, logg)
	logg.Debug("Handlers inicializados.", nil)

	// F. Middlewares
	sessionMw := mux.MiddlewareFunc(middleware.NewAuthMiddleware(cookies, cfg.SessionCookie, sessionStore, logg))
	loginLimiter := mux.MiddlewareFunc(middleware.RateLimiter(cacheClient, cfg.RateLimitMaxAttempts, cfg.RateLimitPeriod))

	// 4. Configuração e Início do Roteador/Servidor
	r := router.NewRouter(authHandler, contactsHandler, sessionMw, loginLimiter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		logg.Info("Servidor GoContatos ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logg.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Error("Desligamento do servidor forçado.", err)
	}

	logg.Info("Servidor encerrado com sucesso.", nil)
}
