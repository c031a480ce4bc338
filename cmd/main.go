package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"quadrahub/config"
	"quadrahub/internal/pkg/cache"
	"quadrahub/internal/pkg/database"
	"quadrahub/internal/pkg/geocode"
	"quadrahub/internal/pkg/logger"
	"quadrahub/internal/pkg/storage"
	"quadrahub/internal/pkg/token"

	// Camadas do domínio para Injeção de Dependências
	"quadrahub/internal/api/court" // Handlers
	"quadrahub/internal/api/event"
	"quadrahub/internal/api/router" // Roteador central
	"quadrahub/internal/api/user"
	"quadrahub/internal/repository/courtrepo" // Acesso a Dados
	"quadrahub/internal/repository/eventrepo"
	"quadrahub/internal/repository/subscriptionrepo"
	"quadrahub/internal/repository/userrepo"
	"quadrahub/internal/service/courtservice" // Lógica de Negócio
	"quadrahub/internal/service/eventservice"
	"quadrahub/internal/service/userservice"
)

// @title QuadraHub API
// @version 1.0
// @description Backend de quadras e eventos esportivos: cadastro com geocoding, listagem por proximidade, avaliações e inscrições.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço QuadraHub...")
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não for encontrado, avisamos mas continuamos:
		// as variáveis essenciais podem estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// C. Geocoding (ViaCEP + Nominatim)
	geoResolver := geocode.NewClient(cfg.ViaCEPBaseURL, cfg.NominatimBaseURL, cfg.GeoTimeout, log)
	log.Debug("Cliente de geocoding inicializado.", nil)

	// D. Armazenamento de mídia (fotos de quadras e eventos)
	mediaStore, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal("Falha ao preparar o diretório de uploads.", err)
	}
	log.Debug("Armazenamento de mídia inicializado.", nil)

	// E. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	log.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Usuários
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	userSvc := userservice.NewService(userRepo, geoResolver, tokenSvc, log)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Camadas de Usuário inicializadas.", nil)

	// B. Quadras
	courtRepo := courtrepo.NewCourtRepository(db, cacheClient, cfg.DBTimeout, log)
	courtSvc := courtservice.NewService(courtRepo, userRepo, geoResolver, log)
	courtHandler := court.NewHandler(courtSvc, mediaStore, log)
	log.Debug("Camadas de Quadra inicializadas.", nil)

	// C. Eventos e inscrições
	eventRepo := eventrepo.NewEventRepository(db, cacheClient, cfg.DBTimeout, log)
	subscriptionRepo := subscriptionrepo.NewSubscriptionRepository(db, cfg.DBTimeout, log)
	eventSvc := eventservice.NewService(eventRepo, subscriptionRepo, userRepo, geoResolver, log)
	eventHandler := event.NewHandler(eventSvc, mediaStore, log)
	log.Debug("Camadas de Evento inicializadas.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	r := router.NewRouter(userHandler, courtHandler, eventHandler, router.Options{
		TokenSvc:       tokenSvc,
		CacheClient:    cacheClient,
		UploadDir:      cfg.UploadDir,
		RateLimitMax:   cfg.RateLimitMaxRequests,
		RateLimitEvery: cfg.RateLimitPeriod,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor QuadraHub ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
