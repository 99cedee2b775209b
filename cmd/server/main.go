// Command server runs the EventFlow auth service: gRPC AuthService, AdminService and health,
// plus the optional REST gateway on HTTP_ADDR.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	authv1 "eventflow/auth-service/api/auth/v1"
	"eventflow/auth-service/internal/audit"
	auditrepo "eventflow/auth-service/internal/audit/repository"
	"eventflow/auth-service/internal/config"
	"eventflow/auth-service/internal/db"
	"eventflow/auth-service/internal/db/migrate"
	identityhandler "eventflow/auth-service/internal/identity/handler"
	identityservice "eventflow/auth-service/internal/identity/service"
	"eventflow/auth-service/internal/logging"
	"eventflow/auth-service/internal/policy/engine"
	"eventflow/auth-service/internal/ratelimit"
	rtrepo "eventflow/auth-service/internal/refreshtoken/repository"
	"eventflow/auth-service/internal/revocation"
	rolerepo "eventflow/auth-service/internal/role/repository"
	"eventflow/auth-service/internal/security"
	"eventflow/auth-service/internal/server"
	"eventflow/auth-service/internal/server/interceptors"
	"eventflow/auth-service/internal/telemetry"
	oteladapter "eventflow/auth-service/internal/telemetry/otel"
	"eventflow/auth-service/internal/telemetry/producer"
	userrepo "eventflow/auth-service/internal/user/repository"
)

const (
	serviceName     = "eventflow-auth"
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
			return fmt.Errorf("sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	providers, err := oteladapter.NewProviders(ctx, cfg.OTLPEndpoint, oteladapter.Resource{ServiceName: serviceName, Environment: cfg.Env}, cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	providers.SetGlobal()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()

	if cfg.RunMigrations {
		if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer rdb.Close()
	cache := revocation.NewRedisCache(rdb, cfg.RevocationKeyPrefix)
	if err := cache.Ping(ctx); err != nil {
		// Protected RPCs fail with Unavailable until Redis answers.
		logger.Warn("revocation cache unreachable at startup", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	tokens, err := newTokenProvider(cfg)
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	authSvc := identityservice.NewAuthService(
		userrepo.NewPostgresRepository(conn),
		rolerepo.NewPostgresRepository(conn),
		rtrepo.NewPostgresRepository(conn),
		security.NewHasher(cfg.BcryptCost),
		tokens,
		cfg.DefaultRole,
		identityservice.WithRevocationCache(cache),
		identityservice.WithOperationTimeout(cfg.OperationTimeout()),
		identityservice.WithLogger(logger),
	)
	if err := authSvc.CheckDefaultRole(ctx); err != nil {
		return err
	}

	authorizer, err := engine.NewOPAAuthorizer(ctx, engine.DefaultPolicy, cfg.AdminRole, server.AdminMethods())
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	kafkaProducer, err := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.AuthEventsTopic)
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	events := telemetry.Fanout{oteladapter.NewEventEmitter(providers.LoggerProvider)}
	if kafkaProducer != nil {
		events = append(events, kafkaProducer)
		logger.Info("publishing auth events to kafka", zap.String("topic", cfg.AuthEventsTopic))
	}

	clientIPs, err := interceptors.NewClientIPResolver(cfg.TrustedProxiesList())
	if err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	audits := auditrepo.NewPostgresRepository(conn)
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(server.UnaryInterceptors(server.ChainOptions{
			Log:        logger,
			Validator:  revocation.NewValidator(tokens, cache),
			Authorizer: authorizer,
			Limiter:    ratelimit.New(cfg.RateLimitPerMinute),
			ClientIP:   clientIPs.ClientIP,
			Audit:      audit.NewLogger(audits, clientIPs.ClientIP, logger),
			Events:     events,
		})...),
	)
	health := server.RegisterServices(grpcServer, server.Deps{
		Auth:                authSvc,
		AuditRepo:           audits,
		HealthPinger:        conn,
		HealthCache:         cache,
		HealthPolicyChecker: authorizer,
		Log:                 logger,
	})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		cc, err := grpc.NewClient(loopbackTarget(cfg.GRPCAddr),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		)
		if err != nil {
			return fmt.Errorf("gateway client: %w", err)
		}
		defer cc.Close()
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		httpServer = &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: identityhandler.NewRouter(authv1.NewAuthServiceClient(cc), identityhandler.RESTOptions{
				Limiter:        ratelimit.New(cfg.RateLimitPerMinute),
				TrustedProxies: cfg.TrustedProxiesList(),
				Ready:          health.Ready,
				Log:            logger,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		return grpcServer.Serve(lis)
	})
	if httpServer != nil {
		g.Go(func() error {
			logger.Info("REST gateway listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if httpServer != nil {
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("REST gateway shutdown", zap.Error(err))
			}
		}
		grpcServer.GracefulStop()

		// Let in-flight async event emits finish before closing their sinks.
		time.Sleep(telemetry.ShutdownDrainDuration)
		if err := kafkaProducer.Close(); err != nil {
			logger.Warn("kafka producer close", zap.Error(err))
		}
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newTokenProvider signs with the configured key pair (RS256/ES256), or HS256 with JWT_SECRET.
func newTokenProvider(cfg *config.Config) (*security.TokenProvider, error) {
	if cfg.UseKeyPair() {
		signer, pub, err := security.ParseKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
		if err != nil {
			return nil, err
		}
		return security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	}
	return security.NewHMACTokenProvider([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
}

// loopbackTarget turns a listen address such as ":8080" into a dialable target.
func loopbackTarget(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
