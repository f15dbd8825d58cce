package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yeonholee/hr-payroll/internal"
	"github.com/yeonholee/hr-payroll/internal/auth"
	authpg "github.com/yeonholee/hr-payroll/internal/auth/postgres"
	"github.com/yeonholee/hr-payroll/internal/core/events"
	"github.com/yeonholee/hr-payroll/internal/department"
	departmentpg "github.com/yeonholee/hr-payroll/internal/department/postgres"
	"github.com/yeonholee/hr-payroll/internal/employee"
	employeepg "github.com/yeonholee/hr-payroll/internal/employee/postgres"
	"github.com/yeonholee/hr-payroll/internal/incentive"
	incentivepg "github.com/yeonholee/hr-payroll/internal/incentive/postgres"
	"github.com/yeonholee/hr-payroll/internal/leave"
	leavepg "github.com/yeonholee/hr-payroll/internal/leave/postgres"
	"github.com/yeonholee/hr-payroll/internal/payroll"
	payrollpg "github.com/yeonholee/hr-payroll/internal/payroll/postgres"
	"github.com/yeonholee/hr-payroll/internal/transport/rest"
	"github.com/yeonholee/hr-payroll/internal/transport/swagger"
	"github.com/yeonholee/hr-payroll/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *sqlx.DB
	Router    *chi.Mux
	Simulator *incentive.Simulator
	Logger    *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := internal.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		deps.Simulator.Shutdown()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	if err := swagger.ValidateDocument(context.Background(), "./api/openapi.yml"); err != nil {
		appLogger.Warn("openapi document validation failed, swagger UI may be stale", "error", err)
	}

	bus := events.NewEventBus(appLogger)
	bus.Subscribe(events.EventPayrollConfirmed, func(ctx context.Context, event events.Event) error {
		appLogger.Info("payroll batch committed", "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})
	bus.Subscribe(events.EventLeaveApproved, func(ctx context.Context, event events.Event) error {
		appLogger.Info("leave request approved", "event_id", event.EventID(), "payload", event.Payload())
		return nil
	})

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authpg.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	employeeRepo := employeepg.NewEmployeeRepository(gormDB)
	employeeService := employee.NewService(employeeRepo, authService, appLogger)
	employeeHandler := employee.NewHandler(employeeService)

	departmentRepo := departmentpg.NewDepartmentRepository(gormDB)
	departmentService := department.NewService(departmentRepo, appLogger)
	departmentHandler := department.NewHandler(departmentService)

	leaveRepo := leavepg.NewLeaveRepository(gormDB)
	leaveService := leave.NewService(leaveRepo, employeeService, bus, appLogger)
	leaveHandler := leave.NewHandler(leaveService)

	payrollRepo := payrollpg.NewPayrollRepository(gormDB)
	payrollService := payroll.NewService(
		payrollRepo, employeeService, bus,
		config.Upload.PayslipDir, config.Upload.PreviewTTL, appLogger)
	payrollHandler := payroll.NewHandler(payrollService, config.Upload.ExcelMaxBytes, config.Upload.PayslipMaxBytes)

	engine, err := incentive.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to build formula engine: %w", err)
	}
	simulator := incentive.NewSimulator(engine, incentive.SimulatorConfig{
		MaxWorkers:   config.Incentive.MaxWorkers,
		JobQueueSize: config.Incentive.JobQueueSize,
		EvalTimeout:  config.Incentive.EvalTimeout,
	}, appLogger)
	incentiveRepo := incentivepg.NewIncentiveRepository(gormDB)
	incentiveService := incentive.NewService(incentiveRepo, engine, simulator, bus, appLogger)
	incentiveHandler := incentive.NewHandler(incentiveService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:       authHandler,
		Employee:   employeeHandler,
		Department: departmentHandler,
		Leave:      leaveHandler,
		Payroll:    payrollHandler,
		Incentive:  incentiveHandler,
	}, config.Server.AllowedOrigins, appLogger)

	return &Dependencies{
		Config:    config,
		Logger:    appLogger,
		DB:        db,
		Router:    router,
		Simulator: simulator,
	}, nil
}

// initDB opens the pgx-backed connection pool shared by gorm and the
// health probes.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
