package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-TurnosService/internal/api"
	changeStatusHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/change_appointment_status"
	createAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/delete_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/get_available_slots"
	listAppointmentsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/list_appointments"
	personsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/persons"
	reportsHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/reports"
	updateAppointmentHandler "github.com/m04kA/SMC-TurnosService/internal/api/handlers/update_appointment"
	"github.com/m04kA/SMC-TurnosService/internal/config"
	"github.com/m04kA/SMC-TurnosService/internal/infra/cache/availability"
	appointmentRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-TurnosService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-TurnosService/internal/infra/storage/migrations"
	personRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/person"
	appointmentsService "github.com/m04kA/SMC-TurnosService/internal/service/appointments"
	personsService "github.com/m04kA/SMC-TurnosService/internal/service/persons"
	reportsService "github.com/m04kA/SMC-TurnosService/internal/service/reports"
	"github.com/m04kA/SMC-TurnosService/internal/slots"
	createAppointmentUC "github.com/m04kA/SMC-TurnosService/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-TurnosService/internal/usecase/get_available_slots"
	updateAppointmentUC "github.com/m04kA/SMC-TurnosService/internal/usecase/update_appointment"
	"github.com/m04kA/SMC-TurnosService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TurnosService/pkg/logger"
	"github.com/m04kA/SMC-TurnosService/pkg/metrics"
	"github.com/m04kA/SMC-TurnosService/pkg/txmanager"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// storage репозитории и менеджер транзакций выбранного драйвера
type storage struct {
	persons interface {
		createAppointmentUC.PersonRepository
		updateAppointmentUC.PersonRepository
		personsService.PersonRepository
		reportsService.PersonRepository
	}
	appointments interface {
		createAppointmentUC.AppointmentRepository
		updateAppointmentUC.AppointmentRepository
		getAvailableSlotsUC.AppointmentRepository
		appointmentsService.AppointmentRepository
		personsService.AppointmentRepository
		reportsService.AppointmentRepository
	}
	txManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	close func() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-TurnosService...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Кэш свободных слотов
	var cache interface {
		getAvailableSlotsUC.AvailabilityCache
		createAppointmentUC.AvailabilityCache
	} = availability.Noop{}

	if cfg.Redis.Enabled {
		client, err := availability.NewClient(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer client.Close()

		cache = availability.NewCache(client, time.Duration(cfg.Redis.TTL)*time.Second)
		log.Info("Availability cache enabled (redis=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
	}

	// Сетка слотов
	start, err := types.NewTimeStringFromString(cfg.Slots.Start)
	if err != nil {
		log.Fatal("Invalid slots.start: %v", err)
	}
	end, err := types.NewTimeStringFromString(cfg.Slots.End)
	if err != nil {
		log.Fatal("Invalid slots.end: %v", err)
	}
	calendar, err := slots.NewCalendar(start, end, cfg.Slots.StepMinutes)
	if err != nil {
		log.Fatal("Invalid slot calendar: %v", err)
	}
	log.Info("Slot calendar: %s-%s every %d minutes (%d slots)", start, end, cfg.Slots.StepMinutes, calendar.Len())

	// Инициализируем сервисы
	appointmentSvc := appointmentsService.NewService(store.appointments, cache, store.txManager, log)
	personSvc := personsService.NewService(store.persons, store.appointments, cache, store.txManager, log)
	reportSvc := reportsService.NewService(store.appointments, store.persons, store.txManager, log)

	// Инициализируем use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		store.appointments,
		store.persons,
		calendar,
		cache,
		store.txManager,
		createAppointmentUC.Rules{
			CancellationWindowDays: cfg.Booking.CancellationWindowDays,
			MaxRecentCancellations: cfg.Booking.MaxRecentCancellations,
		},
		log,
	)

	updateAppointmentUseCase := updateAppointmentUC.NewUseCase(
		store.appointments,
		store.persons,
		calendar,
		cache,
		store.txManager,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		store.appointments,
		calendar,
		cache,
		log,
	)

	// Настраиваем роутер
	r := api.NewRouter(api.Handlers{
		Persons:           personsHandler.NewHandler(personSvc, log),
		CreateAppointment: createAppointmentHandler.NewHandler(createAppointmentUseCase, log),
		GetAppointment:    getAppointmentHandler.NewHandler(appointmentSvc, log),
		ListAppointments:  listAppointmentsHandler.NewHandler(appointmentSvc, log),
		UpdateAppointment: updateAppointmentHandler.NewHandler(updateAppointmentUseCase, log),
		DeleteAppointment: deleteAppointmentHandler.NewHandler(appointmentSvc, log),
		ChangeStatus:      changeStatusHandler.NewHandler(appointmentSvc, log),
		AvailableSlots:    getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log),
		Reports:           reportsHandler.NewHandler(reportSvc, log),
	}, api.RouterOptions{
		Metrics:     metricsCollector,
		MetricsPath: cfg.Metrics.Path,
		Logger:      log,
	})

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// openStorage поднимает postgres (с миграциями) или in-memory хранилище
func openStorage(cfg *config.Config, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Database.Driver == "memory" {
		store := memory.NewStore()
		log.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			persons:      memory.NewPersonRepository(store),
			appointments: memory.NewAppointmentRepository(store),
			txManager:    memory.NewTxManager(store),
			close:        func() error { return nil },
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// При m == nil обёртка работает как прозрачный прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, m, stopCh)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := wrappedDB.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	txMgr := txmanager.NewTransactionManager(wrappedDB)

	if cfg.Database.RunMigrations {
		applied, err := migrations.NewRunner(wrappedDB, txMgr, cfg.Database.MigrationsDir, log).Run(ctx)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Info("Migrations applied: %d", applied)
	}

	return &storage{
		persons:      personRepo.NewRepository(wrappedDB),
		appointments: appointmentRepo.NewRepository(wrappedDB),
		txManager:    txMgr,
		close:        db.Close,
	}, nil
}
