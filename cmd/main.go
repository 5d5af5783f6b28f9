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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	checkSlotHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/check_slot"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	createTimeBlockHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_time_block"
	deactivateRuleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/deactivate_availability_rule"
	deleteTimeBlockHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_time_block"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getRulesHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_availability_rules"
	getBusinessAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_business_appointments"
	getFreeSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_free_slots"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_appointment_status"
	upsertRuleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/upsert_availability_rule"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	availabilityRuleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/availabilityrule"
	timeBlockRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/timeblock"
	directoryServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/directoryservice"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	checkSlotUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_slot"
	createAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	getFreeSlotsUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиента справочника (бизнесы, специалисты, услуги)
	directoryClient := directoryServiceClient.NewClient(
		cfg.DirectoryService.URL,
		time.Duration(cfg.DirectoryService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (DirectoryService=%s timeout=%ds)",
		cfg.DirectoryService.URL, cfg.DirectoryService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		appointmentRepository *appointmentRepo.Repository
		ruleRepository        *availabilityRuleRepo.Repository
		blockRepository       *timeBlockRepo.Repository
	)

	// Интерфейс для transaction manager (используется в usecases и сервисах)
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		appointmentRepository = appointmentRepo.NewRepository(wrappedDB)
		ruleRepository = availabilityRuleRepo.NewRepository(wrappedDB)
		blockRepository = timeBlockRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		appointmentRepository = appointmentRepo.NewRepository(db)
		ruleRepository = availabilityRuleRepo.NewRepository(db)
		blockRepository = timeBlockRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		txMgr,
		appointmentRepository,
		ruleRepository,
		blockRepository,
		directoryClient,
		log,
	)
	scheduleSvc := scheduleService.NewService(
		ruleRepository,
		blockRepository,
		directoryClient,
		log,
	)

	// Инициализируем use cases
	getFreeSlotsUseCase := getFreeSlotsUC.NewUseCase(
		appointmentRepository,
		ruleRepository,
		blockRepository,
		directoryClient,
		log,
	)
	checkSlotUseCase := checkSlotUC.NewUseCase(
		appointmentRepository,
		ruleRepository,
		blockRepository,
		directoryClient,
		log,
	)
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		txMgr,
		appointmentRepository,
		ruleRepository,
		blockRepository,
		directoryClient,
		log,
	)

	// Инициализируем handlers
	getFreeSlots := getFreeSlotsHandler.NewHandler(getFreeSlotsUseCase, log)
	checkSlot := checkSlotHandler.NewHandler(checkSlotUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateStatus := updateStatusHandler.NewHandler(appointmentsSvc, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(appointmentsSvc, log)
	getBusinessAppointments := getBusinessAppointmentsHandler.NewHandler(appointmentsSvc, log)
	upsertRule := upsertRuleHandler.NewHandler(scheduleSvc, log)
	getRules := getRulesHandler.NewHandler(scheduleSvc, log)
	deactivateRule := deactivateRuleHandler.NewHandler(scheduleSvc, log)
	createTimeBlock := createTimeBlockHandler.NewHandler(scheduleSvc, log)
	deleteTimeBlock := deleteTimeBlockHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Каждому запросу присваивается request ID
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (каналы самозаписи, авторизация по API токену)
	// ============================================================

	// Свободные слоты специалиста на дату
	api.HandleFunc("/businesses/{businessId}/professionals/{professionalId}/free-slots",
		getFreeSlots.Handle).Methods(http.MethodGet)

	// Быстрая проверка конкретного слота
	api.HandleFunc("/businesses/{businessId}/professionals/{professionalId}/check-slot",
		checkSlot.Handle).Methods(http.MethodGet)

	// Создание записи из публичных каналов (ссылка самозаписи, мессенджер-бот)
	api.HandleFunc("/public/appointments",
		createAppointment.HandlePublic).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (операторский интерфейс, требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	// Создание записи оператором
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)

	// Список записей бизнеса с фильтрами
	protected.HandleFunc("/businesses/{businessId}/appointments",
		getBusinessAppointments.Handle).Methods(http.MethodGet)

	// Получение записи по ID
	protected.HandleFunc("/businesses/{businessId}/appointments/{appointmentId}",
		getAppointment.Handle).Methods(http.MethodGet)

	// Отмена записи
	protected.HandleFunc("/businesses/{businessId}/appointments/{appointmentId}/cancel",
		cancelAppointment.Handle).Methods(http.MethodPatch)

	// Смена статуса записи
	protected.HandleFunc("/businesses/{businessId}/appointments/{appointmentId}/status",
		updateStatus.Handle).Methods(http.MethodPatch)

	// Перенос записи на другое время или к другому специалисту
	protected.HandleFunc("/businesses/{businessId}/appointments/{appointmentId}/reschedule",
		rescheduleAppointment.Handle).Methods(http.MethodPatch)

	// --- Расписание специалистов ---
	// Правила доступности на дни недели
	protected.HandleFunc("/businesses/{businessId}/professionals/{professionalId}/availability-rules",
		upsertRule.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/businesses/{businessId}/professionals/{professionalId}/availability-rules",
		getRules.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/professionals/{professionalId}/availability-rules/{weekday}",
		deactivateRule.Handle).Methods(http.MethodDelete)

	// Блокировки времени (отпуска, перерывы, весь бизнес или один специалист)
	protected.HandleFunc("/businesses/{businessId}/time-blocks",
		createTimeBlock.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/businesses/{businessId}/time-blocks/{blockId}",
		deleteTimeBlock.Handle).Methods(http.MethodDelete)

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
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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
