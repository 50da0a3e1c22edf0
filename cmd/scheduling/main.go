package main

import (
	"context"

	appointmentshandler "workbay/internal/appointments/handler"
	appointmentsrepo "workbay/internal/appointments/repository"
	appointmentsservice "workbay/internal/appointments/service"
	appointmentsvalidator "workbay/internal/appointments/validator"
	elevatorshandler "workbay/internal/elevators/handler"
	elevatorsrepo "workbay/internal/elevators/repository"
	elevatorsservice "workbay/internal/elevators/service"
	"workbay/internal/events"
	"workbay/internal/orchestration"
	quoteshandler "workbay/internal/quotes/handler"
	quotesrepo "workbay/internal/quotes/repository"
	quotesservice "workbay/internal/quotes/service"
	schedulinghandler "workbay/internal/scheduling/handler"
	schedulingservice "workbay/internal/scheduling/service"
	technicianshandler "workbay/internal/technicians/handler"
	techniciansrepo "workbay/internal/technicians/repository"
	workordersconsumer "workbay/internal/workorders/consumer"
	workordershandler "workbay/internal/workorders/handler"
	workordersrepo "workbay/internal/workorders/repository"
	workordersservice "workbay/internal/workorders/service"
	"workbay/pkg/app"
	"workbay/pkg/config"
	"workbay/pkg/contracts"
	"workbay/pkg/sealer"
)

const ServiceName = "scheduling"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Scheduling service")

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	tokenSealer, err := sealer.New(cfg.SealerKey)
	if err != nil {
		cfg.Log.Fatal("Invalid sealer key", "error", err)
	}

	// Repositories.
	appointmentRepo := appointmentsrepo.NewMongoAppointmentRepository(cfg)
	slotLockRepo := appointmentsrepo.NewSlotLockRepository(cfg)
	elevatorRepo := elevatorsrepo.NewMongoElevatorRepository(cfg)
	usageRepo := elevatorsrepo.NewMongoUsageRepository(cfg)
	technicianRepo := techniciansrepo.NewMongoTechnicianRepository(cfg)
	workOrderRepo := workordersrepo.NewMongoWorkOrderRepository(cfg)
	quoteRepo := quotesrepo.NewMongoQuoteRepository(cfg)

	// Services.
	elevatorService := elevatorsservice.NewElevatorService(elevatorRepo, usageRepo, publisher, cfg)
	appointmentService := appointmentsservice.NewAppointmentService(
		appointmentRepo,
		slotLockRepo,
		appointmentsvalidator.NewAppointmentValidator(cfg.Log),
		publisher,
		cfg,
	)
	workOrderService := workordersservice.NewWorkOrderService(workOrderRepo, cfg)
	schedulingService := schedulingservice.NewSchedulingService(
		appointmentRepo,
		workOrderRepo,
		technicianRepo,
		elevatorService,
		cfg,
	)

	engine := orchestration.NewEngine(cfg.Log, orchestration.NewApproveQuoteFlow(
		quoteRepo,
		workOrderService,
		elevatorService,
		appointmentService,
		publisher,
		cfg,
	))
	quoteService := quotesservice.NewQuoteService(quoteRepo, engine, cfg)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	startStatusConsumer(consumerCtx, cfg, workOrderService)

	appHandler := contracts.Compose(
		appointmentshandler.NewAppointmentHandler(appointmentService, tokenSealer, cfg.Log),
		elevatorshandler.NewElevatorHandler(elevatorService, cfg.Log),
		technicianshandler.NewTechnicianHandler(technicianRepo, cfg.Log),
		workordershandler.NewWorkOrderHandler(workOrderService, cfg.Log),
		quoteshandler.NewQuoteHandler(quoteService, cfg.Log),
		schedulinghandler.NewSchedulingHandler(schedulingService, cfg.Log),
	)
	healthHandler := schedulinghandler.NewHealthHandler(cfg.Client.Mongo, cfg.Log)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(appHandler, healthHandler)
	serverApp.Run()
}

// initPublisher falls back to a no-op publisher when the broker is not
// reachable so the HTTP API stays up without eventing.
func initPublisher(cfg *config.Config) events.Publisher {
	publisher, err := events.NewKafkaPublisher(cfg, ServiceName)
	if err != nil {
		cfg.Log.Warn("Kafka publisher unavailable, events disabled", "error", err)
		return events.NoopPublisher{}
	}
	return publisher
}

func startStatusConsumer(ctx context.Context, cfg *config.Config, svc workordersservice.WorkOrderService) {
	consumer, err := workordersconsumer.NewStatusConsumer(cfg, svc)
	if err != nil {
		cfg.Log.Warn("Kafka consumer unavailable, work order status events disabled", "error", err)
		return
	}
	go func() {
		defer func() {
			if err := consumer.Close(); err != nil {
				cfg.Log.Error("Failed to close status consumer", "error", err)
			}
		}()
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			cfg.Log.Error("Work order status consumer stopped", "error", err)
		}
	}()
}
