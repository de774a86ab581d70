package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-TurnosService/internal/config"
	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/internal/infra/cache/availability"
	appointmentRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/appointment"
	personRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/person"
	appointmentsService "github.com/m04kA/SMC-TurnosService/internal/service/appointments"
	personsService "github.com/m04kA/SMC-TurnosService/internal/service/persons"
	personModels "github.com/m04kA/SMC-TurnosService/internal/service/persons/models"
	"github.com/m04kA/SMC-TurnosService/internal/slots"
	createAppointmentUC "github.com/m04kA/SMC-TurnosService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-TurnosService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TurnosService/pkg/logger"
	"github.com/m04kA/SMC-TurnosService/pkg/txmanager"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// seed заполняет postgres демонстрационными людьми и записями
// Данные проходят через сервисы, поэтому все бизнес-правила соблюдаются
func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	personsCount := flag.Int("persons", 50, "number of persons to create")
	appointmentsCount := flag.Int("appointments", 200, "number of appointments to try to create")
	days := flag.Int("days", 14, "spread appointments over this many days starting today")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("", cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	wrappedDB := dbmetrics.Wrap(db, nil)
	if err := wrappedDB.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}

	txMgr := txmanager.NewTransactionManager(wrappedDB)
	persons := personRepo.NewRepository(wrappedDB)
	appointments := appointmentRepo.NewRepository(wrappedDB)
	cache := availability.Noop{}

	start, _ := types.NewTimeStringFromString(cfg.Slots.Start)
	end, _ := types.NewTimeStringFromString(cfg.Slots.End)
	calendar, err := slots.NewCalendar(start, end, cfg.Slots.StepMinutes)
	if err != nil {
		log.Fatal("Invalid slot calendar: %v", err)
	}

	personSvc := personsService.NewService(persons, appointments, cache, txMgr, log)
	appointmentSvc := appointmentsService.NewService(appointments, cache, txMgr, log)
	createAppointment := createAppointmentUC.NewUseCase(appointments, persons, calendar, cache, txMgr,
		createAppointmentUC.Rules{
			CancellationWindowDays: cfg.Booking.CancellationWindowDays,
			MaxRecentCancellations: cfg.Booking.MaxRecentCancellations,
		}, log)

	faker := gofakeit.New(0)

	dnis := make([]int64, 0, *personsCount)
	for len(dnis) < *personsCount {
		enabled := faker.Number(1, 10) > 1
		req := &personModels.CreatePersonRequest{
			DNI:       int64(faker.Number(10_000_000, 49_999_999)),
			FullName:  faker.Name(),
			Email:     faker.Email(),
			Phone:     faker.Phone(),
			BirthDate: faker.DateRange(time.Now().AddDate(-80, 0, 0), time.Now().AddDate(-18, 0, 0)).Format(domain.DateFormat),
			Enabled:   &enabled,
		}

		person, err := personSvc.Create(ctx, req)
		if err != nil {
			if errors.Is(err, personsService.ErrDuplicateDNI) || errors.Is(err, personsService.ErrDuplicateEmail) {
				continue
			}
			log.Fatal("Failed to create person: %v", err)
		}
		dnis = append(dnis, person.DNI)
	}
	log.Info("Seeded %d persons", len(dnis))

	grid := calendar.Slots()
	today := domain.DateOnly(time.Now())
	created, skipped := 0, 0

	for i := 0; i < *appointmentsCount; i++ {
		resp, err := createAppointment.Execute(ctx, &createAppointmentUC.Request{
			PersonDNI: dnis[faker.Number(0, len(dnis)-1)],
			Date:      today.AddDate(0, 0, faker.Number(0, *days-1)),
			Slot:      grid[faker.Number(0, len(grid)-1)].String(),
		})
		if err != nil {
			if errors.Is(err, createAppointmentUC.ErrInternal) {
				log.Fatal("Failed to create appointment: %v", err)
			}
			// занятый слот, отключённый человек и т.п.
			skipped++
			continue
		}
		created++

		switch faker.Number(1, 10) {
		case 1, 2:
			_, err = appointmentSvc.Cancel(ctx, resp.ID)
		case 3, 4, 5:
			_, err = appointmentSvc.Confirm(ctx, resp.ID)
		}
		if err != nil {
			log.Fatal("Failed to change status of appointment %d: %v", resp.ID, err)
		}
	}

	log.Info("Seeded %d appointments (%d attempts rejected by business rules)", created, skipped)
}
