package reports

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/service/reports/models"
)

type ReportService interface {
	ByDate(ctx context.Context, date time.Time) (*models.AppointmentsReport, error)
	ByPerson(ctx context.Context, dni int64) (*models.PersonAppointmentsReport, error)
	CancelledInPeriod(ctx context.Context, from, to time.Time) (*models.AppointmentsReport, error)
	ConfirmedInPeriod(ctx context.Context, from, to time.Time) (*models.AppointmentsReport, error)
	FrequentCancellers(ctx context.Context, minCancelled int) (*models.CancellersReport, error)
	PersonsStatus(ctx context.Context) (*models.PersonsStatusReport, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
