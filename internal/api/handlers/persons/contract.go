package persons

import (
	"context"

	"github.com/m04kA/SMC-TurnosService/internal/service/persons/models"
)

type PersonService interface {
	Create(ctx context.Context, req *models.CreatePersonRequest) (*models.PersonResponse, error)
	GetByDNI(ctx context.Context, dni int64) (*models.PersonResponse, error)
	List(ctx context.Context, req *models.ListPersonsRequest) (*models.PersonListResponse, error)
	Update(ctx context.Context, dni int64, req *models.UpdatePersonRequest) (*models.PersonResponse, error)
	Delete(ctx context.Context, dni int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
