package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	personRepo "github.com/m04kA/SMC-TurnosService/internal/infra/storage/person"
)

// PersonRepository in-memory аналог person.Repository с теми же ошибками
type PersonRepository struct {
	store *Store
}

func NewPersonRepository(store *Store) *PersonRepository {
	return &PersonRepository{store: store}
}

func (r *PersonRepository) Create(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.persons[p.DNI]; exists {
		return nil, personRepo.ErrDuplicateDNI
	}
	if s.emailTakenLocked(p.Email, 0) {
		return nil, personRepo.ErrDuplicateEmail
	}

	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.persons[p.DNI] = *p

	out := *p
	return &out, nil
}

func (r *PersonRepository) GetByDNI(ctx context.Context, dni int64) (*domain.Person, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.persons[dni]
	if !ok {
		return nil, personRepo.ErrPersonNotFound
	}
	return &p, nil
}

func (r *PersonRepository) ExistsByEmail(ctx context.Context, email string, excludeDNI int64) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.emailTakenLocked(email, excludeDNI), nil
}

func (r *PersonRepository) List(ctx context.Context, filter domain.PersonFilter) ([]*domain.Person, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Person, 0, len(s.persons))
	for _, p := range s.persons {
		if filter.Enabled != nil && p.Enabled != *filter.Enabled {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DNI < out[j].DNI })
	return out, nil
}

func (r *PersonRepository) Update(ctx context.Context, p *domain.Person) (*domain.Person, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.persons[p.DNI]
	if !ok {
		return nil, personRepo.ErrPersonNotFound
	}
	if s.emailTakenLocked(p.Email, p.DNI) {
		return nil, personRepo.ErrDuplicateEmail
	}

	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = s.now()
	s.persons[p.DNI] = *p

	out := *p
	return &out, nil
}

// Delete удаляет человека и каскадно его записи
func (r *PersonRepository) Delete(ctx context.Context, dni int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.persons[dni]; !ok {
		return personRepo.ErrPersonNotFound
	}
	delete(s.persons, dni)

	for id, a := range s.appointments {
		if a.PersonDNI == dni {
			delete(s.appointments, id)
		}
	}
	return nil
}

func (s *Store) emailTakenLocked(email string, excludeDNI int64) bool {
	for dni, p := range s.persons {
		if dni != excludeDNI && strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}
