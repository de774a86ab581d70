package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
)

type txKey struct{}

// Store in-memory хранилище людей и записей
// Используется для локального запуска без postgres (database.driver = "memory") и в тестах
type Store struct {
	mu           sync.RWMutex
	persons      map[int64]domain.Person
	appointments map[int64]domain.Appointment
	nextID       int64

	// txMu сериализует транзакции целиком
	txMu sync.Mutex
	now  func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		persons:      make(map[int64]domain.Person),
		appointments: make(map[int64]domain.Appointment),
		now:          time.Now,
	}
}

type snapshot struct {
	persons      map[int64]domain.Person
	appointments map[int64]domain.Appointment
	nextID       int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		persons:      make(map[int64]domain.Person, len(s.persons)),
		appointments: make(map[int64]domain.Appointment, len(s.appointments)),
		nextID:       s.nextID,
	}
	for k, v := range s.persons {
		snap.persons[k] = v
	}
	for k, v := range s.appointments {
		snap.appointments[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persons = snap.persons
	s.appointments = snap.appointments
	s.nextID = snap.nextID
}

// TxManager менеджер транзакций для Store
// Транзакции выполняются строго по одной, при ошибке состояние откатывается к снимку
type TxManager struct {
	store *Store
}

// NewTxManager создает менеджер транзакций над store
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	snap := m.store.snapshot()

	defer func() {
		if p := recover(); p != nil {
			m.store.restore(snap)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}
