package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-TurnosService/internal/domain"
	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

const (
	keyPrefix           = "turnos:available:"
	generationKeyPrefix = "turnos:available:gen:"

	// generationTTL должен быть заметно больше TTL слотов
	generationTTL = 24 * time.Hour
)

// setIfGeneration пишет слоты, только если поколение даты не изменилось с момента чтения
// KEYS[1] ключ слотов, KEYS[2] ключ поколения; ARGV: поколение, значение, TTL в мс
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

var (
	// ErrCache возвращается при ошибках обращения к redis
	ErrCache = errors.New("availability.cache: redis error")

	// ErrDecode возвращается, когда значение в кэше повреждено
	ErrDecode = errors.New("availability.cache: failed to decode cached slots")
)

// NewClient создает redis клиент и проверяет соединение
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrCache, err)
	}

	return client, nil
}

// Cache кэш свободных слотов по дате
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCache создает кэш поверх redis клиента
func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get возвращает слоты из кэша; found=false при промахе
func (c *Cache) Get(ctx context.Context, date time.Time) ([]types.TimeString, bool, error) {
	raw, err := c.client.Get(ctx, Key(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s: %v", ErrCache, Key(date), err)
	}

	var slots []types.TimeString
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return slots, true, nil
}

// Generation возвращает текущее поколение даты, 0 если даты ещё не инвалидировали
// Читается до запроса к хранилищу и передаётся в SetIfUnchanged
func (c *Cache) Generation(ctx context.Context, date time.Time) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get %s: %v", ErrCache, GenerationKey(date), err)
	}
	return gen, nil
}

// SetIfUnchanged сохраняет слоты на дату с TTL, если поколение всё ещё равно generation
// stored=false значит, что между чтением и записью дату инвалидировали
func (c *Cache) SetIfUnchanged(ctx context.Context, date time.Time, generation int64, slots []types.TimeString) (bool, error) {
	raw, err := json.Marshal(slots)
	if err != nil {
		return false, fmt.Errorf("%w: encode: %v", ErrCache, err)
	}

	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{Key(date), GenerationKey(date)},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("%w: set %s: %v", ErrCache, Key(date), err)
	}
	return stored == 1, nil
}

// Invalidate удаляет закэшированные слоты для дат и сдвигает их поколение
// После этого запись, начатая со старым поколением, в кэш не попадёт
func (c *Cache) Invalidate(ctx context.Context, dates ...time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = Key(d)
		pipe.Incr(ctx, GenerationKey(d))
		pipe.Expire(ctx, GenerationKey(d), generationTTL)
	}
	pipe.Del(ctx, keys...)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: invalidate: %v", ErrCache, err)
	}
	return nil
}

// Key ключ кэша для даты
func Key(date time.Time) string {
	return keyPrefix + date.Format(domain.DateFormat)
}

// GenerationKey ключ счётчика поколений для даты
func GenerationKey(date time.Time) string {
	return generationKeyPrefix + date.Format(domain.DateFormat)
}

// Noop кэш, который ничего не хранит (redis выключен)
type Noop struct{}

func (Noop) Get(ctx context.Context, date time.Time) ([]types.TimeString, bool, error) {
	return nil, false, nil
}

func (Noop) Generation(ctx context.Context, date time.Time) (int64, error) {
	return 0, nil
}

func (Noop) SetIfUnchanged(ctx context.Context, date time.Time, generation int64, slots []types.TimeString) (bool, error) {
	return false, nil
}

func (Noop) Invalidate(ctx context.Context, dates ...time.Time) error {
	return nil
}
