package slots

import (
	"fmt"

	"github.com/m04kA/SMC-TurnosService/pkg/types"
)

// Calendar фиксированная сетка слотов рабочего дня
// Последовательность слотов вычисляется один раз в NewCalendar и больше не меняется
type Calendar struct {
	start    types.TimeString
	end      types.TimeString
	step     int
	startMin int
	lastMin  int // минуты последнего допустимого слота (end - step)

	slots []types.TimeString
	index map[types.TimeString]struct{}
}

// NewCalendar создает сетку слотов [start, end) с шагом stepMinutes
// Слот допустим, только если он целиком помещается до end
func NewCalendar(start, end types.TimeString, stepMinutes int) (*Calendar, error) {
	startMin, err := start.Minutes()
	if err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrInvalidConfig, err)
	}
	endMin, err := end.Minutes()
	if err != nil {
		return nil, fmt.Errorf("%w: end: %v", ErrInvalidConfig, err)
	}
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidConfig, stepMinutes)
	}
	if endMin-startMin < stepMinutes {
		return nil, fmt.Errorf("%w: no slot fits between %s and %s", ErrInvalidConfig, start, end)
	}

	c := &Calendar{
		start:    start,
		end:      end,
		step:     stepMinutes,
		startMin: startMin,
		index:    make(map[types.TimeString]struct{}),
	}

	for m := startMin; m+stepMinutes <= endMin; m += stepMinutes {
		slot, err := types.NewTimeStringFromMinutes(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.slots = append(c.slots, slot)
		c.index[slot] = struct{}{}
		c.lastMin = m
	}

	return c, nil
}

// Slots возвращает копию упорядоченной последовательности слотов
func (c *Calendar) Slots() []types.TimeString {
	out := make([]types.TimeString, len(c.slots))
	copy(out, c.slots)
	return out
}

// Contains returns true if the slot belongs to the grid
func (c *Calendar) Contains(slot types.TimeString) bool {
	_, ok := c.index[slot]
	return ok
}

// Len число слотов в сетке
func (c *Calendar) Len() int {
	return len(c.slots)
}

func (c *Calendar) Start() types.TimeString { return c.start }
func (c *Calendar) End() types.TimeString   { return c.end }
func (c *Calendar) Step() int               { return c.step }

// Parse разбирает "HH:MM" и проверяет попадание в сетку
// Порядок проверок: формат, шаг, диапазон
func (c *Calendar) Parse(text string) (types.TimeString, error) {
	slot, err := types.NewTimeStringFromString(text)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	minutes, err := slot.Minutes()
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, text)
	}

	if (minutes-c.startMin)%c.step != 0 {
		return "", fmt.Errorf("%w: %s is not a multiple of %d minutes from %s", ErrInvalidGranularity, slot, c.step, c.start)
	}

	if minutes < c.startMin || minutes > c.lastMin {
		return "", fmt.Errorf("%w: %s not in [%s, %s]", ErrOutOfRange, slot, c.start, c.slots[len(c.slots)-1])
	}

	return slot, nil
}

// Available возвращает слоты сетки, которых нет в occupied, по возрастанию
func (c *Calendar) Available(occupied []types.TimeString) []types.TimeString {
	taken := make(map[types.TimeString]struct{}, len(occupied))
	for _, s := range occupied {
		taken[s] = struct{}{}
	}

	free := make([]types.TimeString, 0, len(c.slots))
	for _, s := range c.slots {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	return free
}
