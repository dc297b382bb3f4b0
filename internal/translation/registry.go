package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	// ErrNoEngine is returned when no engine has been registered yet.
	ErrNoEngine = errors.New("no translation engine available")
	// ErrEngineNotRegistered is returned when selecting an unknown engine name.
	ErrEngineNotRegistered = errors.New("translation engine is not registered")
)

// EngineManager stores engines by name and forwards calls to the current one.
// The first registered engine becomes current.
type EngineManager struct {
	mu      sync.RWMutex
	engines map[string]Engine
	order   []string
	current string
	logger  zerolog.Logger
}

func NewEngineManager(logger zerolog.Logger) *EngineManager {
	return &EngineManager{
		engines: make(map[string]Engine),
		logger:  logger,
	}
}

// Register adds one engine. Registering a name twice replaces the engine in place.
func (m *EngineManager) Register(engine Engine) error {
	if m == nil {
		return fmt.Errorf("engine manager is nil")
	}
	if engine == nil {
		return fmt.Errorf("engine is nil")
	}
	name := normalizeEngineName(engine.Name())
	if name == "" {
		return fmt.Errorf("engine name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.engines[name]; !exists {
		m.order = append(m.order, name)
	}
	m.engines[name] = engine
	if m.current == "" {
		m.current = name
	}
	return nil
}

// SetCurrent selects the engine used by Translate and LookupWord.
func (m *EngineManager) SetCurrent(name string) error {
	if m == nil {
		return fmt.Errorf("engine manager is nil")
	}
	resolved := normalizeEngineName(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.engines[resolved]; !ok {
		return fmt.Errorf("%w: %q (available: %s)", ErrEngineNotRegistered, resolved, strings.Join(m.order, ", "))
	}
	if m.current != resolved {
		m.logger.Info().Str("from", m.current).Str("to", resolved).Msg("translation engine switched")
	}
	m.current = resolved
	return nil
}

// Current returns the selected engine.
func (m *EngineManager) Current() (Engine, error) {
	if m == nil {
		return nil, ErrNoEngine
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == "" {
		return nil, ErrNoEngine
	}
	return m.engines[m.current], nil
}

// CurrentName returns the selected engine name, or "" when none is registered.
func (m *EngineManager) CurrentName() string {
	if m == nil {
		return ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Names lists registered engines in registration order.
func (m *EngineManager) Names() []string {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// Translate delegates to the current engine. The only error is ErrNoEngine;
// engine failures are reported inside the Result.
func (m *EngineManager) Translate(ctx context.Context, req Request) (Result, error) {
	engine, err := m.Current()
	if err != nil {
		return Result{}, err
	}
	return engine.Translate(ctx, req), nil
}

// LookupWord delegates to the current engine.
func (m *EngineManager) LookupWord(ctx context.Context, word, fromLang, toLang string) (Result, error) {
	engine, err := m.Current()
	if err != nil {
		return Result{}, err
	}
	return engine.LookupWord(ctx, word, fromLang, toLang), nil
}

// Reload swaps in a new engine set, selects preferred (or the first engine
// when preferred is unknown) and closes the engines it replaced.
func (m *EngineManager) Reload(engines []Engine, preferred string) error {
	if m == nil {
		return fmt.Errorf("engine manager is nil")
	}

	next := make(map[string]Engine, len(engines))
	order := make([]string, 0, len(engines))
	for _, engine := range engines {
		if engine == nil {
			return fmt.Errorf("engine is nil")
		}
		name := normalizeEngineName(engine.Name())
		if name == "" {
			return fmt.Errorf("engine name is required")
		}
		if _, exists := next[name]; !exists {
			order = append(order, name)
		}
		next[name] = engine
	}

	current := normalizeEngineName(preferred)
	if _, ok := next[current]; !ok {
		if current != "" {
			m.logger.Warn().Str("engine", current).Msg("preferred translation engine is not registered")
		}
		current = ""
		if len(order) > 0 {
			current = order[0]
		}
	}

	m.mu.Lock()
	previous := m.engines
	m.engines = next
	m.order = order
	m.current = current
	m.mu.Unlock()

	var errs []error
	for name, engine := range previous {
		if next[name] == engine {
			continue
		}
		if err := engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s engine: %w", name, err))
		}
	}
	m.logger.Info().Strs("engines", order).Str("current", current).Msg("translation engines reloaded")
	return errors.Join(errs...)
}

// CloseAll releases every registered engine and joins their errors.
func (m *EngineManager) CloseAll() error {
	if m == nil {
		return nil
	}

	m.mu.RLock()
	engines := make([]Engine, 0, len(m.order))
	for _, name := range m.order {
		engines = append(engines, m.engines[name])
	}
	m.mu.RUnlock()

	var errs []error
	for _, engine := range engines {
		if err := engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s engine: %w", engine.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func normalizeEngineName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
