package logging

import (
	"fmt"
	"sort"
	"sync"
)

// Компоненты песочницы, у которых есть собственный логгер
const (
	ComponentSim      = "sim"
	ComponentWorld    = "world"
	ComponentAPI      = "api"
	ComponentEventBus = "eventbus"
	ComponentRender   = "render"
)

// LoggerManager раздаёт логгеры компонентов и держит их уровни в согласии
// с конфигурацией
type LoggerManager struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
	opts    Options
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

func newLoggerManager(opts Options) *LoggerManager {
	return &LoggerManager{loggers: make(map[string]*Logger), opts: opts}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = newLoggerManager(DefaultOptions())
	})
	return globalManager
}

// levelsFor возвращает уровни компонента с учётом переопределений
func (o Options) levelsFor(component string) (console, file LogLevel) {
	if level, ok := o.Components[component]; ok {
		return level, level
	}
	return o.ConsoleLevel, o.FileLevel
}

// Configure задаёт параметры логгеров. Уровни применяются и к уже созданным
// логгерам; каталог файлов действует только на новые.
func (lm *LoggerManager) Configure(opts Options) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.opts = opts
	for component, logger := range lm.loggers {
		logger.SetLevels(opts.levelsFor(component))
	}
}

// GetLogger возвращает логгер для компонента, создавая его при необходимости
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.RLock()
	logger, exists := lm.loggers[component]
	lm.mu.RUnlock()
	if exists {
		return logger, nil
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	opts := lm.opts
	opts.ConsoleLevel, opts.FileLevel = lm.opts.levelsFor(component)
	logger, err := NewLogger(component, opts)
	if err != nil {
		return nil, fmt.Errorf("логгер компонента %s: %w", component, err)
	}

	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер; если файл открыть не удалось, пишет только в консоль
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err != nil {
		return mustConsoleLogger(component)
	}
	return logger
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var lastErr error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			lastErr = fmt.Errorf("закрытие логгера %s: %w", component, err)
		}
	}

	lm.loggers = make(map[string]*Logger)
	return lastErr
}

// ListComponents возвращает имена созданных логгеров по алфавиту
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel запоминает уровень компонента. Логгер, созданный позже, получит его сразу.
func (lm *LoggerManager) SetLogLevel(component string, level LogLevel) error {
	if level < TRACE || level > OFF {
		return fmt.Errorf("недопустимый уровень %d для %s", level, component)
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make(map[string]LogLevel, len(lm.opts.Components)+1)
	for name, l := range lm.opts.Components {
		components[name] = l
	}
	components[component] = level
	lm.opts.Components = components

	if logger, exists := lm.loggers[component]; exists {
		logger.SetLevels(level, level)
	}
	return nil
}

// GetComponentLogger возвращает логгер компонента
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetSimLogger() *Logger {
	return GetComponentLogger(ComponentSim)
}

func GetWorldLogger() *Logger {
	return GetComponentLogger(ComponentWorld)
}

func GetAPILogger() *Logger {
	return GetComponentLogger(ComponentAPI)
}
