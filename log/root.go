package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	gethlog "github.com/ethereum/go-ethereum/log"
)

const (
	DecodeModule    = "a64_decode"    // instruction word matching
	TranslateModule = "a64_translate" // IR emission per instruction
	JITModule       = "jit"           // translation units
	CacheModule     = "jit_cache"     // translation cache
	CLIModule       = "cli"           // command line front end
)

var root atomic.Value

func init() {
	root.Store(NewLogger(NewHandler(os.Stderr, LevelInfo, false)))
}

func ParseLevel(lvl string) (slog.Level, error) {
	switch strings.ToUpper(lvl) {
	case "MAX", "MAXVERBOSITY":
		return levelMaxVerbosity, nil
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "CRIT", "CRITICAL":
		return LevelCrit, nil
	default:
		return 0, fmt.Errorf("invalid level: %s", lvl)
	}
}

// NewHandler returns a terminal handler, or a JSON handler when asJSON is set.
func NewHandler(w io.Writer, lvl slog.Level, asJSON bool) slog.Handler {
	if asJSON {
		return gethlog.JSONHandlerWithLevel(w, lvl)
	}
	return gethlog.NewTerminalHandlerWithLevel(w, lvl, true)
}

func InitLogger(logLevel string, asJSON bool) error {
	logLvl, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	SetDefault(NewLogger(NewHandler(os.Stderr, logLvl, asJSON)))
	return nil
}

// SetDefault sets the default global logger
func SetDefault(l Logger) {
	root.Store(l)
	if lg, ok := l.(*logger); ok {
		slog.SetDefault(lg.inner)
	}
}

// Root returns the root logger
func Root() Logger {
	return root.Load().(Logger)
}

// --- Module management ---

var (
	moduleMu      sync.RWMutex
	moduleEnabled = map[string]bool{
		DecodeModule:    false,
		TranslateModule: false,
		JITModule:       false,
		CacheModule:     false,
		CLIModule:       false,
	}
)

// EnableModule enables logging for the specified module.
func EnableModule(module string) {
	moduleMu.Lock()
	defer moduleMu.Unlock()
	moduleEnabled[module] = true
}

// DisableModule disables logging for the specified module.
func DisableModule(module string) {
	moduleMu.Lock()
	defer moduleMu.Unlock()
	moduleEnabled[module] = false
}

// EnableModules enables a comma separated module list. "all" enables every known module.
func EnableModules(list string) {
	for _, m := range strings.Split(list, ",") {
		m = strings.TrimSpace(m)
		switch m {
		case "":
		case "all":
			for _, known := range []string{DecodeModule, TranslateModule, JITModule, CacheModule, CLIModule} {
				EnableModule(known)
			}
		default:
			EnableModule(m)
		}
	}
}

// isModuleEnabled checks if logging is enabled for the given module.
func isModuleEnabled(module string) bool {
	moduleMu.RLock()
	defer moduleMu.RUnlock()
	return moduleEnabled[module]
}

// Trace logs a message at the trace level for a specific module.
func Trace(module string, msg string, ctx ...interface{}) {
	if !isModuleEnabled(module) {
		return
	}
	Root().Write(LevelTrace, module, msg, ctx...)
}

// Debug logs a message at the debug level for a specific module.
func Debug(module string, msg string, ctx ...interface{}) {
	if !isModuleEnabled(module) {
		return
	}
	Root().Write(slog.LevelDebug, module, msg, ctx...)
}

// The rest of the logging functions (Info, Warn, Error) dont filter on module
func Info(module string, msg string, ctx ...interface{}) {
	Root().Write(slog.LevelInfo, module, msg, ctx...)
}

func Warn(module string, msg string, ctx ...interface{}) {
	Root().Write(slog.LevelWarn, module, msg, ctx...)
}

func Error(module string, msg string, ctx ...interface{}) {
	Root().Write(slog.LevelError, module, msg, ctx...)
}
