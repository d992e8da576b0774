package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prefix is prepended to every key looked up in the environment.
const Prefix = "ASH_CFG_"

// Keys read by ash.
const (
	KeyHistoryDB           = "HISTORY_DB"
	KeyDBMaxRetries        = "DB_MAX_RETRIES"
	KeyDBFailTimeout       = "DB_FAIL_TIMEOUT"
	KeyDBFailRandomTimeout = "DB_FAIL_RANDOM_TIMEOUT"
	KeyDefaultFormat       = "DEFAULT_FORMAT"
	KeyDefaultQuery        = "DEFAULT_QUERY"
	KeyHideUsage           = "HIDE_USAGE_FOR_NO_ARGS"
	KeySystemQueryFile     = "SYSTEM_QUERY_FILE"
	KeyUserQueryFile       = "USER_QUERY_FILE"
	KeyLogFile             = "LOG_FILE"
	KeyLogLevel            = "LOG_LEVEL"
	KeySkipLoopback        = "SKIP_LOOPBACK"
	KeyLogIPv4             = "LOG_IPV4"
	KeyLogIPv6             = "LOG_IPV6"
)

// Provider is the read-only view of configuration used by ash components.
type Provider interface {
	// Has reports whether the key is set at all.
	Has(key string) bool
	// GetString returns the value for key, or def when unset.
	GetString(key, def string) string
	// GetInt returns the integer value for key, or def when unset.
	// A set but malformed value yields 0.
	GetInt(key string, def int) int
	// Sets reports whether key is set to exactly "true", or def when unset.
	Sets(key string, def bool) bool
}

// Map is a Provider backed by an in-memory map.
// Keys are stored without the ASH_CFG_ prefix.
type Map map[string]string

var _ Provider = Map(nil)

func (m Map) lookup(key string) (string, bool) {
	v, ok := m[strings.TrimPrefix(key, Prefix)]
	return v, ok
}

func (m Map) Has(key string) bool {
	_, ok := m.lookup(key)
	return ok
}

func (m Map) GetString(key, def string) string {
	if v, ok := m.lookup(key); ok {
		return v
	}
	return def
}

func (m Map) GetInt(key string, def int) int {
	v, ok := m.lookup(key)
	if !ok {
		return def
	}
	return atoi(v)
}

func (m Map) Sets(key string, def bool) bool {
	if v, ok := m.lookup(key); ok {
		return v == "true"
	}
	return def
}

// FromEnviron builds a Map from KEY=VALUE pairs, keeping only ASH_CFG_ keys.
func FromEnviron(environ []string) Map {
	m := Map{}
	for _, kv := range environ {
		if !strings.HasPrefix(kv, Prefix) {
			continue
		}
		key, value, _ := strings.Cut(kv[len(Prefix):], "=")
		m[key] = value
	}
	return m
}

// Env snapshots the process environment.
func Env() Map {
	return FromEnviron(os.Environ())
}

// LoadFile reads a YAML mapping of keys to scalar values.
// Keys may be given with or without the ASH_CFG_ prefix.
func LoadFile(path string) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	m := Map{}
	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("parse config %s: key %q must be a scalar", path, k)
		case nil:
			m[strings.TrimPrefix(k, Prefix)] = ""
		default:
			m[strings.TrimPrefix(k, Prefix)] = fmt.Sprint(v)
		}
	}
	return m, nil
}

// Layered consults each provider in order; the first one that has a key wins.
type Layered []Provider

var _ Provider = Layered(nil)

func (l Layered) find(key string) (Provider, bool) {
	for _, p := range l {
		if p != nil && p.Has(key) {
			return p, true
		}
	}
	return nil, false
}

func (l Layered) Has(key string) bool {
	_, ok := l.find(key)
	return ok
}

func (l Layered) GetString(key, def string) string {
	if p, ok := l.find(key); ok {
		return p.GetString(key, def)
	}
	return def
}

func (l Layered) GetInt(key string, def int) int {
	if p, ok := l.find(key); ok {
		return p.GetInt(key, def)
	}
	return def
}

func (l Layered) Sets(key string, def bool) bool {
	if p, ok := l.find(key); ok {
		return p.Sets(key, def)
	}
	return def
}

// atoi mirrors C atoi: leading integer prefix, 0 when there is none.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c == '-' || c == '+') && end == 0 {
			end++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
