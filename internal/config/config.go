package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	StoreDriver string // memory|sqlite|postgres
	DBDSN       string

	BlobBasePath string

	EnableAuth     bool
	AuthHMACSecret string
	AdminUser      string
	AdminPassHash  string // bcrypt

	CORSOrigins []string

	RedisAddr     string
	RedisPassword string
	StatsCacheTTL time.Duration

	SeedDemo       bool
	ImportMaxBytes int64
}

// source resolves a key from the process environment first, then from the
// optional YAML file.
type source struct {
	env  func(string) string
	file map[string]string
}

// Load reads .env (if present) and the YAML file named by CONFIG_FILE, then
// resolves the configuration with environment variables taking precedence.
func Load() Config {
	_ = godotenv.Load()

	file := map[string]string{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("config: could not read %s: %v", path, err)
		} else if file, err = parseFile(data); err != nil {
			log.Fatalf("config: parse %s: %v", path, err)
		}
	}
	return source{env: os.Getenv, file: file}.config()
}

// FromEnv resolves the configuration from environment variables only.
func FromEnv() Config {
	return source{env: os.Getenv}.config()
}

// parseFile accepts a flat YAML mapping. Keys are matched case-insensitively
// against the environment variable names, so http_addr and HTTP_ADDR are
// equivalent.
func parseFile(data []byte) (map[string]string, error) {
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		switch t := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(t))
			for _, p := range t {
				parts = append(parts, fmt.Sprint(p))
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(t)
		}
	}
	return out, nil
}

func (s source) config() Config {
	mode := Mode(s.or("MODE", string(ModeOffline)))
	driver := strings.ToLower(s.or("STORE_DRIVER", "memory"))
	return Config{
		Mode:           mode,
		HTTPAddr:       s.or("HTTP_ADDR", ":8080"),
		StoreDriver:    driver,
		DBDSN:          s.or("DB_DSN", ""),
		BlobBasePath:   s.or("BLOB_BASE_PATH", "./data"),
		EnableAuth:     s.flag("ENABLE_AUTH", mode == ModeOnline),
		AuthHMACSecret: s.or("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		AdminUser:      s.or("ADMIN_USER", "admin"),
		AdminPassHash:  s.or("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:    s.list("CORS_ORIGINS", "http://localhost:3000,http://localhost:5000,http://localhost:5173"),
		RedisAddr:      s.or("REDIS_ADDR", ""),
		RedisPassword:  s.or("REDIS_PASSWORD", ""),
		StatsCacheTTL:  s.duration("STATS_CACHE_TTL", 30*time.Second),
		SeedDemo:       s.flag("SEED_DEMO", driver == "memory"),
		ImportMaxBytes: s.size("IMPORT_MAX_BYTES", 1<<20),
	}
}

func (s source) lookup(k string) string {
	if s.env != nil {
		if v := s.env(k); v != "" {
			return v
		}
	}
	return s.file[k]
}

func (s source) or(k, def string) string {
	v := s.lookup(k)
	if v == "" {
		return def
	}
	return v
}

func (s source) flag(k string, def bool) bool {
	switch s.lookup(k) {
	case "1", "true", "TRUE", "True", "yes", "YES":
		return true
	case "0", "false", "FALSE", "False", "no", "NO":
		return false
	default:
		return def
	}
}

func (s source) list(k, def string) []string {
	v := s.or(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// duration accepts Go duration syntax or a bare number of seconds.
func (s source) duration(k string, def time.Duration) time.Duration {
	v := s.lookup(k)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("config: invalid %s=%q, using %s", k, v, def)
	return def
}

func (s source) size(k string, def int64) int64 {
	v := s.lookup(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		log.Printf("config: invalid %s=%q, using %d", k, v, def)
		return def
	}
	return n
}
