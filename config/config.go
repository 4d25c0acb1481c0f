package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort     string
	JWTSecret   string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	RateLimitPerMinute int
	AllowedOrigins     []string

	// Rewards tuning
	CheckInBasePoints   int
	CheckInBonusPoints  int
	SpinMinPoints       int
	SpinMaxPoints       int
	RewardCooldownHours int

	// Catalog maintenance
	CouponExpirySweepMinutes int
	SeedDemoData             bool

	// Gin framework configuration
	GinMode string
	GinPath string

	// Footer configuration
	FooterAboutTitle   string
	FooterAboutHTML    string
	FooterLinksTitle   string
	FooterLink1Name    string
	FooterLink1URL     string
	FooterLink2Name    string
	FooterLink2URL     string
	FooterLink3Name    string
	FooterLink3URL     string
	FooterContactTitle string
	FooterEmailLink    string

	// Notice bar configuration
	NoticeTitle string
	NoticeHTML  string

	// Redis for caching/token blacklist
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Admins
	AdminUsernames []string
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	normalizeSpinRange(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads a flat JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(key string) string {
		if v, ok := raw[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(key string) int {
		if v, ok := raw[key]; ok {
			if f, ok := v.(float64); ok {
				return int(f)
			}
		}
		return 0
	}
	getBool := func(key string) bool {
		if v, ok := raw[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(key string) []string {
		if v, ok := raw[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	out.AppPort = getString("AppPort")
	out.JWTSecret = getString("JWTSecret")
	out.DatabaseURI = getString("DatabaseURI")
	out.DBHost = getString("DBHost")
	out.DBPort = getString("DBPort")
	out.DBUser = getString("DBUser")
	out.DBPassword = getString("DBPassword")
	out.DBName = getString("DBName")
	out.RateLimitPerMinute = getInt("RateLimitPerMinute")
	out.AllowedOrigins = getStringSlice("AllowedOrigins")
	out.CheckInBasePoints = getInt("CheckInBasePoints")
	out.CheckInBonusPoints = getInt("CheckInBonusPoints")
	out.SpinMinPoints = getInt("SpinMinPoints")
	out.SpinMaxPoints = getInt("SpinMaxPoints")
	out.RewardCooldownHours = getInt("RewardCooldownHours")
	out.CouponExpirySweepMinutes = getInt("CouponExpirySweepMinutes")
	out.SeedDemoData = getBool("SeedDemoData")
	out.GinMode = getString("GinMode")
	out.GinPath = getString("GinPath")
	out.FooterAboutTitle = getString("FooterAboutTitle")
	out.FooterAboutHTML = getString("FooterAboutHTML")
	out.FooterLinksTitle = getString("FooterLinksTitle")
	out.FooterLink1Name = getString("FooterLink1Name")
	out.FooterLink1URL = getString("FooterLink1URL")
	out.FooterLink2Name = getString("FooterLink2Name")
	out.FooterLink2URL = getString("FooterLink2URL")
	out.FooterLink3Name = getString("FooterLink3Name")
	out.FooterLink3URL = getString("FooterLink3URL")
	out.FooterContactTitle = getString("FooterContactTitle")
	out.FooterEmailLink = getString("FooterEmailLink")
	out.NoticeTitle = getString("NoticeTitle")
	out.NoticeHTML = getString("NoticeHTML")
	out.RedisHost = getString("RedisHost")
	out.RedisPort = getInt("RedisPort")
	out.RedisDB = getInt("RedisDB")
	out.RedisPassword = getString("RedisPassword")
	out.LogLevel = getString("LogLevel")
	out.LogPath = getString("LogPath")
	out.LogMaxSizeMB = getInt("LogMaxSizeMB")
	out.LogMaxBackups = getInt("LogMaxBackups")
	out.LogMaxAgeDays = getInt("LogMaxAgeDays")
	out.LogCompress = getBool("LogCompress")
	out.AdminUsernames = getStringSlice("AdminUsernames")

	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "dealspot"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.CheckInBasePoints == 0 {
		c.CheckInBasePoints = 5
	}
	if c.CheckInBonusPoints == 0 {
		c.CheckInBonusPoints = 10
	}
	if c.SpinMinPoints == 0 {
		c.SpinMinPoints = 1
	}
	if c.SpinMaxPoints == 0 {
		c.SpinMaxPoints = 5
	}
	if c.RewardCooldownHours == 0 {
		c.RewardCooldownHours = 24
	}
	if c.CouponExpirySweepMinutes == 0 {
		c.CouponExpirySweepMinutes = 30
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogPath == "" {
		c.LogPath = "logs/app.log"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// normalizeSpinRange falls back to the default spin range when configuration
// produced one the reward draw cannot sample (min below 1 or max below min).
func normalizeSpinRange(c *AppConfig) {
	if c.SpinMinPoints < 1 || c.SpinMaxPoints < c.SpinMinPoints {
		log.Printf("invalid spin range [%d,%d], using defaults", c.SpinMinPoints, c.SpinMaxPoints)
		c.SpinMinPoints = 1
		c.SpinMaxPoints = 5
	}
}

func applyEnvOverrides(c *AppConfig) {
	if v := os.Getenv("APP_PORT"); v != "" {
		c.AppPort = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("DATABASE_URI"); v != "" {
		c.DatabaseURI = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DBHost = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.DBPort = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.DBUser = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DBPassword = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.DBName = v
	}
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("CHECKIN_BASE_POINTS"); v != "" {
		c.CheckInBasePoints = mustParseInt(v)
	}
	if v := os.Getenv("CHECKIN_BONUS_POINTS"); v != "" {
		c.CheckInBonusPoints = mustParseInt(v)
	}
	if v := os.Getenv("SPIN_MIN_POINTS"); v != "" {
		c.SpinMinPoints = mustParseInt(v)
	}
	if v := os.Getenv("SPIN_MAX_POINTS"); v != "" {
		c.SpinMaxPoints = mustParseInt(v)
	}
	if v := os.Getenv("REWARD_COOLDOWN_HOURS"); v != "" {
		c.RewardCooldownHours = mustParseInt(v)
	}
	if v := os.Getenv("COUPON_EXPIRY_SWEEP_MINUTES"); v != "" {
		c.CouponExpirySweepMinutes = mustParseInt(v)
	}
	if v := os.Getenv("SEED_DEMO_DATA"); v != "" {
		c.SeedDemoData = parseBool(v)
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.GinMode = v
	}
	if v := os.Getenv("GIN_PATH"); v != "" {
		c.GinPath = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = parseBool(v)
	}
	if v := os.Getenv("ADMIN_USERNAMES"); v != "" {
		c.AdminUsernames = splitAndTrim(v)
	}
}

func mustParseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		log.Fatalf("invalid integer in configuration: %q", s)
	}
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			res = append(res, t)
		}
	}
	return res
}
