package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"smarthub/internal/schedule"

	"github.com/joho/godotenv"
)

// 存储后端
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// 灯光判定策略
const (
	LightPolicyTemperature = "temperature"
	LightPolicySchedule    = "schedule"
)

// Config smarthub 服务配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Store struct {
		Backend string
		// MemoryFallback 数据库不可达时退回内存存储（仅开发用）
		MemoryFallback bool
	}
	Mongo    MongoConfig
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig
	Sunset   SunsetConfig
	Engine   struct {
		LightPolicy string
	}
	CORS struct {
		Origins []string
	}
	Log struct {
		Level  string
		Format string
	}
}

type MongoConfig struct {
	URL         string
	Database    string
	TLSInsecure bool
	Timeout     time.Duration
}

// DatabaseConfig PostgreSQL 连接配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT 桥接配置（默认关闭）
type MQTTConfig struct {
	Enabled       bool
	Broker        string
	ClientID      string
	Username      string
	Password      string
	QoS           byte
	SensorTopic   string // 设备上报采样
	ActuatorTopic string // 下发风扇/灯光状态
}

// SunsetConfig 日出日落服务配置
type SunsetConfig struct {
	APIURL       string
	Lat          float64
	Lng          float64
	Offset       time.Duration // 加到上游时间上的固定偏移
	Timeout      time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8000")

	cfg.Store.Backend = strings.ToLower(getEnv("STORE_BACKEND", BackendMongo))
	switch cfg.Store.Backend {
	case BackendMongo, BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q (want mongo, postgres or memory)", cfg.Store.Backend)
	}
	cfg.Store.MemoryFallback = getEnvBool("STORE_MEMORY_FALLBACK", false)

	cfg.Mongo.URL = getEnv("MONGO_URL", "mongodb://localhost:27017")
	cfg.Mongo.Database = getEnv("MONGO_DATABASE", "tank_man")
	cfg.Mongo.TLSInsecure = getEnvBool("MONGO_TLS_INSECURE", false)
	cfg.Mongo.Timeout = getEnvDuration("MONGO_TIMEOUT", 10*time.Second)

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "tank_man")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.MQTT.Enabled = getEnvBool("MQTT_ENABLED", false)
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "smarthub")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))
	cfg.MQTT.SensorTopic = getEnv("MQTT_SENSOR_TOPIC", "smarthub/sensors/update")
	cfg.MQTT.ActuatorTopic = getEnv("MQTT_ACTUATOR_TOPIC", "smarthub/actuators/state")
	if cfg.MQTT.QoS > 2 {
		return nil, fmt.Errorf("invalid MQTT_QOS %d", cfg.MQTT.QoS)
	}

	cfg.Sunset.APIURL = getEnv("SUNSET_API_URL", "https://api.sunrise-sunset.org/json")
	cfg.Sunset.Lat = getEnvFloat("SUNSET_LAT", 18.1096)
	cfg.Sunset.Lng = getEnvFloat("SUNSET_LNG", -77.2975)
	cfg.Sunset.Timeout = getEnvDuration("SUNSET_TIMEOUT", 10*time.Second)
	cfg.Sunset.CacheEnabled = getEnvBool("SUNSET_CACHE_ENABLED", cfg.Redis.Enabled)
	cfg.Sunset.CacheTTL = getEnvDuration("SUNSET_CACHE_TTL", 24*time.Hour)
	offset, err := schedule.ParseOffset(getEnv("SUNSET_OFFSET", "06:00:00"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUNSET_OFFSET: %w", err)
	}
	cfg.Sunset.Offset = offset

	cfg.Engine.LightPolicy = strings.ToLower(getEnv("LIGHT_POLICY", LightPolicyTemperature))
	if cfg.Engine.LightPolicy != LightPolicyTemperature && cfg.Engine.LightPolicy != LightPolicySchedule {
		return nil, fmt.Errorf("invalid LIGHT_POLICY %q (want temperature or schedule)", cfg.Engine.LightPolicy)
	}

	cfg.CORS.Origins = splitList(getEnv("CORS_ORIGINS", "https://ecse3038-lab3-tester.netlify.app"))

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return i
}

func getEnvFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
