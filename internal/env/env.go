package env

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	AWSRegion            = "AWS_REGION"
	AWSID                = "AWS_ID"
	AWSSecret            = "AWS_SECRET"
	AWSToken             = "AWS_TOKEN"
	DynamoDBEndpoint     = "DYNAMODB_ENDPOINT"
	UserSecretKey        = "USER_SECRET"
	AdminSecretKey       = "ADMIN_SECRET"
	AuthRedisURL         = "AUTH_REDIS_URL"
	AuthRedisPass        = "AUTH_REDIS_PASS"
	RealtimeRedisURL     = "REALTIME_REDIS_URL"
	RealtimeRedisPass    = "REALTIME_REDIS_PASS"
	GCSBucket            = "GCS_BUCKET"
	GCSPublicBaseURL     = "GCS_PUBLIC_BASE_URL"
	GCSCredentialsFile   = "GCS_CREDENTIALS_FILE"
	StorageEmulatorHost  = "STORAGE_EMULATOR_HOST"
	CORSAllowedOrigins   = "CORS_ALLOWED_ORIGINS"
	LogMode              = "LOG_MODE"
	SiteConfigPath       = "SITE_CONFIG_PATH"
	PublicListenAddr     = "PUBLIC_LISTEN_ADDR"
	ClientListenAddr     = "CLIENT_LISTEN_ADDR"
	WSListenAddr         = "WS_LISTEN_ADDR"
	QueueSize            = "QUEUE_SIZE"
	QueueWorkers         = "QUEUE_WORKERS"
	DefaultAdminPassword = "DEFAULT_ADMIN_PASSWORD"
)

// ServerRequired lists the variables every HTTP server refuses to start without.
var ServerRequired = []string{
	AWSRegion,
	UserSecretKey,
	AdminSecretKey,
}

// Require reports every key in keys that is unset or blank.
func Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("env: required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func GetInt(key string, defaultVal int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func GetBool(key string, defaultVal bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

// GetList splits a comma separated variable, dropping empty entries.
func GetList(key string, defaultVal []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
