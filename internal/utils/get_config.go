package utils

import (
	"log"
	"os"
	"reflect"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server
	AppPort  string `yaml:"APP_PORT"`
	AppURL   string `yaml:"APP_URL"`
	Timezone string `yaml:"TIMEZONE"`

	// Ledger storage
	StoreDriver string `yaml:"STORE_DRIVER"`
	SQLitePath  string `yaml:"SQLITE_PATH"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Nutrition estimation
	EstimatorProvider string `yaml:"ESTIMATOR_PROVIDER"`
	GeminiAPIKey      string `yaml:"GEMINI_API_KEY"`
	GeminiModel       string `yaml:"GEMINI_MODEL"`
	AnthropicAPIKey   string `yaml:"ANTHROPIC_API_KEY"`
	AnthropicModel    string `yaml:"ANTHROPIC_MODEL"`
	OpenFoodFactsURL  string `yaml:"OPENFOODFACTS_URL"`

	// Features
	AllowMealDelete *bool `yaml:"ALLOW_MEAL_DELETE"`
}

var (
	config     Config
	configOnce sync.Once
)

// LoadConfig reads .env (if present) and config.yaml once. Environment
// variables win over the yaml file.
func LoadConfig() {
	configOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			log.Printf("Error loading .env file: %s\n", err)
		}

		file, err := os.ReadFile("config.yaml")
		if err == nil {
			if err := yaml.Unmarshal(file, &config); err != nil {
				log.Printf("Error parsing YAML file: %s\n", err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Error reading YAML file: %s\n", err)
		}

		applyEnv(&config)
	})
}

// applyEnv overrides every yaml-tagged field with the environment variable of
// the same name.
func applyEnv(c *Config) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("yaml")
		value, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Ptr:
			b, err := strconv.ParseBool(value)
			if err != nil {
				log.Printf("Ignoring %s=%q: %s\n", key, value, err)
				continue
			}
			field.Set(reflect.ValueOf(&b))
		}
	}
}

func GetConfig(key string) string {
	switch key {
	case "APP_PORT":
		return withDefault(config.AppPort, "8080")
	case "APP_URL":
		return config.AppURL
	case "TIMEZONE":
		return config.Timezone
	case "STORE_DRIVER":
		return withDefault(config.StoreDriver, "sqlite")
	case "SQLITE_PATH":
		return withDefault(config.SQLitePath, "./data/kalorikollen.db")
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "ESTIMATOR_PROVIDER":
		return withDefault(config.EstimatorProvider, "gemini")
	case "GEMINI_API_KEY":
		return config.GeminiAPIKey
	case "GEMINI_MODEL":
		return withDefault(config.GeminiModel, "gemini-1.5-flash")
	case "ANTHROPIC_API_KEY":
		return config.AnthropicAPIKey
	case "ANTHROPIC_MODEL":
		return withDefault(config.AnthropicModel, "claude-sonnet-4-20250514")
	case "OPENFOODFACTS_URL":
		return withDefault(config.OpenFoodFactsURL, "https://world.openfoodfacts.org")
	case "ALLOW_MEAL_DELETE":
		if config.AllowMealDelete == nil || *config.AllowMealDelete {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
