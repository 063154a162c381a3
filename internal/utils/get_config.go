package utils

import (
	"log"
	"os"

	"foodgram/domain"

	"gopkg.in/yaml.v2"
)

type Config struct {
	// Application
	AppURL  string `yaml:"APP_URL"`
	AppPort string `yaml:"APP_PORT"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT and short link keys
	JWTSecret     string `yaml:"JWT_SECRET"`
	ShortLinkSalt string `yaml:"SHORT_LINK_SALT"`

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

	// Recipe bounds
	MinCookingTime      int `yaml:"MIN_COOKING_TIME"`
	MaxCookingTime      int `yaml:"MAX_COOKING_TIME"`
	MinIngredientAmount int `yaml:"MIN_INGREDIENT_AMOUNT"`
	PageSize            int `yaml:"PAGE_SIZE"`
}

var config Config

func LoadConfig() {
	file, err := os.ReadFile("config.yaml")
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}

	// Set environment variables for keys that should be accessible via os.Getenv
	os.Setenv("JWT_SECRET", config.JWTSecret)
	os.Setenv("AWS_S3_BUCKET", config.AWSS3Bucket)
	os.Setenv("AWS_S3_REGION", config.AWSS3Region)
	os.Setenv("AWS_ACCESS_KEY", config.AWSAccessKey)
	os.Setenv("AWS_SECRET_KEY", config.AWSSecretKey)
}

func GetConfig(key string) string {
	switch key {
	case "APP_URL":
		return config.AppURL
	case "APP_PORT":
		return config.AppPort
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
	case "SHORT_LINK_SALT":
		return config.ShortLinkSalt
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
	default:
		return ""
	}
}

// GetRecipeConfig returns the recipe bounds with defaults applied for
// any value missing from config.yaml.
func GetRecipeConfig() domain.RecipeConfig {
	cfg := domain.RecipeConfig{
		MinCookingTime:      config.MinCookingTime,
		MaxCookingTime:      config.MaxCookingTime,
		MinIngredientAmount: config.MinIngredientAmount,
		PageSize:            config.PageSize,
	}
	if cfg.MinCookingTime <= 0 {
		cfg.MinCookingTime = domain.DefaultMinCookingTime
	}
	if cfg.MaxCookingTime <= 0 {
		cfg.MaxCookingTime = domain.DefaultMaxCookingTime
	}
	if cfg.MinIngredientAmount <= 0 {
		cfg.MinIngredientAmount = domain.DefaultMinIngredientAmount
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = domain.DefaultPageSize
	}
	return cfg
}
