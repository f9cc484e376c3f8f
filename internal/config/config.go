package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env     string        `mapstructure:"env" validate:"oneof=development production test"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	MQ      MQConfig      `mapstructure:"mq"`
}

type HTTPConfig struct {
	Addr           string   `mapstructure:"addr" validate:"required"`
	PublicURL      string   `mapstructure:"public_url" validate:"required,url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DBConfig struct {
	Source string `mapstructure:"source" validate:"required"`
}

type AuthConfig struct {
	Provider   string        `mapstructure:"provider" validate:"oneof=local cognito"`
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required_if=Provider local"`
	Issuer     string        `mapstructure:"issuer"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	Cognito    CognitoConfig `mapstructure:"cognito"`
	LocalUsers []LocalUser   `mapstructure:"local_users" validate:"dive"`
}

type CognitoConfig struct {
	Region       string `mapstructure:"region"`
	UserPoolID   string `mapstructure:"user_pool_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

type LocalUser struct {
	Username     string `mapstructure:"username" validate:"required"`
	PasswordHash string `mapstructure:"password_hash" validate:"required"`
	Email        string `mapstructure:"email" validate:"omitempty,email"`
}

type StorageConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=s3 local"`
	Bucket          string        `mapstructure:"bucket" validate:"required_if=Driver s3"`
	Region          string        `mapstructure:"region" validate:"required_if=Driver s3"`
	Endpoint        string        `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Path            string        `mapstructure:"path" validate:"required_if=Driver local"`
	SigningSecret   string        `mapstructure:"signing_secret" validate:"required_if=Driver local"`
	URLTTL          time.Duration `mapstructure:"url_ttl" validate:"gte=0"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type MQConfig struct {
	URL      string `mapstructure:"url" validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange"`
	Buffer   int    `mapstructure:"buffer" validate:"gte=0"`
}

var validate = validator.New()

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.public_url", "http://localhost:8080")
	v.SetDefault("http.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("db.source", "")
	v.SetDefault("auth.provider", "local")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "cloud-drive")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.cognito.region", "")
	v.SetDefault("auth.cognito.user_pool_id", "")
	v.SetDefault("auth.cognito.client_id", "")
	v.SetDefault("auth.cognito.client_secret", "")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.signing_secret", "")
	v.SetDefault("storage.url_ttl", time.Hour)
	v.SetDefault("storage.max_upload_bytes", int64(100<<20))
	v.SetDefault("mq.url", "")
	v.SetDefault("mq.exchange", "cloud-drive.events")
	v.SetDefault("mq.buffer", 256)
}

// Load reads configs/settings.yml, then environment variables (AUTH_JWT_SECRET
// overrides auth.jwt_secret). A .env file in the working directory is loaded
// first when present.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"./configs", "/configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("settings")
	v.SetConfigType("yml")

	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if cfg.Auth.Provider == "cognito" {
		c := cfg.Auth.Cognito
		if c.Region == "" || c.UserPoolID == "" || c.ClientID == "" {
			return fmt.Errorf("auth.cognito: region, user_pool_id and client_id are required for the cognito provider")
		}
	}

	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
