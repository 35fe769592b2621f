package infra

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix env prefix for viper
const EnvPrefix = "LMS"

// EnvDevelopment development runtime environment
const EnvDevelopment = "development"

// AppConfig App option object, shared by the client and the dev server
type AppConfig struct {
	AppID string `mapstructure:"app_id" json:"app_id" yaml:"app_id" validate:"required"` // Application ID
	Env   string `mapstructure:"env" json:"env" yaml:"env" validate:"oneof=development production"`
	API   struct {
		BaseURL string        `mapstructure:"base_url" json:"base_url" yaml:"base_url" validate:"required,url"` // remote REST API base
		Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`                            // per request timeout
	} `mapstructure:"api" json:"api" yaml:"api"`
	Storage struct {
		TokenPath string `mapstructure:"token_path" json:"token_path" yaml:"token_path" validate:"required"` // durable token file
	} `mapstructure:"storage" json:"storage" yaml:"storage"`
	Logging struct {
		FilePath string `mapstructure:"file_path" json:"file_path" yaml:"file_path"`
		Level    string `mapstructure:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	} `mapstructure:"logging" json:"logging" yaml:"logging"`
	Server struct {
		Host           string        `mapstructure:"host" json:"host" yaml:"host"` // dev server bind host
		Port           int           `mapstructure:"port" json:"port" yaml:"port"` // dev server listen port
		JWTMethod      string        `mapstructure:"jwt_method" json:"jwt_method" yaml:"jwt_method" validate:"oneof=HS256 HS512"`
		JWTSecret      string        `mapstructure:"jwt_secret" json:"jwt_secret" yaml:"jwt_secret"` // required by lmsd, checked at startup
		SessionTimeout time.Duration `mapstructure:"session_timeout" json:"session_timeout" yaml:"session_timeout"`
		RefreshTimeout time.Duration `mapstructure:"refresh_timeout" json:"refresh_timeout" yaml:"refresh_timeout"` // refresh token lifetime
		IDLength       int           `mapstructure:"id_length" json:"id_length" yaml:"id_length"`                   // length of generated entity IDs
	} `mapstructure:"server" json:"server" yaml:"server"`
	KVStore struct {
		Backend  string `mapstructure:"backend" json:"backend" yaml:"backend" validate:"oneof=memory redis"` // revoked token store backend
		Host     string `mapstructure:"host" json:"host" yaml:"host"`
		Port     int    `mapstructure:"port" json:"port" yaml:"port"`
		Password string `mapstructure:"password" json:"password" yaml:"password"`
	} `mapstructure:"kv" json:"kv" yaml:"kv"`
	DevOP struct {
		APM bool `mapstructure:"apm" json:"apm" yaml:"apm"`
	} `mapstructure:"devop" json:"devop" yaml:"devop"`
}

// InitConfig init app config using viper
func InitConfig() (*AppConfig, error) {
	// app
	pflag.String("app_id", "lms", "application identifier")
	pflag.String("env", "development", "runtime environment, can be 'development' or 'production'")

	// remote API
	pflag.String("api.base_url", "http://127.0.0.1:8081/api", "LMS REST API base URL")
	pflag.Duration("api.timeout", 30*time.Second, "request timeout(m, s and h units are supported), eg.30s")

	// client storage
	pflag.String("storage.token_path", "", "path of the durable token file, defaults to ~/.lms/session.json")

	// logging
	pflag.String("logging.level", "info", "logging level")
	pflag.String("logging.file_path", "", "log to file")

	// dev server
	pflag.String("server.host", "", "dev server binding address")
	pflag.Int("server.port", 8081, "dev server listening port")
	pflag.String("server.jwt_method", "HS256", "hash algorithm used for issued tokens")
	pflag.String("server.jwt_secret", "", "token signing secret (required by lmsd)")
	pflag.Duration("server.session_timeout", 15*time.Minute, "access token lifetime")
	pflag.Duration("server.refresh_timeout", 24*time.Hour, "refresh token lifetime")
	pflag.Int("server.id_length", 24, "set length of generated ID for entities")

	// kv storage
	pflag.String("kv.backend", "memory", "revoked token store backend, 'memory' or 'redis'")
	pflag.String("kv.host", "127.0.0.1", "kv host")
	pflag.Int("kv.port", 6379, "kv server port")
	pflag.String("kv.password", "", "kv server password")

	// DevOp
	pflag.Bool("devop.apm", false, "enable apm metrics")

	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config = new(AppConfig)
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	if config.Storage.TokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory for token storage: %w", err)
		}
		config.Storage.TokenPath = filepath.Join(home, ".lms", "session.json")
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if config.Logging.Level == "debug" {
		if configJSON, err := json.MarshalIndent(config, "", "  "); err == nil {
			log.Printf("App config: %s\n", string(configJSON))
		}
	}
	return config, nil
}

func validateConfig(config *AppConfig) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "-" || name == "" {
			name = fld.Tag.Get("yaml")
			if name == "-" || name == "" {
				return ""
			}
		}
		return name
	})
	err := validate.Struct(config)
	if _, ok := err.(*validator.InvalidValidationError); ok {
		log.Fatalf("Failed to validate config: %s", err)
	}
	if err == nil {
		return nil
	}

	var msg []string
	for _, field := range err.(validator.ValidationErrors) {
		namespace := field.Namespace()
		fieldName := namespace[strings.IndexByte(namespace, '.')+1:] // trim top level namespace
		switch field.Tag() {
		case "required":
			msg = append(msg, fmt.Sprintf("%s is required", fieldName))
		case "oneof":
			msg = append(msg, fmt.Sprintf("%s must be one of (%s)", fieldName, field.Param()))
		case "url":
			msg = append(msg, fmt.Sprintf("%s must be a valid URL", fieldName))
		}
	}
	if len(msg) > 0 {
		return fmt.Errorf("failed to validate config: \n%s", strings.Join(msg, "\n"))
	}
	return nil
}
