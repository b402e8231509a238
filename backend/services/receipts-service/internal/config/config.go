package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	cron "github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

// Enabled is false when no credentials are configured; receipts are then
// generated without a stored PDF.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKeyID != "" && s.AccessKeySecret != "" && s.Bucket != ""
}

type Config struct {
	OrganizationName string
	AppName          string
	Env              string
	AppPort          string
	AppUrl           string
	FrontendUrl      string
	LandlordUIPath   string

	// Database
	DBUrl string

	// Redis (optional sweep locks)
	RedisURL string

	// SendGrid / Twilio
	SendGridAPIKey    string
	SendGridFromEmail string
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromPhone   string

	// Object storage
	Storage StorageConfig

	// Auth
	RSAPublicKey *rsa.PublicKey
	JWTIssuer    string
	CronSecret   string

	// Scheduling
	ReminderCronSpec string
	AutoSendCronSpec string
	DefaultTimezone  string
	SignedURLTTL     time.Duration
	ConfirmTokenTTL  time.Duration

	// LaunchDarkly flags
	LDFlag_SendgridSandboxMode bool
	LDFlag_CORSHighSecurity    bool
	LDFlag_SeedDbWithTestData  bool
	LDFlag_SMSReminders        bool
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second
	defaultConfigPath   = "config.yaml"
)

// build-time overrides
var (
	AppName             = "receipts-service"
	LDServerContextKey  = "receipts-service"
	LDServerContextKind = "service"
)

// rawConfig mirrors config.yaml. Secrets stay in the environment.
type rawConfig struct {
	Frontend struct {
		URL          string `yaml:"url"`
		LandlordPath string `yaml:"landlord_path"`
	} `yaml:"frontend"`
	Storage struct {
		Endpoint string `yaml:"endpoint"`
		Bucket   string `yaml:"bucket"`
	} `yaml:"storage"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	Schedule struct {
		ReminderCron    string `yaml:"reminder_cron"`
		AutoSendCron    string `yaml:"auto_send_cron"`
		DefaultTimezone string `yaml:"default_timezone"`
	} `yaml:"schedule"`
	Receipts struct {
		SignedURLTTL    string `yaml:"signed_url_ttl"`
		ConfirmTokenTTL string `yaml:"confirm_token_ttl"`
	} `yaml:"receipts"`
	JWT struct {
		Issuer string `yaml:"issuer"`
	} `yaml:"jwt"`
}

// LoadConfig is Load for binaries: any problem is fatal.
func LoadConfig() *Config {
	utils.Logger.Info("Loading config for app: ", AppName)
	cfg, err := Load()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to load config")
	}
	return cfg
}

// Load reads .env (when present), the optional YAML file at CONFIG_PATH with
// ${VAR} expansion, then the environment. Feature flags come from
// LaunchDarkly when LD_SDK_KEY is set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		utils.Logger.WithError(err).Warn("Ignoring unreadable .env file")
	}

	raw, err := readYAML(envOrDefault("CONFIG_PATH", defaultConfigPath))
	if err != nil {
		return nil, err
	}

	env, err := requireEnv("ENV")
	if err != nil {
		return nil, err
	}
	appPort, err := requireEnv("APP_PORT")
	if err != nil {
		return nil, err
	}
	appUrl, err := requireEnv("APP_URL_FROM_ANYWHERE")
	if err != nil {
		return nil, err
	}
	dbURL, err := requireEnv("DB_URL")
	if err != nil {
		return nil, err
	}
	cronSecret, err := requireEnv("CRON_SECRET")
	if err != nil {
		return nil, err
	}

	pubB64, err := requireEnv("RSA_PUBLIC_KEY_BASE64")
	if err != nil {
		return nil, err
	}
	pubKey, err := parseRSAPublicKey(pubB64)
	if err != nil {
		return nil, err
	}

	signedTTL, err := durationOrDefault(raw.Receipts.SignedURLTTL, constants.SignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("receipts.signed_url_ttl: %w", err)
	}
	tokenTTL, err := durationOrDefault(raw.Receipts.ConfirmTokenTTL, constants.ConfirmTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("receipts.confirm_token_ttl: %w", err)
	}

	cfg := &Config{
		OrganizationName:  OrganizationName,
		AppName:           envOrDefault("APP_NAME", AppName),
		Env:               env,
		AppPort:           appPort,
		AppUrl:            strings.TrimRight(appUrl, "/"),
		FrontendUrl:       strings.TrimRight(utils.FirstNonEmpty(raw.Frontend.URL, os.Getenv("FRONTEND_URL"), appUrl), "/"),
		LandlordUIPath:    utils.FirstNonEmpty(raw.Frontend.LandlordPath, constants.LandlordUIPath),
		DBUrl:             dbURL,
		RedisURL:          utils.FirstNonEmpty(os.Getenv("REDIS_URL"), raw.Redis.URL),
		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail: envOrDefault("SENDGRID_FROM_EMAIL", "no-reply@mt-courtage.fr"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:   os.Getenv("TWILIO_FROM_PHONE"),
		Storage: StorageConfig{
			Endpoint:        utils.FirstNonEmpty(os.Getenv("OSS_ENDPOINT"), raw.Storage.Endpoint),
			AccessKeyID:     os.Getenv("OSS_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("OSS_ACCESS_KEY_SECRET"),
			Bucket:          utils.FirstNonEmpty(os.Getenv("OSS_BUCKET"), raw.Storage.Bucket),
		},
		RSAPublicKey:     pubKey,
		JWTIssuer:        utils.FirstNonEmpty(os.Getenv("JWT_ISSUER"), raw.JWT.Issuer),
		CronSecret:       cronSecret,
		ReminderCronSpec: utils.FirstNonEmpty(raw.Schedule.ReminderCron, constants.ReminderCronSpec),
		AutoSendCronSpec: utils.FirstNonEmpty(raw.Schedule.AutoSendCron, constants.AutoSendCronSpec),
		DefaultTimezone:  utils.FirstNonEmpty(raw.Schedule.DefaultTimezone, constants.DefaultTimezone),
		SignedURLTTL:     signedTTL,
		ConfirmTokenTTL:  tokenTTL,
	}

	for _, spec := range []string{cfg.ReminderCronSpec, cfg.AutoSendCronSpec} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
		}
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("invalid default timezone %q: %w", cfg.DefaultTimezone, err)
	}

	if err := loadFlags(cfg); err != nil {
		return nil, err
	}

	if cfg.SendGridAPIKey == "" {
		utils.Logger.Warn("SENDGRID_API_KEY missing; email delivery disabled")
	}
	if !cfg.Storage.Enabled() {
		utils.Logger.Warn("OSS storage not configured; receipts will be generated without PDF")
	}
	return cfg, nil
}

func (c *Config) Close() {}

// loadFlags reads feature flags from LaunchDarkly, or from env booleans
// when no SDK key is configured (local dev, tests).
func loadFlags(cfg *Config) error {
	ldSDKKey := os.Getenv("LD_SDK_KEY")
	if ldSDKKey == "" {
		cfg.LDFlag_SendgridSandboxMode = envBool("SENDGRID_SANDBOX_MODE", cfg.Env != "prod")
		cfg.LDFlag_CORSHighSecurity = envBool("CORS_HIGH_SECURITY", cfg.Env == "prod")
		cfg.LDFlag_SeedDbWithTestData = envBool("SEED_DB_WITH_TEST_DATA", false)
		cfg.LDFlag_SMSReminders = envBool("SMS_REMINDERS", false)
		utils.Logger.Debug("LD_SDK_KEY not set; feature flags read from environment")
		return nil
	}

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		return fmt.Errorf("create LaunchDarkly client: %w", err)
	}
	defer ldClient.Close()
	if !ldClient.Initialized() {
		return errors.New("LaunchDarkly client failed to initialize")
	}

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	flags := []struct {
		key  string
		dest *bool
	}{
		{"sendgrid_sandbox_mode", &cfg.LDFlag_SendgridSandboxMode},
		{"cors_high_security", &cfg.LDFlag_CORSHighSecurity},
		{"seed_db_with_test_data", &cfg.LDFlag_SeedDbWithTestData},
		{"sms_reminders", &cfg.LDFlag_SMSReminders},
	}
	for _, f := range flags {
		v, err := ldClient.BoolVariation(f.key, ctx, false)
		if err != nil {
			return fmt.Errorf("retrieve %s flag: %w", f.key, err)
		}
		*f.dest = v
		utils.Logger.Debugf("%s flag: %t", f.key, v)
	}
	return nil
}

func readYAML(path string) (rawConfig, error) {
	var raw rawConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return raw, nil
	}
	if err != nil {
		return raw, fmt.Errorf("read config file %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return raw, fmt.Errorf("parse config YAML: %w", err)
	}
	return raw, nil
}

func parseRSAPublicKey(b64 string) (*rsa.PublicKey, error) {
	pubPEM, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("RSA_PUBLIC_KEY_BASE64 is not base64: %w", err)
	}
	if block, _ := pem.Decode(pubPEM); block == nil {
		return nil, errors.New("failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("parse RSA public key: %w", err)
	}
	return pubKey, nil
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s env var is missing", key)
	}
	return v, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func durationOrDefault(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
