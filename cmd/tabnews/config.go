package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/matheusdealcantara/tabnews.com.br/internal/logger"
)

const (
	TransportSMTP     = "smtp"
	TransportSendGrid = "sendgrid"
	TransportLog      = "log"
)

const (
	defaultListenAddr       = "localhost:3000"
	defaultLoggingLevel     = logger.LevelInfo
	defaultEnvironment      = logger.EnvProduction
	defaultWebserverHost    = "http://localhost:3000"
	defaultRecoveryTokenTTL = 15 * time.Minute
	defaultEmailTransport   = TransportLog
	defaultEmailFrom        = "contato@tabnews.com.br"
	defaultEmailFromName    = "TabNews"
	defaultSMTPPort         = 587
	defaultLocale           = "pt-BR"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Environment
	Environment string

	// Public origin of the web app, recovery links point there
	WebserverHost string

	// How long recovery token stays valid
	RecoveryTokenTTL time.Duration

	// One of smtp, sendgrid, log
	EmailTransport string
	EmailFrom      string
	EmailFromName  string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPTLS      bool

	SendGridAPIKey  string
	SendGridSandbox bool

	// Language of emails when client sends no Accept-Language
	DefaultLocale string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:         defaultLoggingLevel,
		ListenAddr:       defaultListenAddr,
		Environment:      defaultEnvironment,
		WebserverHost:    defaultWebserverHost,
		RecoveryTokenTTL: defaultRecoveryTokenTTL,
		EmailTransport:   defaultEmailTransport,
		EmailFrom:        defaultEmailFrom,
		EmailFromName:    defaultEmailFromName,
		SMTPPort:         defaultSMTPPort,
		DefaultLocale:    defaultLocale,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setDuration := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			*o = d
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			i, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = i
			return nil
		}
	}
	setBool := func(o *bool) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return err
			}
			*o = b
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":        setString(&c.ListenAddr),
		"DATABASE_URI":       setString(&c.DatabaseDSN),
		"LOG_LEVEL":          setString(&c.LogLevel),
		"ENVIRONMENT":        setString(&c.Environment),
		"WEBSERVER_HOST":     setString(&c.WebserverHost),
		"RECOVERY_TOKEN_TTL": setDuration(&c.RecoveryTokenTTL),
		"EMAIL_TRANSPORT":    setString(&c.EmailTransport),
		"EMAIL_FROM":         setString(&c.EmailFrom),
		"EMAIL_FROM_NAME":    setString(&c.EmailFromName),
		"EMAIL_SMTP_HOST":    setString(&c.SMTPHost),
		"EMAIL_SMTP_PORT":    setInt(&c.SMTPPort),
		"EMAIL_USER":         setString(&c.SMTPUsername),
		"EMAIL_PASSWORD":     setString(&c.SMTPPassword),
		"EMAIL_SMTP_TLS":     setBool(&c.SMTPTLS),
		"SENDGRID_API_KEY":   setString(&c.SendGridAPIKey),
		"SENDGRID_SANDBOX":   setBool(&c.SendGridSandbox),
		"DEFAULT_LOCALE":     setString(&c.DefaultLocale),
	}

	var errs []error
	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			errs = append(errs, fmt.Errorf("env %s: %w", key, err))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("tabnews", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVarP(&c.WebserverHost, "webserver-host", "w", c.WebserverHost, "Public origin used in recovery links")
	fs.DurationVar(&c.RecoveryTokenTTL, "recovery-ttl", c.RecoveryTokenTTL, "Recovery token lifetime")
	fs.StringVar(&c.EmailTransport, "email-transport", c.EmailTransport, "Email transport (smtp, sendgrid, log)")
	fs.StringVar(&c.EmailFrom, "email-from", c.EmailFrom, "Sender address")
	fs.StringVar(&c.EmailFromName, "email-from-name", c.EmailFromName, "Sender name")
	fs.StringVar(&c.SMTPHost, "smtp-host", c.SMTPHost, "SMTP server host")
	fs.IntVar(&c.SMTPPort, "smtp-port", c.SMTPPort, "SMTP server port")
	fs.StringVar(&c.SMTPUsername, "smtp-username", c.SMTPUsername, "SMTP username")
	fs.StringVar(&c.SMTPPassword, "smtp-password", c.SMTPPassword, "SMTP password")
	fs.BoolVar(&c.SMTPTLS, "smtp-tls", c.SMTPTLS, "Require TLS to SMTP server")
	fs.StringVar(&c.SendGridAPIKey, "sendgrid-api-key", c.SendGridAPIKey, "SendGrid API key")
	fs.BoolVar(&c.SendGridSandbox, "sendgrid-sandbox", c.SendGridSandbox, "Use SendGrid sandbox mode")
	fs.StringVar(&c.DefaultLocale, "locale", c.DefaultLocale, "Default locale of emails")

	return fs.Parse(args)
}

// Validate checks options that can't be defaulted
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.RecoveryTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("recovery token TTL must be positive, got %s", c.RecoveryTokenTTL))
	}
	if u, err := url.Parse(c.WebserverHost); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("webserver host must be absolute URL, got %q", c.WebserverHost))
	}

	switch c.EmailTransport {
	case TransportLog:
	case TransportSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP host is required for smtp transport"))
		}
	case TransportSendGrid:
		if c.SendGridAPIKey == "" {
			errs = append(errs, errors.New("SendGrid API key is required for sendgrid transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown email transport %q", c.EmailTransport))
	}

	return errors.Join(errs...)
}
