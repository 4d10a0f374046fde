package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Schedule ScheduleConfig
	Reminder ReminderConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

// StorageConfig selects the persistence backend and, for the file
// backend, where the tabular stores live.
type StorageConfig struct {
	Backend      string `mapstructure:"backend"` // "file" or "postgres"
	PatientsFile string `mapstructure:"patients_file"`
	ScheduleFile string `mapstructure:"schedule_file"`
	BookingsFile string `mapstructure:"bookings_file"`
	IntakeForm   string `mapstructure:"intake_form"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ScheduleConfig struct {
	// DefaultSlotFallback hands out a 10:00 slot when the directory is
	// entirely unseeded. Demo/bootstrap behavior; a real deployment
	// should leave this off and treat an empty directory as a
	// configuration error.
	DefaultSlotFallback bool `mapstructure:"default_slot_fallback"`
	// ConsumeSlots marks a slot unavailable once booked. Off by
	// default: the original schedule is a static daily template.
	ConsumeSlots bool `mapstructure:"consume_slots"`
	// SeedDays controls how many days of demo slots bootstrap creates.
	SeedDays int `mapstructure:"seed_days"`
}

type ReminderConfig struct {
	Mode string `mapstructure:"mode"` // "demo" or "production"
}

// Credentials are the secrets and per-deployment links that only ever
// arrive through the environment, never the config file.
type Credentials struct {
	EmailAddress      string `envconfig:"EMAIL_ADDRESS"`
	EmailAppPassword  string `envconfig:"EMAIL_APP_PASSWORD"`
	TwilioAccountSID  string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `envconfig:"TWILIO_PHONE_NUMBER"`
	CalendlyNew       string `envconfig:"CALENDLY_NEW" default:"https://calendly.com/clinic/new-patient"`
	CalendlyReturning string `envconfig:"CALENDLY_RETURNING" default:"https://calendly.com/clinic/returning-patient"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.patients_file", "patients.csv")
	viper.SetDefault("storage.schedule_file", "doctor_schedules.csv")
	viper.SetDefault("storage.bookings_file", "appointments.csv")
	viper.SetDefault("storage.intake_form", "New Patient Intake Form.pdf")
	viper.SetDefault("schedule.default_slot_fallback", false)
	viper.SetDefault("schedule.consume_slots", false)
	viper.SetDefault("schedule.seed_days", 14)
	viper.SetDefault("reminder.mode", "demo")
	viper.SetDefault("redis.addr", "")

	viper.BindEnv("reminder.mode", "REMINDER_MODE")
	viper.BindEnv("storage.patients_file", "PATIENTS_FILE")
	viper.BindEnv("storage.schedule_file", "SCHEDULE_FILE")
	viper.BindEnv("storage.bookings_file", "APPOINTMENTS_FILE")
	viper.BindEnv("storage.intake_form", "INTAKE_FORM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional; defaults plus env cover the
		// demo deployment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func LoadCredentials() (*Credentials, error) {
	var creds Credentials
	if err := envconfig.Process("", &creds); err != nil {
		return nil, fmt.Errorf("failed to read credentials from env: %w", err)
	}
	return &creds, nil
}
