package app

import (
	"time"

	"github.com/calyptra/units-backend/internal/platform/logger"
	"github.com/calyptra/units-backend/internal/services"
	"github.com/calyptra/units-backend/internal/utils"
)

type Config struct {
	Engine services.Config

	CATokenSecret string
	BootstrapFile string
	UsageInterval time.Duration
	Environment   string
	Version       string
}

func LoadConfig(log *logger.Logger) Config {
	defaults := services.DefaultConfig()
	engine := services.Config{
		DefaultUnits:         utils.GetEnvAsFloat("DEFAULT_UNITS", defaults.DefaultUnits, log),
		PublishCost:          utils.GetEnvAsFloat("APP_PUBLISH_COST", defaults.PublishCost, log),
		DefaultCostPerUnit:   utils.GetEnvAsFloat("DEFAULT_COST_PER_UNIT", defaults.DefaultCostPerUnit, log),
		WriterProfitFraction: utils.GetEnvAsFloat("WRITER_PROFIT_FRACTION", defaults.WriterProfitFraction, log),
		AppRegistrationDays:  utils.GetEnvAsFloat("APP_REGISTRATION_DAYS", defaults.AppRegistrationDays, log),
		HoldTime:             time.Duration(utils.GetEnvAsInt("TRANSFER_HOLD_MS", int(defaults.HoldTime.Milliseconds()), log)) * time.Millisecond,
	}
	return Config{
		Engine:        engine,
		CATokenSecret: utils.GetEnv("CA_TOKEN_SECRET", "defaultsecret", log),
		BootstrapFile: utils.GetEnv("BOOTSTRAP_FILE", "", log),
		UsageInterval: time.Duration(utils.GetEnvAsInt("USAGE_INTERVAL_SECONDS", 3600, log)) * time.Second,
		Environment:   utils.GetEnv("ENVIRONMENT", "development", log),
		Version:       utils.GetEnv("SERVICE_VERSION", "", log),
	}
}
