package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Pprof struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"pprof"`
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	LLM struct {
		Model            string        `mapstructure:"model"`
		EmbeddingModel   string        `mapstructure:"embeddingModel"`
		NarrativeTimeout time.Duration `mapstructure:"narrativeTimeout"`
	} `mapstructure:"llm"`
	Planner PlannerConfig `mapstructure:"planner"`
}

// PlannerConfig holds the tunables of the daily-plan assembly algorithm.
type PlannerConfig struct {
	TopK                 int     `mapstructure:"topK"`
	EmbeddingDim         int     `mapstructure:"embeddingDim"`
	SitesBudgetShare     float64 `mapstructure:"sitesBudgetShare"`
	FoodBudgetShare      float64 `mapstructure:"foodBudgetShare"`
	UtilizationTarget    float64 `mapstructure:"utilizationTarget"`
	OptimizeMinRemaining float64 `mapstructure:"optimizeMinRemaining"`
	UpgradeMinRemaining  float64 `mapstructure:"upgradeMinRemaining"`
	UpgradeShare         float64 `mapstructure:"upgradeShare"`
	UpgradeCap           float64 `mapstructure:"upgradeCap"`
	LunchUpgradeShare    float64 `mapstructure:"lunchUpgradeShare"`
	PremiumMinRemaining  float64 `mapstructure:"premiumMinRemaining"`
	PremiumShare         float64 `mapstructure:"premiumShare"`
	PremiumCapPerSite    float64 `mapstructure:"premiumCapPerSite"`
	DefaultAge           int     `mapstructure:"defaultAge"`
	DefaultBudget        float64 `mapstructure:"defaultBudget"`
	DefaultDays          int     `mapstructure:"defaultDays"`
}

// DefaultPlannerConfig returns the planner tunables used when no config file
// overrides them. Tests construct their own instead of loading files.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		TopK:                 10,
		EmbeddingDim:         384,
		SitesBudgetShare:     0.65,
		FoodBudgetShare:      0.35,
		UtilizationTarget:    0.85,
		OptimizeMinRemaining: 100,
		UpgradeMinRemaining:  200,
		UpgradeShare:         0.6,
		UpgradeCap:           500,
		LunchUpgradeShare:    0.4,
		PremiumMinRemaining:  150,
		PremiumShare:         0.3,
		PremiumCapPerSite:    200,
		DefaultAge:           25,
		DefaultBudget:        5000,
		DefaultDays:          3,
	}
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	if config.Planner.TopK == 0 {
		config.Planner = DefaultPlannerConfig()
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
