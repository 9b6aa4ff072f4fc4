package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AgingBucket classifies overdue invoices by days past due.
type AgingBucket struct {
	Label   string `mapstructure:"label"`
	MinDays int    `mapstructure:"minDays"`
	MaxDays *int   `mapstructure:"maxDays"`
}

// DunningConfig controls the overdue sweep and aging report.
type DunningConfig struct {
	GraceDays    int           `mapstructure:"graceDays"`
	AgingBuckets []AgingBucket `mapstructure:"agingBuckets"`
}

func DefaultDunningConfig() DunningConfig {
	return DunningConfig{
		GraceDays: 0,
		AgingBuckets: []AgingBucket{
			{Label: "0-30", MinDays: 0, MaxDays: intPtr(30)},
			{Label: "31-60", MinDays: 31, MaxDays: intPtr(60)},
			{Label: "60+", MinDays: 61, MaxDays: nil},
		},
	}
}

func intPtr(v int) *int { return &v }

// DunningConfigHolder serves the current dunning config and hot-reloads it
// when the backing file changes.
type DunningConfigHolder struct {
	current atomic.Value // holds DunningConfig
}

func NewDunningConfigHolder() (*DunningConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("dunning")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/kanri/config")
	v.AddConfigPath("/etc/kanri")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KANRI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultDunningConfig()
		v.SetDefault("dunning.graceDays", defaults.GraceDays)
		v.SetDefault("dunning.agingBuckets", defaults.AgingBuckets)
	}

	var cfg DunningConfig
	if err := v.UnmarshalKey("dunning", &cfg); err != nil {
		return nil, err
	}
	if err := validateDunningConfig(cfg); err != nil {
		return nil, err
	}

	holder := &DunningConfigHolder{}
	holder.current.Store(cfg)

	if v.ConfigFileUsed() == "" {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated DunningConfig
		if err := v.UnmarshalKey("dunning", &updated); err != nil {
			log.Printf("[dunning-config] reload failed: %v", err)
			return
		}
		if err := validateDunningConfig(updated); err != nil {
			log.Printf("[dunning-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[dunning-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticDunningConfigHolder wraps a fixed config with no file watching.
func NewStaticDunningConfigHolder(cfg DunningConfig) *DunningConfigHolder {
	holder := &DunningConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *DunningConfigHolder) Get() DunningConfig {
	return h.current.Load().(DunningConfig)
}

func validateDunningConfig(cfg DunningConfig) error {
	if cfg.GraceDays < 0 {
		return errors.New("dunning.graceDays cannot be negative")
	}
	if len(cfg.AgingBuckets) == 0 {
		return errors.New("dunning.agingBuckets cannot be empty")
	}
	return nil
}
