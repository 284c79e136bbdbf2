package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BillingConfig holds the reconciliation tunables. All of them are
// operational knobs; none of them changes aggregate correctness.
type BillingConfig struct {
	// DelinquencyThreshold is the unpaid-month count at which a client
	// is flagged delinquent.
	DelinquencyThreshold int `mapstructure:"delinquencyThreshold"`
	// ChunkSize bounds how many clients are evaluated per batch.
	ChunkSize int `mapstructure:"chunkSize"`
	// MinYear/MaxYear bound the years a payment toggle may touch.
	MinYear int `mapstructure:"minYear"`
	MaxYear int `mapstructure:"maxYear"`
	// TopOverdueLimit caps the overdue-clients list in the overall summary.
	TopOverdueLimit int `mapstructure:"topOverdueLimit"`
	// DefaultPerPage is the listing page size when the caller omits one.
	DefaultPerPage int `mapstructure:"defaultPerPage"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DelinquencyThreshold: 3,
		ChunkSize:            100,
		MinYear:              2000,
		MaxYear:              2100,
		TopOverdueLimit:      5,
		DefaultPerPage:       20,
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewBillingConfigHolder reads billing.yml and keeps it hot-reloaded.
func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/watchline/config")
	v.AddConfigPath("/etc/watchline")
	v.AddConfigPath(".")

	v.SetEnvPrefix("WATCHLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.delinquencyThreshold", defaults.DelinquencyThreshold)
	v.SetDefault("billing.chunkSize", defaults.ChunkSize)
	v.SetDefault("billing.minYear", defaults.MinYear)
	v.SetDefault("billing.maxYear", defaults.MaxYear)
	v.SetDefault("billing.topOverdueLimit", defaults.TopOverdueLimit)
	v.SetDefault("billing.defaultPerPage", defaults.DefaultPerPage)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated BillingConfig
		if err := v.UnmarshalKey("billing", &updated); err != nil {
			log.Printf("[billing-config] reload failed: %v", err)
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Printf("[billing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[billing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticBillingConfigHolder pins a config without file watching. Test use.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.DelinquencyThreshold < 1 {
		return errors.New("billing.delinquencyThreshold must be >= 1")
	}
	if cfg.ChunkSize < 1 {
		return errors.New("billing.chunkSize must be >= 1")
	}
	if cfg.MinYear >= cfg.MaxYear {
		return errors.New("billing.minYear must be below billing.maxYear")
	}
	if cfg.TopOverdueLimit < 1 {
		return errors.New("billing.topOverdueLimit must be >= 1")
	}
	if cfg.DefaultPerPage < 1 {
		return errors.New("billing.defaultPerPage must be >= 1")
	}
	return nil
}
