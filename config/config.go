package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "EGIS_CONFIG_FILE"
	envPrefix         = "EGIS"
	defaultConfigFile = "/config.yaml"
)

type storage struct {
	Backend string `mapstructure:"backend"`
	DSN     string `mapstructure:"dsn"`
}

type catalog struct {
	URL               string        `mapstructure:"url"`
	Component         string        `mapstructure:"component"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	ERPName           string        `mapstructure:"erp_name"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

type mapping struct {
	SellingPriceList    string `mapstructure:"selling_price_list"`
	RetailPriceList     string `mapstructure:"retail_price_list"`
	ItemGroup           string `mapstructure:"item_group"`
	GroupByProductGroup bool   `mapstructure:"group_by_product_group"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

type broker struct {
	SeedBrokers        []string `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string `mapstructure:"schema_registry_urls"`
	ImportedItemsTopic string   `mapstructure:"imported_items_topic"`
	TLS                tlsFiles `mapstructure:"tls"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	Storage        storage    `mapstructure:"storage"`
	Catalog        catalog    `mapstructure:"catalog"`
	Mapping        mapping    `mapstructure:"mapping"`
	Broker         broker     `mapstructure:"broker"`
}

// Enabled reports whether import events should be published.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

func Load() Config {
	_ = godotenv.Load()

	cfg, err := load(os.Args[1:])
	if err != nil {
		die(err)
	}
	return cfg
}

func load(args []string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, explicit := getConfigFilepath(args)
	v.SetConfigFile(path)

	err := v.ReadInConfig()
	if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return Config{}, err
	}

	var cfg Config
	err = v.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8080")

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.dsn", "")

	v.SetDefault("catalog.url", "https://www.egis-online.de/cgi-bin/WebObjects/EBC.woa/wa")
	v.SetDefault("catalog.component", "")
	v.SetDefault("catalog.user", "")
	v.SetDefault("catalog.password", "")
	v.SetDefault("catalog.erp_name", "egis-bridge")
	v.SetDefault("catalog.timeout", "30s")
	v.SetDefault("catalog.requests_per_second", 0)
	v.SetDefault("catalog.burst", 1)

	v.SetDefault("mapping.selling_price_list", "Standard Selling")
	v.SetDefault("mapping.retail_price_list", "")
	v.SetDefault("mapping.item_group", "EGIS")
	v.SetDefault("mapping.group_by_product_group", false)

	v.SetDefault("broker.seed_brokers", []string{})
	v.SetDefault("broker.schema_registry_urls", []string{})
	v.SetDefault("broker.imported_items_topic", "egis-imported-items")
	v.SetDefault("broker.tls.ca", "")
	v.SetDefault("broker.tls.cert", "")
	v.SetDefault("broker.tls.key", "")
}

// getConfigFilepath reports the config file path and whether it was given
// explicitly by flag or environment.
func getConfigFilepath(args []string) (string, bool) {
	cmdLine := pflag.NewFlagSet("egis", pflag.ContinueOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", defaultConfigFile, "config file")
	_ = cmdLine.Parse(args)

	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env, true
	}
	return *arg, cmdLine.Changed("config")
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q

	Storage:
	Backend=%q
	DSN=%q

	Catalog:
	URL=%q
	Component=%q
	User=%q
	Password=%q
	ERPName=%q
	Timeout=%s
	RequestsPerSecond=%v
	Burst=%d

	Mapping:
	SellingPriceList=%q
	RetailPriceList=%q
	ItemGroup=%q
	GroupByProductGroup=%t

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	ImportedItemsTopic=%q
	TLS=%t

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.Storage.Backend,
		mask(c.Storage.DSN),
		c.Catalog.URL,
		c.Catalog.Component,
		c.Catalog.User,
		mask(c.Catalog.Password),
		c.Catalog.ERPName,
		c.Catalog.Timeout,
		c.Catalog.RequestsPerSecond,
		c.Catalog.Burst,
		c.Mapping.SellingPriceList,
		c.Mapping.RetailPriceList,
		c.Mapping.ItemGroup,
		c.Mapping.GroupByProductGroup,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.ImportedItemsTopic,
		c.Broker.TLS.Enabled(),
	)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "******"
}
