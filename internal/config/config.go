package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Here     HereConfig     `yaml:"here" mapstructure:"here"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Resolve  ResolveConfig  `yaml:"resolve" mapstructure:"resolve"`
	Score    ScoreWeights   `yaml:"score" mapstructure:"score"`
	Classify ClassifyConfig `yaml:"classify" mapstructure:"classify"`
	Parcel   ParcelConfig   `yaml:"parcel" mapstructure:"parcel"`
	History  HistoryConfig  `yaml:"history" mapstructure:"history"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// HereConfig holds the geocoding provider settings.
type HereConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	GeocodeURL  string  `yaml:"geocode_url" mapstructure:"geocode_url"`
	DiscoverURL string  `yaml:"discover_url" mapstructure:"discover_url"`
	ReverseURL  string  `yaml:"reverse_url" mapstructure:"reverse_url"`
	RPS         float64 `yaml:"rps" mapstructure:"rps"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// LLMConfig holds the address normalization model settings.
type LLMConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ResolveConfig configures the per-batch pipeline behavior.
type ResolveConfig struct {
	Workers      int    `yaml:"workers" mapstructure:"workers"`
	MaxVariants  int    `yaml:"max_variants" mapstructure:"max_variants"`
	TopK         int    `yaml:"top_k" mapstructure:"top_k"`
	DefaultState string `yaml:"default_state" mapstructure:"default_state"`
	DefaultCity  string `yaml:"default_city" mapstructure:"default_city"`
	// ParcelCity is the municipality with cadastral coverage; parcel
	// re-ranking only runs for rows whose city matches it.
	ParcelCity string `yaml:"parcel_city" mapstructure:"parcel_city"`
}

// ScoreWeights isolates every heuristic scoring constant so the scoring
// function stays auditable and testable per rule. Defaults are the values
// tuned in production; they are configuration, not algorithm.
type ScoreWeights struct {
	PostalCode         int `yaml:"postal_code" mapstructure:"postal_code"`
	TypeAddress        int `yaml:"type_address" mapstructure:"type_address"`
	TypeStreet         int `yaml:"type_street" mapstructure:"type_street"`
	TypePlace          int `yaml:"type_place" mapstructure:"type_place"`
	Street             int `yaml:"street" mapstructure:"street"`
	StreetInLabel      int `yaml:"street_in_label" mapstructure:"street_in_label"`
	City               int `yaml:"city" mapstructure:"city"`
	Neighborhood       int `yaml:"neighborhood" mapstructure:"neighborhood"`
	BlockInLabel       int `yaml:"block_in_label" mapstructure:"block_in_label"`
	LotInLabel         int `yaml:"lot_in_label" mapstructure:"lot_in_label"`
	NoCoordinate       int `yaml:"no_coordinate" mapstructure:"no_coordinate"`
	ParcelFound        int `yaml:"parcel_found" mapstructure:"parcel_found"`
	ParcelBlockMatch   int `yaml:"parcel_block_match" mapstructure:"parcel_block_match"`
	ParcelBlockWrong   int `yaml:"parcel_block_wrong" mapstructure:"parcel_block_wrong"`
	ParcelLotMatch     int `yaml:"parcel_lot_match" mapstructure:"parcel_lot_match"`
	ParcelLotWrong     int `yaml:"parcel_lot_wrong" mapstructure:"parcel_lot_wrong"`
	ParcelNeighborhood int `yaml:"parcel_neighborhood" mapstructure:"parcel_neighborhood"`
}

// ClassifyConfig holds the confidence classifier thresholds.
type ClassifyConfig struct {
	MinScore     int     `yaml:"min_score" mapstructure:"min_score"`
	SpreadMeters float64 `yaml:"spread_meters" mapstructure:"spread_meters"`
}

// ParcelConfig configures the cadastral dataset and its lookup cache.
type ParcelConfig struct {
	DatasetPath       string   `yaml:"dataset_path" mapstructure:"dataset_path"`
	BufferMeters      float64  `yaml:"buffer_meters" mapstructure:"buffer_meters"`
	CacheSize         int      `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLMins      int      `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	CacheH3Res        int      `yaml:"cache_h3_res" mapstructure:"cache_h3_res"`
	BlockAttrs        []string `yaml:"block_attrs" mapstructure:"block_attrs"`
	LotAttrs          []string `yaml:"lot_attrs" mapstructure:"lot_attrs"`
	NeighborhoodAttrs []string `yaml:"neighborhood_attrs" mapstructure:"neighborhood_attrs"`
	// The neighboring municipality publishes lots through an ArcGIS feature
	// service instead of a dataset; these point at its MapServer and layer.
	ArcGISURL   string `yaml:"arcgis_url" mapstructure:"arcgis_url"`
	ArcGISLayer string `yaml:"arcgis_layer" mapstructure:"arcgis_layer"`
}

// HistoryConfig configures the job history database.
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("STOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	// Secrets default to empty so the env override resolves without a file.
	v.SetDefault("here.key", "")
	v.SetDefault("llm.key", "")

	v.SetDefault("here.geocode_url", "https://geocode.search.hereapi.com/v1/geocode")
	v.SetDefault("here.discover_url", "https://discover.search.hereapi.com/v1/discover")
	v.SetDefault("here.reverse_url", "https://revgeocode.search.hereapi.com/v1/revgeocode")
	v.SetDefault("here.rps", 10)
	v.SetDefault("here.timeout_secs", 30)

	v.SetDefault("llm.model", "claude-haiku-4-5-20251001")
	v.SetDefault("llm.max_tokens", 512)

	v.SetDefault("resolve.workers", 5)
	v.SetDefault("resolve.max_variants", 8)
	v.SetDefault("resolve.top_k", 3)
	v.SetDefault("resolve.default_state", "GO")
	v.SetDefault("resolve.default_city", "Goiânia")
	v.SetDefault("resolve.parcel_city", "Aparecida de Goiânia")

	v.SetDefault("score.postal_code", 90)
	v.SetDefault("score.type_address", 60)
	v.SetDefault("score.type_street", 40)
	v.SetDefault("score.type_place", 15)
	v.SetDefault("score.street", 35)
	v.SetDefault("score.street_in_label", 15)
	v.SetDefault("score.city", 35)
	v.SetDefault("score.neighborhood", 18)
	v.SetDefault("score.block_in_label", 45)
	v.SetDefault("score.lot_in_label", 45)
	v.SetDefault("score.no_coordinate", -1000)
	v.SetDefault("score.parcel_found", 200)
	v.SetDefault("score.parcel_block_match", 250)
	v.SetDefault("score.parcel_block_wrong", -120)
	v.SetDefault("score.parcel_lot_match", 250)
	v.SetDefault("score.parcel_lot_wrong", -120)
	v.SetDefault("score.parcel_neighborhood", 25)

	v.SetDefault("classify.min_score", 90)
	v.SetDefault("classify.spread_meters", 250)

	v.SetDefault("parcel.dataset_path", "data/aparecida_lotes.geojson")
	v.SetDefault("parcel.buffer_meters", 2)
	v.SetDefault("parcel.cache_size", 4096)
	v.SetDefault("parcel.cache_ttl_mins", 15)
	v.SetDefault("parcel.cache_h3_res", 12)
	v.SetDefault("parcel.block_attrs", []string{"quadra", "num_qdr", "NUM_QDR", "QD"})
	v.SetDefault("parcel.lot_attrs", []string{"lote", "num_lot", "NUM_LOT", "LT"})
	v.SetDefault("parcel.neighborhood_attrs", []string{"bairro", "nm_bai", "NM_BAI", "SETOR"})
	v.SetDefault("parcel.arcgis_url", "https://portalmapa.goiania.go.gov.br/servicogyn/rest/services/MapaServer/Feature_BaseTeste/MapServer")
	v.SetDefault("parcel.arcgis_layer", "0")

	v.SetDefault("history.path", "stops.db")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
