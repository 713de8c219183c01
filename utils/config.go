package utils

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. CSVGRID_INPUT_DIR.
const EnvPrefix = "CSVGRID"

const (
	DefaultNameFormat      = "inca_sbgl_%Y%m%d-%H%M+000.csv"
	DefaultDrillNameFormat = "inca_sbgl_%Y%m%d-%H%M+000.csv.tif"
	DefaultSRS             = "EPSG:31258"
	DefaultNoData          = 9999.0
	DefaultRasterPattern   = "name =~ '[.]csv$'"
	DefaultDrillPattern    = "name =~ '[.]tif$'"
)

// Gap reference policies.
const (
	GapReferenceFirst     = "first"
	GapReferencePreceding = "preceding"
)

// Axis orders for the drill coordinate.
const (
	AxisLegacy = "legacy"
	AxisLonLat = "lonlat"
)

// GridConfig describes the CSV to GeoTIFF conversion.
type GridConfig struct {
	InputDir     string  `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputDir    string  `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	VRTTemplate  string  `yaml:"vrt_template" envconfig:"VRT_TEMPLATE"`
	FillInterval int     `yaml:"fill_interval" envconfig:"FILL_INTERVAL" validate:"gte=0"`
	NameFormat   string  `yaml:"name_format" envconfig:"NAME_FORMAT" validate:"required"`
	Pattern      string  `yaml:"pattern" envconfig:"PATTERN"`
	SRS          string  `yaml:"srs" envconfig:"SRS" validate:"required"`
	Separator    string  `yaml:"separator" envconfig:"SEPARATOR" validate:"required,len=1"`
	XField       string  `yaml:"x_field" envconfig:"X_FIELD" validate:"required"`
	YField       string  `yaml:"y_field" envconfig:"Y_FIELD" validate:"required"`
	ZField       string  `yaml:"z_field" envconfig:"Z_FIELD" validate:"required"`
	Algorithm    string  `yaml:"algorithm" envconfig:"ALGORITHM" validate:"required"`
	NoData       float64 `yaml:"nodata" envconfig:"NODATA"`
	GapReference string  `yaml:"gap_reference" envconfig:"GAP_REFERENCE" validate:"oneof=first preceding"`
	SkipFailed   bool    `yaml:"skip_failed" envconfig:"SKIP_FAILED"`
}

// DrillConfig describes the extraction of a point time series from a
// directory of rasters.
type DrillConfig struct {
	InputDir     string   `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputFile   string   `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`
	NameFormat   string   `yaml:"name_format" envconfig:"NAME_FORMAT" validate:"required"`
	Pattern      string   `yaml:"pattern" envconfig:"PATTERN"`
	Latitude     *float64 `yaml:"latitude" envconfig:"LATITUDE"`
	Longitude    *float64 `yaml:"longitude" envconfig:"LONGITUDE"`
	Points       string   `yaml:"points" envconfig:"POINTS"`
	NoDataAsNone bool     `yaml:"no_data_as_none" envconfig:"NO_DATA_AS_NONE"`
	AxisOrder    string   `yaml:"axis_order" envconfig:"AXIS_ORDER" validate:"oneof=legacy lonlat"`
	DatabaseURL  string   `yaml:"database_url" envconfig:"DATABASE_URL"`
	Memcache     string   `yaml:"memcache" envconfig:"MEMCACHE"`
}

// Config is the struct representing one run of either binary. Only the
// section matching the binary is validated.
type Config struct {
	Grid       GridConfig  `yaml:"grid" envconfig:"GRID"`
	Drill      DrillConfig `yaml:"drill" envconfig:"DRILL"`
	GDALData   string      `yaml:"gdal_data" envconfig:"GDAL_DATA"`
	MetricsDir string      `yaml:"metrics_dir" envconfig:"METRICS_DIR"`
	Verbose    bool        `yaml:"verbose" envconfig:"VERBOSE"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			NameFormat:   DefaultNameFormat,
			Pattern:      DefaultRasterPattern,
			SRS:          DefaultSRS,
			Separator:    ";",
			XField:       "field_2",
			YField:       "field_1",
			ZField:       "field_3",
			Algorithm:    "nearest",
			NoData:       DefaultNoData,
			GapReference: GapReferenceFirst,
		},
		Drill: DrillConfig{
			NameFormat: DefaultDrillNameFormat,
			Pattern:    DefaultDrillPattern,
			AxisOrder:  AxisLegacy,
		},
	}
}

// LoadConfigFile decodes a YAML run file over the values already in config.
func (config *Config) LoadConfigFile(configFile string) error {
	raw, err := ioutil.ReadFile(configFile)
	if err != nil {
		return &ConfigError{Option: "config", Msg: fmt.Sprintf("Error while reading config file: %s", configFile), Err: err}
	}

	if err = yaml.UnmarshalStrict(raw, config); err != nil {
		return &ConfigError{Option: "config", Msg: fmt.Sprintf("Error at YAML parsing config document: %s", configFile), Err: err}
	}
	return nil
}

// LoadEnv applies a .env file, when present, and CSVGRID_* environment
// variables over config. Variables that are not set leave fields untouched.
func (config *Config) LoadEnv() error {
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return &ConfigError{Option: "environment", Msg: "failed to process environment configuration", Err: err}
	}
	return nil
}

// Load builds a configuration from defaults, an optional YAML file and the
// environment. Flags are applied by the caller afterwards.
func Load(configFile string) (*Config, error) {
	config := DefaultConfig()
	if len(configFile) > 0 {
		if err := config.LoadConfigFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// ValidateGrid checks the grid section and normalises its directories to
// absolute paths.
func (config *Config) ValidateGrid() error {
	if err := validateSection(&config.Grid); err != nil {
		return err
	}
	if _, err := NewNameFormat(config.Grid.NameFormat); err != nil {
		return err
	}

	var err error
	if config.Grid.InputDir, err = absDir("input_dir", config.Grid.InputDir, true); err != nil {
		return err
	}
	if config.Grid.OutputDir, err = absDir("output_dir", config.Grid.OutputDir, false); err != nil {
		return err
	}
	return nil
}

// ValidateDrill checks the drill section. Exactly one target is required:
// either latitude and longitude or a GeoJSON points file.
func (config *Config) ValidateDrill() error {
	if err := validateSection(&config.Drill); err != nil {
		return err
	}
	if _, err := NewNameFormat(config.Drill.NameFormat); err != nil {
		return err
	}

	d := &config.Drill
	hasCoord := d.Latitude != nil || d.Longitude != nil
	if hasCoord && (d.Latitude == nil || d.Longitude == nil) {
		return &ConfigError{Option: "latitude/longitude", Msg: "both latitude and longitude are required"}
	}
	if hasCoord == (len(d.Points) > 0) {
		return &ConfigError{Option: "points", Msg: "set either latitude and longitude or a points file"}
	}

	var err error
	if d.InputDir, err = absDir("input_dir", d.InputDir, true); err != nil {
		return err
	}
	if d.OutputFile, err = filepath.Abs(d.OutputFile); err != nil {
		return &ConfigError{Option: "output_file", Msg: d.OutputFile, Err: err}
	}
	return nil
}

func validateSection(section interface{}) error {
	validate := validator.New()
	err := validate.Struct(section)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		var msgs []string
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed '%s'", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return &ConfigError{Option: fieldErrs[0].Field(), Msg: strings.Join(msgs, ", ")}
	}
	return &ConfigError{Msg: "configuration validation failed", Err: err}
}

func absDir(option, dir string, mustExist bool) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return dir, &ConfigError{Option: option, Msg: dir, Err: err}
	}
	if mustExist {
		st, err := os.Stat(abs)
		if err != nil {
			return abs, &ConfigError{Option: option, Msg: abs, Err: err}
		}
		if !st.IsDir() {
			return abs, &ConfigError{Option: option, Msg: fmt.Sprintf("%s is not a directory", abs)}
		}
	}
	return abs, nil
}

// Interval returns the gap fill interval, zero when gap filling is off.
func (g *GridConfig) Interval() time.Duration {
	return time.Duration(g.FillInterval) * time.Minute
}

func (g *GridConfig) DescriptorSettings() DescriptorSettings {
	return DescriptorSettings{
		SRS:       g.SRS,
		Separator: g.Separator,
		XField:    g.XField,
		YField:    g.YField,
		ZField:    g.ZField,
	}
}
