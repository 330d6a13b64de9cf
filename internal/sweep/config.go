package sweep

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// RunConfig is the parsed sweep definition a config file describes:
// symbol/strategy selection plus the parameter grid to expand.
type RunConfig struct {
	Symbol     string
	Strategy   string
	MaxWorkers int
	Grid       ParamGrid
}

// LoadConfig reads a sweep YAML definition from path via viper, matching
// _prepare_base_kwargs's config-to-kwargs flattening. Environment
// variables prefixed SWEEP_ override matching top-level keys.
func LoadConfig(path string) (RunConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("sweep")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return RunConfig{}, err
	}

	grid := ParamGrid{}
	raw := v.GetStringMap("grid")
	for key, val := range raw {
		values, ok := val.([]interface{})
		if !ok {
			continue
		}
		strs := make([]string, 0, len(values))
		for _, x := range values {
			strs = append(strs, toString(x))
		}
		grid[key] = strs
	}

	return RunConfig{
		Symbol:     v.GetString("symbol"),
		Strategy:   v.GetString("strategy"),
		MaxWorkers: v.GetInt("max_workers"),
		Grid:       grid,
	}, nil
}

func toString(x interface{}) string {
	if s, ok := x.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", x)
}
