package rocketsolver

import (
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _solverconfig{}
)

// _solverconfig is a "hidden" struct, just use `solverConfig`
type _solverconfig struct {
	outputDir string
	mapDim    int
}

// solverConfig returns the solver configuration. The configuration file is
// optional: without SRM_CONFIG set, or without a conf.toml in it, the
// defaults apply.
func solverConfig() _solverconfig {
	if cfgLoaded {
		return config
	}
	config = _solverconfig{outputDir: "./output", mapDim: DefaultMapDim}
	confPath := os.Getenv("SRM_CONFIG")
	if confPath != "" {
		viper.SetConfigName("conf")
		viper.AddConfigPath(confPath)
		if err := viper.ReadInConfig(); err == nil {
			if out := viper.GetString("general.output_path"); out != "" {
				config.outputDir = out
			}
			if dim := viper.GetInt("regression.map_dim"); dim > 0 {
				config.mapDim = dim
			}
		}
	}
	cfgLoaded = true
	return config
}
