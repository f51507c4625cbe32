package planetview

import (
	"os"
	"sync"

	"github.com/spf13/viper"
)

var (
	cfgOnce sync.Once
	config  = _pvconfig{}
)

// _pvconfig is a "hidden" struct, just use `pvConfig`
type _pvconfig struct {
	outputDir string
	creator   string
	limbWidth float64
	termWidth float64
	ringWidth float64
	gridWidth float64
	darkGray  float64
	ringGray  float64
	dashOn    float64
	dashOff   float64
}

// pvConfig returns the plotting configuration. Unlike most settings
// loaders this one never fails: a missing PLANETVIEW_CONFIG or conf.toml
// simply yields the built-in plot style, because a renderer must be
// usable as a library without any environment set up. The load happens
// exactly once, so concurrent renders share the same immutable struct.
func pvConfig() _pvconfig {
	cfgOnce.Do(loadConfig)
	return config
}

func loadConfig() {
	config = _pvconfig{
		outputDir: ".",
		creator:   "planetview",
		limbWidth: 1.0,
		termWidth: 0.6,
		ringWidth: 0.6,
		gridWidth: 0.3,
		darkGray:  0.7,
		ringGray:  0.5,
		dashOn:    4,
		dashOff:   3,
	}
	confPath := os.Getenv("PLANETVIEW_CONFIG")
	if confPath != "" {
		viper.SetConfigName("conf")
		viper.AddConfigPath(confPath)
		if err := viper.ReadInConfig(); err == nil {
			if v := viper.GetString("general.output_path"); v != "" {
				config.outputDir = v
			}
			if v := viper.GetString("general.creator"); v != "" {
				config.creator = v
			}
			if v := viper.GetFloat64("style.limb_width"); v > 0 {
				config.limbWidth = v
			}
			if v := viper.GetFloat64("style.terminator_width"); v > 0 {
				config.termWidth = v
			}
			if v := viper.GetFloat64("style.ring_width"); v > 0 {
				config.ringWidth = v
			}
			if v := viper.GetFloat64("style.grid_width"); v > 0 {
				config.gridWidth = v
			}
			if viper.IsSet("style.dark_gray") {
				config.darkGray = viper.GetFloat64("style.dark_gray")
			}
			if viper.IsSet("style.ring_gray") {
				config.ringGray = viper.GetFloat64("style.ring_gray")
			}
			if v := viper.GetFloat64("style.dash_on"); v > 0 {
				config.dashOn = v
			}
			if v := viper.GetFloat64("style.dash_off"); v > 0 {
				config.dashOff = v
			}
		}
	}
}
