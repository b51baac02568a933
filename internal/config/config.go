package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fishing-bot/internal/bot"
	"fishing-bot/internal/detector"
	"fishing-bot/internal/vision"
)

// Duration decodes yaml strings like "4s" or "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// HSV is a yaml-friendly [h, s, v] triple.
type HSV [3]float64

func (c HSV) Bound() detector.HSVBound {
	return detector.HSVBound{H: c[0], S: c[1], V: c[2]}
}

// Config collects every tunable of the bot. Zero-config runs work: the
// defaults are the values tuned against the game's fishing window.
type Config struct {
	// Window/process identification for live capture.
	ProcessName string `yaml:"process_name"`
	WindowTitle string `yaml:"window_title"`

	// Fixed window size pinned at startup, so a single matching scale
	// suffices. Zero keeps the current size.
	WindowWidth  int `yaml:"window_width"`
	WindowHeight int `yaml:"window_height"`

	// Template locating.
	TemplatePath  string  `yaml:"template_path"`
	GameThreshold float32 `yaml:"game_threshold"`
	LowScale      float64 `yaml:"low_scale"`
	HighScale     float64 `yaml:"high_scale"`
	NumScales     int     `yaml:"num_scales"`
	ResizeFactor  float64 `yaml:"resize_factor"`

	// Playable-area crop.
	BorderOffset      int `yaml:"border_offset"`
	BorderOffsetTitle int `yaml:"border_offset_title"`

	// Color classes.
	FishLowBound      HSV `yaml:"fish_low_bound"`
	FishHighBound     HSV `yaml:"fish_high_bound"`
	CatchLowBound     HSV `yaml:"catch_low_bound"`
	CatchHighBound    HSV `yaml:"catch_high_bound"`
	CatchSumThreshold int `yaml:"catch_sum_threshold"`

	// State machine.
	PullingRodTimeout     Duration `yaml:"pulling_rod_timeout"`
	SearchingTimeout      Duration `yaml:"searching_timeout"`
	WaitAfterClickTimeout Duration `yaml:"wait_after_click_timeout"`
	BaitKey               string   `yaml:"bait_key"`
	StartKey              string   `yaml:"start_key"`
	StrikesPerCatch       int      `yaml:"strikes_per_catch"`

	// Decision loop rate in concurrent mode.
	DecisionInterval Duration `yaml:"decision_interval"`
}

func Default() *Config {
	return &Config{
		ProcessName:           "metin2client.exe",
		WindowTitle:           "Metin2",
		WindowWidth:           1280,
		WindowHeight:          800,
		TemplatePath:          "resources/template_fish_game_border.png",
		GameThreshold:         0.7,
		LowScale:              1,
		HighScale:             1,
		NumScales:             1,
		ResizeFactor:          0.5,
		BorderOffset:          10,
		BorderOffsetTitle:     28,
		FishLowBound:          HSV{73, 99, 116},
		FishHighBound:         HSV{144, 154, 132},
		CatchLowBound:         HSV{118, 56, 141},
		CatchHighBound:        HSV{255, 144, 255},
		CatchSumThreshold:     40000,
		PullingRodTimeout:     Duration(4 * time.Second),
		SearchingTimeout:      Duration(15 * time.Second),
		WaitAfterClickTimeout: Duration(1 * time.Second),
		BaitKey:               "1",
		StartKey:              "space",
		StrikesPerCatch:       3,
		DecisionInterval:      Duration(50 * time.Millisecond),
	}
}

// Load reads path over the defaults. An empty path returns the defaults
// unchanged; a missing or malformed file is an error so typos do not
// silently run a default bot.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ResizeFactor <= 0 || c.ResizeFactor > 1 {
		return fmt.Errorf("%w: resize_factor %v, only downscaling is supported", detector.ErrInvalidConfig, c.ResizeFactor)
	}
	if c.NumScales < 1 {
		return fmt.Errorf("%w: num_scales %d", detector.ErrInvalidConfig, c.NumScales)
	}
	if c.LowScale <= 0 || c.HighScale < c.LowScale {
		return fmt.Errorf("%w: scale range [%v, %v]", detector.ErrInvalidConfig, c.LowScale, c.HighScale)
	}
	if c.DecisionInterval <= 0 {
		return fmt.Errorf("%w: decision_interval %v", detector.ErrInvalidConfig, c.DecisionInterval.Std())
	}
	if c.StrikesPerCatch < 1 {
		return fmt.Errorf("%w: strikes_per_catch %d", detector.ErrInvalidConfig, c.StrikesPerCatch)
	}
	if c.TemplatePath == "" {
		return fmt.Errorf("%w: template_path is required", detector.ErrInvalidConfig)
	}
	if c.WindowWidth < 0 || c.WindowHeight < 0 {
		return fmt.Errorf("%w: window size %dx%d", detector.ErrInvalidConfig, c.WindowWidth, c.WindowHeight)
	}
	return nil
}

// VisionConfig maps to the pipeline's settings.
func (c *Config) VisionConfig(debug bool) vision.Config {
	return vision.Config{
		GameThreshold:     c.GameThreshold,
		BorderOffset:      c.BorderOffset,
		BorderOffsetTitle: c.BorderOffsetTitle,
		FishLowBound:      c.FishLowBound.Bound(),
		FishHighBound:     c.FishHighBound.Bound(),
		CatchLowBound:     c.CatchLowBound.Bound(),
		CatchHighBound:    c.CatchHighBound.Bound(),
		CatchSumThreshold: c.CatchSumThreshold,
		Debug:             debug,
	}
}

// MachineConfig maps to the state machine's settings; the key and click
// delay bounds stay at their defaults.
func (c *Config) MachineConfig() bot.MachineConfig {
	mc := bot.DefaultMachineConfig()
	mc.PullingRodTimeout = c.PullingRodTimeout.Std()
	mc.SearchingTimeout = c.SearchingTimeout.Std()
	mc.WaitAfterClickTimeout = c.WaitAfterClickTimeout.Std()
	mc.BaitKey = c.BaitKey
	mc.StartKey = c.StartKey
	mc.StrikesPerCatch = c.StrikesPerCatch
	return mc
}
