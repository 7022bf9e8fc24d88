package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var (
	ErrNoScene   = errors.New("no scene file")
	ErrBadColour = errors.New("colour must be #RRGGBB or #RRGGBBAA")
)

// Colour is an RGBA colour written as "#RRGGBB" or "#RRGGBBAA".
type Colour color.RGBA

func (c *Colour) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(strings.TrimSpace(string(text)), "#")
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return fmt.Errorf("%q: %w", text, ErrBadColour)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("%q: %w", text, ErrBadColour)
	}
	*c = Colour{b[0], b[1], b[2], b[3]}
	return nil
}

func (c Colour) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)), nil
}

func (c Colour) RGBA() color.RGBA { return color.RGBA(c) }

type General struct {
	LogLevel   string `toml:"log_level"`
	Debug      bool   `toml:"debug"`
	TargetFPS  int    `toml:"target_fps"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Background Colour `toml:"background"`
	Scene      string `toml:"scene"`
}

type Mirrors struct {
	Enabled      bool    `toml:"enabled"`
	SpriteSet    string  `toml:"sprite_set"`
	DirectionKey string  `toml:"direction_key"`
	Range        float32 `toml:"range"`
}

type Water struct {
	Enabled   bool       `toml:"enabled"`
	Wavy      bool       `toml:"wavy"`
	Anchor    [2]float32 `toml:"anchor"`
	Amplitude float32    `toml:"amplitude"`
	Frequency float32    `toml:"frequency"`
	Speed     float32    `toml:"speed"`
}

// MirrorEntry is the stored settings of one mirror, keyed by tile position.
type MirrorEntry struct {
	X         int        `toml:"x"`
	Y         int        `toml:"y"`
	Enabled   *bool      `toml:"enabled,omitempty"`
	Offset    [2]float32 `toml:"offset"`
	Overlay   *Colour    `toml:"overlay,omitempty"`
	Scale     float32    `toml:"scale"`
	Furniture string     `toml:"furniture"`
}

type Config struct {
	General General       `toml:"general"`
	Mirrors Mirrors       `toml:"mirrors"`
	Water   Water         `toml:"water"`
	Mirror  []MirrorEntry `toml:"mirror"`
}

func Default() Config {
	return Config{
		General: General{
			LogLevel:   "warn",
			TargetFPS:  60,
			Width:      1280,
			Height:     720,
			Background: Colour{0x5b, 0x8c, 0x3a, 0xff},
		},
		Mirrors: Mirrors{
			Enabled:      true,
			SpriteSet:    "mirror-reflection",
			DirectionKey: "appearance.facing-direction",
			Range:        8,
		},
		Water: Water{
			Enabled:   true,
			Amplitude: 0.01,
			Frequency: 40,
			Speed:     2,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte, cfg *Config) error {
	return decode(data, cfg)
}

func decode(data []byte, v any) error {
	if err := toml.Unmarshal(data, v); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return err
	}
	return nil
}

func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
