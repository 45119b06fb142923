package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are the operator-tunable team rules. They live in teams.yml so a
// running instance can pick up changes without a restart.
type Settings struct {
	DefaultStemName     string   `mapstructure:"defaultStemName"`
	GroupNameContext    string   `mapstructure:"groupNameContext"`
	NonGuestsMemberOf   string   `mapstructure:"nonGuestsMemberOf"`
	SuperAdminsTeamURNs []string `mapstructure:"superAdminsTeamUrns"`

	InvitationExpiryDays int  `mapstructure:"invitationExpiryDays"`
	PersonEmailPicker    bool `mapstructure:"personEmailPicker"`

	SearchRateLimit float64 `mapstructure:"searchRateLimit"`
	SearchRateBurst int     `mapstructure:"searchRateBurst"`
}

func DefaultSettings() Settings {
	return Settings{
		DefaultStemName:      "demo:openconext:org",
		GroupNameContext:     "urn:collab:group:demo.openconext.org:",
		NonGuestsMemberOf:    "urn:collab:org:surf.nl",
		InvitationExpiryDays: 30,
		PersonEmailPicker:    true,
		SearchRateLimit:      5,
		SearchRateBurst:      10,
	}
}

// SettingsHolder serves the current Settings and swaps them atomically when
// the backing file changes.
type SettingsHolder struct {
	current atomic.Value // holds Settings
}

func NewSettingsHolder(cfg Config) (*SettingsHolder, error) {
	v := viper.New()

	v.SetConfigName("teams")
	v.SetConfigType("yml")
	if path := strings.TrimSpace(cfg.SettingsPath); path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath("/etc/teams")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TEAMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &SettingsHolder{}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		holder.current.Store(DefaultSettings())
		return holder, nil
	}

	settings, err := unmarshalSettings(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(settings)

	v.OnConfigChange(func(_ fsnotify.Event) {
		holder.reload(v)
	})
	v.WatchConfig()

	return holder, nil
}

// reload swaps in the file's current contents. An invalid file keeps the
// previous snapshot active.
func (h *SettingsHolder) reload(v *viper.Viper) {
	reloaded, err := unmarshalSettings(v)
	if err != nil {
		zap.L().Warn("ignoring invalid teams settings reload", zap.Error(err))
		return
	}
	h.current.Store(reloaded)
	zap.L().Info("teams settings reloaded", zap.String("file", v.ConfigFileUsed()))
}

// Current returns the active settings snapshot.
func (h *SettingsHolder) Current() Settings {
	value := h.current.Load()
	if value == nil {
		return DefaultSettings()
	}
	return value.(Settings)
}

// Store replaces the active settings. Intended for tests.
func (h *SettingsHolder) Store(s Settings) {
	h.current.Store(s)
}

func unmarshalSettings(v *viper.Viper) (Settings, error) {
	settings := DefaultSettings()
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, err
	}
	if strings.TrimSpace(settings.DefaultStemName) == "" {
		return Settings{}, errors.New("defaultStemName must not be empty")
	}
	return settings, nil
}
