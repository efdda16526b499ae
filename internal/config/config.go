package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed site.yaml
var defaultSite []byte

const (
	ClaimLastWriteWins = "last_write_wins"
	ClaimFirstWins     = "first_wins"
)

type Site struct {
	Admins          Admins                   `yaml:"admins"`
	DefaultLanguage string                   `yaml:"defaultLanguage"`
	Languages       []string                 `yaml:"languages"`
	DefaultTheme    string                   `yaml:"defaultTheme"`
	Themes          []string                 `yaml:"themes"`
	Support         Support                  `yaml:"support"`
	Bot             map[string]BotTexts      `yaml:"bot"`
	RequestNotices  map[string]RequestNotice `yaml:"requestNotices"`
	StatsDisplay    StatsDisplay             `yaml:"statsDisplay"`
}

type Admins struct {
	SuperAdmin string   `yaml:"superAdmin"`
	Emails     []string `yaml:"emails"`
}

type Support struct {
	ClaimMode         string `yaml:"claimMode"`
	SingleOpenSession bool   `yaml:"singleOpenSession"`
}

type BotTexts struct {
	Welcome    string            `yaml:"welcome"`
	Options    map[string]string `yaml:"options"`
	Pricing    string            `yaml:"pricing"`
	Services   string            `yaml:"services"`
	HumanErr   string            `yaml:"humanErr"`
	ConnectMsg string            `yaml:"connectMsg"`
}

type RequestNotice struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
	Type    string `yaml:"type"`
}

type StatsDisplay struct {
	Users    int `yaml:"users"`
	Requests int `yaml:"requests"`
	Messages int `yaml:"messages"`
	Visitors int `yaml:"visitors"`
}

// Default returns the embedded site configuration.
func Default() (*Site, error) {
	return Parse(defaultSite)
}

// Load reads the site configuration from path, or the embedded default when
// path is empty.
func Load(path string) (*Site, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Site, error) {
	var site Site
	if err := yaml.Unmarshal(raw, &site); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}
	site.normalize()
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Site) normalize() {
	s.Admins.SuperAdmin = strings.ToLower(strings.TrimSpace(s.Admins.SuperAdmin))
	for i, e := range s.Admins.Emails {
		s.Admins.Emails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	if s.Support.ClaimMode == "" {
		s.Support.ClaimMode = ClaimLastWriteWins
	}
}

func (s *Site) Validate() error {
	if s.DefaultLanguage == "" {
		return fmt.Errorf("site config: defaultLanguage is required")
	}
	if !s.SupportsLanguage(s.DefaultLanguage) {
		return fmt.Errorf("site config: default language %q not in languages", s.DefaultLanguage)
	}
	if _, ok := s.Bot[s.DefaultLanguage]; !ok {
		return fmt.Errorf("site config: bot texts missing for default language %q", s.DefaultLanguage)
	}
	switch s.Support.ClaimMode {
	case ClaimLastWriteWins, ClaimFirstWins:
	default:
		return fmt.Errorf("site config: unknown support claim mode %q", s.Support.ClaimMode)
	}
	return nil
}

func (s *Site) SupportsLanguage(lang string) bool {
	for _, l := range s.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

func (s *Site) SupportsTheme(theme string) bool {
	for _, t := range s.Themes {
		if t == theme {
			return true
		}
	}
	return false
}

// BotTextsFor returns the bot copy for lang, falling back to the default language.
func (s *Site) BotTextsFor(lang string) (BotTexts, string) {
	if texts, ok := s.Bot[lang]; ok {
		return texts, lang
	}
	return s.Bot[s.DefaultLanguage], s.DefaultLanguage
}
