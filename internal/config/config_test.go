package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSiteConfig(t *testing.T) {
	site, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}

	if site.DefaultLanguage != "ar" {
		t.Fatalf("expected default language ar, got %s", site.DefaultLanguage)
	}
	if site.Admins.SuperAdmin != "filex@flexdesign.academy" {
		t.Fatalf("unexpected super admin %s", site.Admins.SuperAdmin)
	}
	if len(site.Admins.Emails) != 6 {
		t.Fatalf("expected 6 allow-listed admins, got %d", len(site.Admins.Emails))
	}
	if site.Support.ClaimMode != ClaimLastWriteWins {
		t.Fatalf("expected last_write_wins claim mode, got %s", site.Support.ClaimMode)
	}
	for _, lang := range []string{"ar", "en", "fr"} {
		texts, ok := site.Bot[lang]
		if !ok {
			t.Fatalf("bot texts missing for %s", lang)
		}
		if texts.Welcome == "" || texts.HumanErr == "" || texts.ConnectMsg == "" || len(texts.Options) != 3 {
			t.Fatalf("incomplete bot texts for %s: %+v", lang, texts)
		}
	}
	if notice := site.RequestNotices["COMPLETED"]; notice.Type != "success" {
		t.Fatalf("expected success notice for COMPLETED, got %+v", notice)
	}
}

func TestBotTextsFallback(t *testing.T) {
	site, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}

	texts, lang := site.BotTextsFor("de")
	if lang != "ar" {
		t.Fatalf("expected fallback to ar, got %s", lang)
	}
	if texts.Welcome != site.Bot["ar"].Welcome {
		t.Fatalf("fallback texts do not match default language")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	raw := []byte(`
admins:
  superAdmin: " Boss@Example.com "
  emails: [boss@example.com]
defaultLanguage: en
languages: [en]
themes: [light]
support:
  claimMode: first_wins
bot:
  en:
    welcome: hi
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	site, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if site.Admins.SuperAdmin != "boss@example.com" {
		t.Fatalf("expected normalized super admin, got %q", site.Admins.SuperAdmin)
	}
	if site.Support.ClaimMode != ClaimFirstWins {
		t.Fatalf("expected first_wins, got %s", site.Support.ClaimMode)
	}
}

func TestParseRejectsUnknownClaimMode(t *testing.T) {
	_, err := Parse([]byte(`
defaultLanguage: en
languages: [en]
support:
  claimMode: random
bot:
  en:
    welcome: hi
`))
	if err == nil {
		t.Fatal("expected error for unknown claim mode")
	}
}
