package fetch

import (
	"reflect"
	"testing"

	"github.com/gadomski/atlas/internal/config"
)

func TestParseListing(t *testing.T) {
	listing := []byte(`/home/atlas/sbd/300234063909200/160816_180158.sbd
/home/atlas/sbd/300234063909200/160816_180512.sbd
/home/atlas/sbd/300234063556840/160817_000158.sbd

/home/atlas/sbd/scratch.sbd
/home/atlas/sbd/300234063909200/notes.txt
/somewhere/else/300234063909200/160816_180158.sbd
`)
	got := ParseListing("/home/atlas/sbd", listing)
	want := []string{
		"300234063909200/160816_180158.sbd",
		"300234063909200/160816_180512.sbd",
		"300234063556840/160817_000158.sbd",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseListing:\ngot  %v\nwant %v", got, want)
	}
}

func TestParseListing_TrailingSlashRoot(t *testing.T) {
	listing := []byte("/home/atlas/sbd/300234063909200/160816_180158.sbd\n")
	got := ParseListing("/home/atlas/sbd/", listing)
	if len(got) != 1 {
		t.Fatalf("got %d paths, want 1", len(got))
	}
}

func TestParseListing_Empty(t *testing.T) {
	if got := ParseListing("/home/atlas/sbd", nil); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestClientConfig_NoAuth(t *testing.T) {
	m := NewMirror(config.FetchConfig{
		Addr: "sbd.example.com:22",
		User: "atlas",
	}, t.TempDir())
	if _, err := m.clientConfig(); err == nil {
		t.Fatal("expected an error with no key file and no password")
	}
}

func TestClientConfig_Password(t *testing.T) {
	t.Setenv("TEST_SSH_PASSWORD", "hunter2")
	m := NewMirror(config.FetchConfig{
		Addr:        "sbd.example.com:22",
		User:        "atlas",
		PasswordEnv: "TEST_SSH_PASSWORD",
	}, t.TempDir())
	cfg, err := m.clientConfig()
	if err != nil {
		t.Fatalf("clientConfig: %v", err)
	}
	if cfg.User != "atlas" {
		t.Errorf("User: got %q", cfg.User)
	}
	if len(cfg.Auth) != 1 {
		t.Errorf("got %d auth methods, want 1", len(cfg.Auth))
	}
}

func TestClientConfig_MissingKeyFile(t *testing.T) {
	m := NewMirror(config.FetchConfig{
		Addr:    "sbd.example.com:22",
		User:    "atlas",
		KeyFile: t.TempDir() + "/nope",
	}, t.TempDir())
	if _, err := m.clientConfig(); err == nil {
		t.Fatal("expected an error for a missing key file")
	}
}
