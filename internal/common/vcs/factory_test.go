package vcs

import (
	"context"
	"errors"
	"testing"

	"github.com/hellausefulsoftware/headercheck/internal/config"
)

type stubService struct{ Service }

func (stubService) AuthenticatedLogin(context.Context) (string, error) { return "stub", nil }

type stubProvider struct {
	service Service
	err     error
}

func (p stubProvider) GetService() (Service, error) { return p.service, p.err }

func TestFactoryDefaultsToGitHub(t *testing.T) {
	cfg := &config.Config{}
	factory := NewFactory(cfg)
	factory.RegisterProvider("github", func(*config.Config) ServiceProvider {
		return stubProvider{service: stubService{}}
	})

	service, err := factory.GetService()
	if err != nil {
		t.Fatalf("GetService returned error: %v", err)
	}
	login, _ := service.AuthenticatedLogin(context.Background())
	if login != "stub" {
		t.Errorf("login = %q, want %q", login, "stub")
	}
}

func TestFactoryUnknownPlatform(t *testing.T) {
	cfg := &config.Config{}
	cfg.VCS.Platform = "gitlab"
	factory := NewFactory(cfg)

	if _, err := factory.GetService(); err == nil {
		t.Fatal("expected error for unregistered platform")
	}
}

func TestFactoryProviderError(t *testing.T) {
	cfg := &config.Config{}
	factory := NewFactory(cfg)
	boom := errors.New("bad credentials")
	factory.RegisterProvider("github", func(*config.Config) ServiceProvider {
		return stubProvider{err: boom}
	})

	_, err := factory.GetService()
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
}

func TestIssueRefString(t *testing.T) {
	ref := IssueRef{Owner: "octo", Repo: "widgets", Number: 12}
	if got := ref.String(); got != "octo/widgets#12" {
		t.Errorf("String() = %q", got)
	}
}

func TestDocumentIsFile(t *testing.T) {
	if !(Document{Type: DocumentFile}).IsFile() {
		t.Error("file document should be a file")
	}
	if (Document{Type: DocumentDir}).IsFile() {
		t.Error("dir document should not be a file")
	}
}
