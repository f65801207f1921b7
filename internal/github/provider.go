// Package github provides the GitHub implementation of the vcs interfaces
package github

import (
	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
	"github.com/hellausefulsoftware/headercheck/internal/config"
)

// Provider implements vcs.ServiceProvider for GitHub
type Provider struct {
	config *config.Config
}

// NewProvider creates a new GitHub service provider
func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		config: cfg,
	}
}

// GetService returns a GitHub implementation of vcs.Service
func (p *Provider) GetService() (vcs.Service, error) {
	return NewClientFromConfig(p.config)
}
