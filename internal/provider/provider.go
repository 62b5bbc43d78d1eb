package provider

import (
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/linkedin"

	"github.com/coogsnation/identity/internal/model"
)

// Credentials carries the OAuth client credentials for one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Registry knows every provider the platform accepts and holds the OAuth
// client configuration for those that use the authorization code flow.
// "local" and "replit" are known providers without an OAuth config: local
// logins are credential-based, and replit is a legacy provider that no
// longer issues new logins but still labels migrated identities.
type Registry struct {
	oauth map[string]*oauth2.Config
}

// NewRegistry builds a Registry from per-provider credentials. The redirect
// URL for each provider is derived from redirectBase.
func NewRegistry(redirectBase string, creds map[string]Credentials) *Registry {
	r := &Registry{oauth: make(map[string]*oauth2.Config)}

	endpoints := map[string]oauth2.Endpoint{
		model.ProviderFacebook: facebook.Endpoint,
		model.ProviderLinkedIn: linkedin.Endpoint,
		model.ProviderGoogle:   google.Endpoint,
	}
	scopes := map[string][]string{
		model.ProviderFacebook: {"email", "public_profile"},
		model.ProviderLinkedIn: {"openid", "profile", "email"},
		model.ProviderGoogle:   {"openid", "profile", "email"},
	}

	for name, endpoint := range endpoints {
		c := creds[name]
		r.oauth[name] = &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       scopes[name],
			RedirectURL:  fmt.Sprintf("%s/api/auth/%s/callback", redirectBase, name),
		}
	}

	return r
}

// Known reports whether name is a provider the platform accepts.
func (r *Registry) Known(name string) bool {
	if name == model.ProviderLocal || name == model.ProviderReplit {
		return true
	}
	_, ok := r.oauth[name]
	return ok
}

// OAuth returns the OAuth configuration for name, when it has one.
func (r *Registry) OAuth(name string) (*oauth2.Config, bool) {
	c, ok := r.oauth[name]
	return c, ok
}
