package config

type ProfileSelection struct {
	Name      string
	Overrides map[string]string
}

const (
	ProfilesFileEnvVar        = "KRBCTL_PROFILES_FILE"
	DefaultProfileCatalogPath = "~/.krbctl/profiles.yaml"
	DefaultCSPURL             = "https://csp.infoblox.com"
	DefaultAPIBasePath        = "/api/ddi/v2"
	DefaultTimeoutSeconds     = 30
)

type ProfileCatalog struct {
	Profiles       []Profile `json:"profiles" yaml:"profiles"`
	CurrentProfile string    `json:"current-profile" yaml:"current-profile"`
}

type Profile struct {
	Name string     `json:"name" yaml:"name"`
	CSP  *CSPConfig `json:"csp,omitempty" yaml:"csp,omitempty"`
}

type CSPConfig struct {
	URL            string            `json:"url" yaml:"url"`
	APIKey         string            `json:"api-key" yaml:"api-key"`
	APIBasePath    string            `json:"api-base-path,omitempty" yaml:"api-base-path,omitempty"`
	TimeoutSeconds int               `json:"timeout-seconds,omitempty" yaml:"timeout-seconds,omitempty"`
	RateLimit      float64           `json:"rate-limit,omitempty" yaml:"rate-limit,omitempty"`
	DefaultHeaders map[string]string `json:"default-headers,omitempty" yaml:"default-headers,omitempty"`
	TLS            *TLS              `json:"tls,omitempty" yaml:"tls,omitempty"`
}

type TLS struct {
	CACertFile         string `json:"ca-cert-file,omitempty" yaml:"ca-cert-file,omitempty"`
	ClientCertFile     string `json:"client-cert-file,omitempty" yaml:"client-cert-file,omitempty"`
	ClientKeyFile      string `json:"client-key-file,omitempty" yaml:"client-key-file,omitempty"`
	InsecureSkipVerify bool   `json:"insecure-skip-verify,omitempty" yaml:"insecure-skip-verify,omitempty"`
}
