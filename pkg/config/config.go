package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Enabled bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Serve run status over HTTP while extraction runs"`
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Status server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:keyscope.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Providers []Provider `yaml:"providers" json:"providers" jsonschema:"required,description=LLM providers competing for extraction tasks"`

	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Keyword extraction configuration"`

	Crawl CrawlConfig `yaml:"crawl" json:"crawl" jsonschema:"description=Model page crawling configuration"`

	Catalog CatalogConfig `yaml:"catalog" json:"catalog" jsonschema:"description=Catalog CSV ingestion configuration"`

	Report ReportConfig `yaml:"report" json:"report" jsonschema:"description=Report generation configuration"`
}

// Provider describes one OpenAI-compatible extraction backend
type Provider struct {
	Name     string `yaml:"name" json:"name" jsonschema:"required,description=Provider identifier used in logs and reports"`
	Endpoint string `yaml:"endpoint" json:"endpoint" jsonschema:"required,description=OpenAI-compatible API endpoint"`
	APIKey   string `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model    string `yaml:"model" json:"model" jsonschema:"required,description=Model name (e.g. glm-4-flash or hunyuan-turbo)"`
	JSONMode bool   `yaml:"json_mode" json:"json_mode" jsonschema:"default=false,description=Use JSON response format (not all models support this)"`
	Enabled  *bool  `yaml:"enabled" json:"enabled,omitempty" jsonschema:"default=true,description=Set to false to keep the provider configured but inactive"`
}

// Active reports whether the provider takes part in extraction. A provider
// without an API key never runs, the enabled flag defaults to true.
func (p *Provider) Active() bool {
	if p.APIKey == "" {
		return false
	}
	return p.Enabled == nil || *p.Enabled
}

// ExtractionConfig holds keyword extraction settings shared by all providers
type ExtractionConfig struct {
	Temperature        float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Temperature for response generation"`
	MaxTokens          int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=1200,description=Maximum tokens in response"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout per attempt"`
	SystemPrompt       string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt override (optional)"`
	ExclusionThreshold int           `yaml:"exclusion_threshold" json:"exclusion_threshold" jsonschema:"default=10,description=Occurrences before a keyword is excluded from prompts"`
	ExclusionLimit     int           `yaml:"exclusion_limit" json:"exclusion_limit" jsonschema:"default=50,description=Maximum excluded keywords sent per prompt"`
	RateLimitPause     time.Duration `yaml:"rate_limit_pause" json:"rate_limit_pause" jsonschema:"default=500ms,description=Base pause after a rate-limited attempt"`
	RateLimitJitter    time.Duration `yaml:"rate_limit_jitter" json:"rate_limit_jitter" jsonschema:"default=1500ms,description=Random jitter added to the rate-limit pause"`
	TransientPause     time.Duration `yaml:"transient_pause" json:"transient_pause" jsonschema:"default=1s,description=Pause after a transient failure"`
}

// CrawlConfig holds model page fetching settings
type CrawlConfig struct {
	UserAgent      string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Keyscope/1.0,description=User agent for HTTP requests"`
	Timeout        time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Fetch timeout per page"`
	Delay          time.Duration `yaml:"delay" json:"delay" jsonschema:"default=500ms,description=Delay between page fetches"`
	Concurrency    int           `yaml:"concurrency" json:"concurrency" jsonschema:"default=4,description=Maximum concurrent page fetches"`
	Headless       bool          `yaml:"headless" json:"headless" jsonschema:"default=false,description=Render pages in a headless browser before extraction"`
	MaxTags        int           `yaml:"max_tags" json:"max_tags" jsonschema:"default=15,description=Maximum tags kept per page"`
	MaxDescription int           `yaml:"max_description" json:"max_description" jsonschema:"default=5000,description=Maximum description length kept per page"`
}

// CatalogConfig holds CSV catalog ingestion settings. Column headers default
// to the export format of the model hosting platform.
type CatalogConfig struct {
	File         string `yaml:"file" json:"file" jsonschema:"default=catalog.csv,description=Path to the catalog export CSV"`
	MaxItems     int    `yaml:"max_items" json:"max_items" jsonschema:"default=100,description=Maximum catalog entries per run"`
	NameColumn   string `yaml:"name_column" json:"name_column" jsonschema:"default=项目名称,description=CSV column holding the project name"`
	URLColumn    string `yaml:"url_column" json:"url_column" jsonschema:"default=项目网址,description=CSV column holding the project URL"`
	AuditColumn  string `yaml:"audit_column" json:"audit_column" jsonschema:"default=审核状态,description=CSV column holding the audit status"`
	PublicColumn string `yaml:"public_column" json:"public_column" jsonschema:"default=是否公开,description=CSV column holding the public flag"`
	AuditValue   string `yaml:"audit_value" json:"audit_value" jsonschema:"default=2,description=Audit status value accepted for extraction"`
	PublicValue  string `yaml:"public_value" json:"public_value" jsonschema:"default=1,description=Public flag value accepted for extraction"`
}

// ReportConfig holds report generation settings
type ReportConfig struct {
	Dir         string `yaml:"dir" json:"dir" jsonschema:"default=output,description=Directory for generated reports"`
	RewriteHost string `yaml:"rewrite_host" json:"rewrite_host" jsonschema:"default=gitcode.com,description=Host to rewrite in report links"`
	PromoteHost string `yaml:"promote_host" json:"promote_host" jsonschema:"default=ai.gitcode.com,description=Replacement host for report links"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:keyscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for extraction
	if cfg.Extraction.Temperature == 0 {
		cfg.Extraction.Temperature = 0.3
	}
	if cfg.Extraction.MaxTokens == 0 {
		cfg.Extraction.MaxTokens = 1200
	}
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 30 * time.Second
	}
	if cfg.Extraction.ExclusionThreshold == 0 {
		cfg.Extraction.ExclusionThreshold = 10
	}
	if cfg.Extraction.ExclusionLimit == 0 {
		cfg.Extraction.ExclusionLimit = 50
	}
	if cfg.Extraction.RateLimitPause == 0 {
		cfg.Extraction.RateLimitPause = 500 * time.Millisecond
	}
	if cfg.Extraction.RateLimitJitter == 0 {
		cfg.Extraction.RateLimitJitter = 1500 * time.Millisecond
	}
	if cfg.Extraction.TransientPause == 0 {
		cfg.Extraction.TransientPause = time.Second
	}

	// set defaults for crawl
	if cfg.Crawl.UserAgent == "" {
		cfg.Crawl.UserAgent = "Keyscope/1.0"
	}
	if cfg.Crawl.Timeout == 0 {
		cfg.Crawl.Timeout = 30 * time.Second
	}
	if cfg.Crawl.Delay == 0 {
		cfg.Crawl.Delay = 500 * time.Millisecond
	}
	if cfg.Crawl.Concurrency == 0 {
		cfg.Crawl.Concurrency = 4
	}
	if cfg.Crawl.MaxTags == 0 {
		cfg.Crawl.MaxTags = 15
	}
	if cfg.Crawl.MaxDescription == 0 {
		cfg.Crawl.MaxDescription = 5000
	}

	// set defaults for catalog
	if cfg.Catalog.File == "" {
		cfg.Catalog.File = "catalog.csv"
	}
	if cfg.Catalog.MaxItems == 0 {
		cfg.Catalog.MaxItems = 100
	}
	if cfg.Catalog.NameColumn == "" {
		cfg.Catalog.NameColumn = "项目名称"
	}
	if cfg.Catalog.URLColumn == "" {
		cfg.Catalog.URLColumn = "项目网址"
	}
	if cfg.Catalog.AuditColumn == "" {
		cfg.Catalog.AuditColumn = "审核状态"
	}
	if cfg.Catalog.PublicColumn == "" {
		cfg.Catalog.PublicColumn = "是否公开"
	}
	if cfg.Catalog.AuditValue == "" {
		cfg.Catalog.AuditValue = "2"
	}
	if cfg.Catalog.PublicValue == "" {
		cfg.Catalog.PublicValue = "1"
	}

	// set defaults for report
	if cfg.Report.Dir == "" {
		cfg.Report.Dir = "output"
	}
	if cfg.Report.RewriteHost == "" {
		cfg.Report.RewriteHost = "gitcode.com"
	}
	if cfg.Report.PromoteHost == "" {
		cfg.Report.PromoteHost = "ai.gitcode.com"
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema, supplementary to validate
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		log.Printf("[WARN] schema validation failed: %v", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {

	// validate providers
	for i, p := range cfg.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d].name is required", i)
		}
		if p.Endpoint == "" {
			return fmt.Errorf("provider %q: endpoint is required", p.Name)
		}
		if p.Model == "" {
			return fmt.Errorf("provider %q: model is required", p.Name)
		}
	}

	// validate extraction config
	if cfg.Extraction.Temperature < 0 || cfg.Extraction.Temperature > 2 {
		return fmt.Errorf("extraction.temperature must be between 0 and 2")
	}
	if cfg.Extraction.Timeout < time.Second {
		return fmt.Errorf("extraction.timeout must be at least 1 second")
	}
	if cfg.Extraction.ExclusionThreshold < 1 {
		return fmt.Errorf("extraction.exclusion_threshold must be at least 1")
	}

	// validate crawl config
	if cfg.Crawl.Timeout < time.Second {
		return fmt.Errorf("crawl.timeout must be at least 1 second")
	}
	if cfg.Crawl.Concurrency < 1 {
		return fmt.Errorf("crawl.concurrency must be at least 1")
	}

	// validate catalog config
	if cfg.Catalog.MaxItems < 0 {
		return fmt.Errorf("catalog.max_items must be non-negative")
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server.timeout must be at least 1 second")
	}

	return nil
}

// ActiveProviders returns the providers that take part in extraction
func (c *Config) ActiveProviders() []Provider {
	res := make([]Provider, 0, len(c.Providers))
	for _, p := range c.Providers {
		if p.Active() {
			res = append(res, p)
		}
	}
	return res
}

// ProviderKeys returns all configured API keys, used to mask them in logs
func (c *Config) ProviderKeys() []string {
	res := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		if p.APIKey != "" {
			res = append(res, p.APIKey)
		}
	}
	return res
}

// GetServerConfig returns status server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
