// Package config handles configuration loading for the eMandates client.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax), so that PINs and database
// credentials can be injected at runtime.
//
// # Configuration Sections
//
//   - contract: merchant contract id, sub id and return URL
//   - certificates: fingerprints and the store that holds them (file or pkcs11)
//   - endpoints: acquirer directory, transaction and status URLs
//   - serviceLogs: where raw requests and responses are kept
//   - transport: HTTPS client settings
//
// # Example Configuration
//
//	contract:
//	  id: "0020000387"
//	  returnUrl: https://merchant.example.com/return
//
//	certificates:
//	  signing: 9A1B...E0
//	  acquirer: 77F2...1C
//	  store: file
//	  dir: /etc/emandates/certs
//
//	endpoints:
//	  directory: https://acquirer.example.com/directory
//	  transaction: https://acquirer.example.com/transaction
//	  status: https://acquirer.example.com/status
//
//	serviceLogs:
//	  enabled: true
//	  location: /var/log/emandates
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-emandates/pkg/communicator"
	"github.com/sirosfoundation/go-emandates/pkg/transport"
)

// DefaultServiceLogPattern names a service log file after the time it was
// written and the root element of the message
const DefaultServiceLogPattern = `%Y-%M-%D\%h%m%s.%f-%a.xml`

// Config is the root configuration structure
type Config struct {
	Contract     ContractConfig     `yaml:"contract"`
	Certificates CertificatesConfig `yaml:"certificates"`
	Endpoints    EndpointsConfig    `yaml:"endpoints"`
	ServiceLogs  ServiceLogsConfig  `yaml:"serviceLogs"`
	Transport    TransportConfig    `yaml:"transport"`
}

// ContractConfig identifies the merchant
type ContractConfig struct {
	ID        string `yaml:"id"`
	SubID     uint   `yaml:"subId"`
	ReturnURL string `yaml:"returnUrl"`
}

// CertificatesConfig holds certificate fingerprints and key store settings
type CertificatesConfig struct {
	Signing           string `yaml:"signing"`
	Acquirer          string `yaml:"acquirer"`
	AcquirerAlternate string `yaml:"acquirerAlternate"`

	// Store determines where certificates and keys are kept
	// - "file": PEM files in Dir
	// - "pkcs11": signing key and certificate on a PKCS#11 token, other
	//   certificates in Dir
	Store string `yaml:"store"`
	Dir   string `yaml:"dir"`

	PKCS11 PKCS11Config `yaml:"pkcs11"`

	// CheckRevocation checks the acquirer certificates over OCSP at startup
	CheckRevocation bool `yaml:"checkRevocation"`
}

// PKCS11Config holds PKCS#11 HSM settings
type PKCS11Config struct {
	// Path to the PKCS#11 library (.so/.dylib/.dll)
	ModulePath string `yaml:"modulePath"`
	// Slot ID or label to use
	SlotID    uint   `yaml:"slotId"`
	SlotLabel string `yaml:"slotLabel"`
	// PIN for authentication (can be env var reference like ${HSM_PIN})
	PIN string `yaml:"pin"`
}

// EndpointsConfig holds the acquirer URLs
type EndpointsConfig struct {
	Directory   string `yaml:"directory"`
	Transaction string `yaml:"transaction"`
	Status      string `yaml:"status"`
}

// ServiceLogsConfig holds service log settings
type ServiceLogsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Location is a directory, used unless Mongo.URI is set
	Location string `yaml:"location"`
	// Pattern names each entry, see DefaultServiceLogPattern
	Pattern string      `yaml:"pattern"`
	Mongo   MongoConfig `yaml:"mongo"`
}

// MongoConfig holds MongoDB connection settings for the GridFS service log
type MongoConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	BucketName     string `yaml:"bucketName"`
	ChunkSizeBytes int32  `yaml:"chunkSizeBytes"`
}

// TransportConfig holds HTTPS client settings
type TransportConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MinTLSVersion string        `yaml:"minTLSVersion"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML data
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Certificates.Store == "" {
		c.Certificates.Store = "file"
	}
	if c.Certificates.Dir == "" {
		c.Certificates.Dir = "./certs"
	}
	if c.ServiceLogs.Pattern == "" {
		c.ServiceLogs.Pattern = DefaultServiceLogPattern
	}
	if c.ServiceLogs.Mongo.Database == "" {
		c.ServiceLogs.Mongo.Database = "emandates"
	}
	if c.ServiceLogs.Mongo.BucketName == "" {
		c.ServiceLogs.Mongo.BucketName = "servicelogs"
	}
	if c.ServiceLogs.Mongo.ChunkSizeBytes == 0 {
		c.ServiceLogs.Mongo.ChunkSizeBytes = 261120 // 255KB
	}
	if c.Transport.Timeout == 0 {
		c.Transport.Timeout = 30 * time.Second
	}
	if c.Transport.MinTLSVersion == "" {
		c.Transport.MinTLSVersion = "1.2"
	}
}

// validate checks the settings the communicator does not check itself
func (c *Config) validate() error {
	switch c.Certificates.Store {
	case "file", "pkcs11":
	default:
		return fmt.Errorf("certificates.store must be 'file' or 'pkcs11', got '%s'", c.Certificates.Store)
	}

	if c.Certificates.Store == "pkcs11" && c.Certificates.PKCS11.ModulePath == "" {
		return fmt.Errorf("certificates.pkcs11.modulePath is required when store is 'pkcs11'")
	}

	if c.ServiceLogs.Enabled && c.ServiceLogs.Location == "" && c.ServiceLogs.Mongo.URI == "" {
		return fmt.Errorf("serviceLogs.location or serviceLogs.mongo.uri is required when service logs are enabled")
	}

	if _, err := transport.ParseTLSVersion(c.Transport.MinTLSVersion); err != nil {
		return fmt.Errorf("transport.minTLSVersion: %w", err)
	}

	return nil
}

// Merchant returns the communicator configuration. CertificateLoader and
// Logger are left for the caller to set.
func (c *Config) Merchant() communicator.Configuration {
	return communicator.Configuration{
		ContractID:                              c.Contract.ID,
		ContractSubID:                           c.Contract.SubID,
		MerchantReturnURL:                       c.Contract.ReturnURL,
		SigningCertificateFingerprint:           c.Certificates.Signing,
		AcquirerCertificateFingerprint:          c.Certificates.Acquirer,
		AcquirerAlternateCertificateFingerprint: c.Certificates.AcquirerAlternate,
		DirectoryURL:                            c.Endpoints.Directory,
		TransactionURL:                          c.Endpoints.Transaction,
		StatusURL:                               c.Endpoints.Status,
		CheckRevocation:                         c.Certificates.CheckRevocation,
	}
}

// HTTPS returns the transport settings
func (c *Config) HTTPS() (*transport.HTTPSConfig, error) {
	version, err := transport.ParseTLSVersion(c.Transport.MinTLSVersion)
	if err != nil {
		return nil, err
	}
	cfg := transport.DefaultHTTPSConfig()
	cfg.MinTLSVersion = version
	cfg.Timeout = c.Transport.Timeout
	return cfg, nil
}
