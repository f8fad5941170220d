package gateway

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	RedirectTestURL = "https://ecomt.victoriabank.md/cgi-bin/cgi_link"
	RedirectLiveURL = "https://egateway.victoriabank.md/cgi-bin/cgi_link"

	SignatureFirst   = "0001"
	SignaturePrefix  = "3020300C06082A864886F70D020505000410"
	SignaturePadding = "00"

	// TimestampFormat is the bank's YmdHis wire format.
	TimestampFormat = "20060102150405"

	ModeTest = "test"
	ModeLive = "live"
)

// Config is the merchant identity and key material a client is constructed
// with. Nothing here is shared mutable state: every client gets its own copy.
type Config struct {
	Merchant        string `yaml:"merchant" validate:"required"`
	Terminal        string `yaml:"terminal" validate:"required"`
	MerchantName    string `yaml:"merchant_name" validate:"required"`
	MerchantURL     string `yaml:"merchant_url" validate:"required,url"`
	MerchantAddress string `yaml:"merchant_address" validate:"required"`
	CountryCode     string `yaml:"country_code" validate:"required,len=2"`
	DefaultCurrency string `yaml:"default_currency" validate:"required,len=3"`

	PublicKeyPath      string `yaml:"public_key_path"`
	PrivateKeyPath     string `yaml:"private_key_path"`
	PrivateKeyPassword string `yaml:"private_key_password"`
	BankPublicKey      string `yaml:"bank_public_key"`

	// SharedSecret drives the fake client's P_SIGN scheme.
	SharedSecret string `yaml:"shared_secret"`

	Mode string `yaml:"mode" validate:"required,oneof=test live"`
}

func (c Config) GatewayURL() string {
	if c.Mode == ModeLive {
		return RedirectLiveURL
	}
	return RedirectTestURL
}

// DevConfig is the merchant identity the binaries fall back to when no
// config file is given. It only ever talks to the fake bank.
func DevConfig() Config {
	return Config{
		Merchant:        "49041",
		Terminal:        "99001",
		MerchantName:    "Dev Shop",
		MerchantURL:     "http://localhost:8080",
		MerchantAddress: "Chisinau",
		CountryCode:     "MD",
		DefaultCurrency: "MDL",
		SharedSecret:    "dev-secret",
		Mode:            ModeTest,
	}
}

var configValidate = validator.New()

func (c Config) Validate() error {
	return configValidate.Struct(c)
}

// LoadConfig reads and validates a YAML merchant configuration file.
func LoadConfig(path string) (Config, error) {
	var c Config
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("layer=gateway component=config method=LoadConfig path=%s err=%v", path, err)
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		log.Printf("layer=gateway component=config method=LoadConfig path=%s err=%v", path, err)
		return c, err
	}
	if err := c.Validate(); err != nil {
		log.Printf("layer=gateway component=config method=LoadConfig path=%s err=%v", path, err)
		return c, err
	}
	return c, nil
}
