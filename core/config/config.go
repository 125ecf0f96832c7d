// Package config holds the interpreter's configuration: the structural
// limits on input lines and pipelines, and the settings for serving
// sessions over SSH.
package config

import (
	_ "embed"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"github.com/pipesh/pipesh/core/pipeline"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	PrivateKeyName    = "private_key"
	AppLogName        = "app.log"
)

type Configuration struct {
	configFs afero.Fs

	// Prompt is shown before each input line.
	Prompt string `json:"prompt" validate:"required"`
	// MaxLineLength is the longest accepted input line.
	MaxLineLength int `json:"max_line_length" validate:"gt=1"`
	// MaxCommands bounds the number of commands in one pipeline.
	MaxCommands int `json:"max_commands" validate:"gt=1"`
	// MaxArgs bounds each command's argument vector, argv[0] included.
	MaxArgs int `json:"max_args" validate:"gt=0"`

	SSHPort          int      `json:"ssh_port" validate:"gte=0,lte=65535"`
	AllowAnyPassword bool     `json:"allow_any_password"`
	GlobalPasswords  []string `json:"global_passwords"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Limits returns the pipeline bounds this configuration imposes.
func (c *Configuration) Limits() pipeline.Limits {
	return pipeline.Limits{
		MaxLineLen: c.MaxLineLength,
		MaxStages:  c.MaxCommands,
		MaxArgs:    c.MaxArgs,
	}
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewMemMapFs()
	}
	return c.configFs
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}

// PrivateKeyPem returns the bytes of the SSH host private key.
func (c *Configuration) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), PrivateKeyName)
}

// Default returns the built-in configuration, not backed by any directory.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		// The embedded default is compiled in; failing to parse it is a
		// build defect, not a runtime condition.
		panic(err)
	}
	out.configFs = afero.NewMemMapFs()
	return &out
}
