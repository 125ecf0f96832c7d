package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())

	limits := cfg.Limits()
	assert.Equal(t, 1024, limits.MaxLineLen)
	assert.Equal(t, 8, limits.MaxStages)
	assert.Equal(t, 32, limits.MaxArgs)
}

func TestValidateRejectsBadLimits(t *testing.T) {
	cfg := Default()
	cfg.MaxCommands = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.SSHPort = 70000
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Prompt = ""
	assert.Error(t, cfg.Validate())
}
