package config

import (
	"io/ioutil"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitialize(t *testing.T) {
	tempDir := t.TempDir()
	discard := log.New(ioutil.Discard, "", 0)

	cfg, err := Initialize(tempDir, discard)
	if err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	t.Run("OpenAppLog", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("ReadAppLog sees appended events", func(t *testing.T) {
		fd, err := cfg.OpenAppLog()
		assert.Nil(t, err)
		_, err = fd.WriteString("{\"event\":\"one\"}\n")
		assert.Nil(t, err)
		fd.Close()

		in, err := cfg.ReadAppLog()
		assert.Nil(t, err)
		defer in.Close()

		contents, err := ioutil.ReadAll(in)
		assert.Nil(t, err)
		assert.Equal(t, "{\"event\":\"one\"}\n", string(contents))
	})

	t.Run("PrivateKeyPem", func(t *testing.T) {
		keyPem, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)
		assert.True(t, strings.Contains(string(keyPem), "RSA PRIVATE KEY"))
	})

	t.Run("Reload", func(t *testing.T) {
		loaded, err := Load(tempDir)
		assert.Nil(t, err)
		assert.Equal(t, cfg.Limits(), loaded.Limits())
	})

	t.Run("Rerun keeps existing files", func(t *testing.T) {
		before, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)

		_, err = Initialize(tempDir, discard)
		assert.Nil(t, err)

		after, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)
		assert.Equal(t, before, after)
	})
}
