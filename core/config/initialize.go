package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration and an SSH host key into the
// directory, skipping anything that already exists, then loads the result.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	fs := afero.NewBasePathFs(afero.NewOsFs(), dir)

	if exists, _ := afero.Exists(fs, ConfigurationName); exists {
		logger.Printf("%s already exists, skipping", ConfigurationName)
	} else {
		logger.Printf("Writing %s", ConfigurationName)
		if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0644); err != nil {
			return nil, err
		}
	}

	if exists, _ := afero.Exists(fs, PrivateKeyName); exists {
		logger.Printf("%s already exists, skipping", PrivateKeyName)
	} else {
		logger.Printf("Generating host key %s", PrivateKeyName)
		keyPem, err := generateHostKey()
		if err != nil {
			return nil, err
		}
		if err := afero.WriteFile(fs, PrivateKeyName, keyPem, 0600); err != nil {
			return nil, err
		}
	}

	return Load(dir)
}

func generateHostKey() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}
