package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Credentials struct {
	Username string `env:"AO3_USERNAME,required,notEmpty"`
	Password string `env:"AO3_PASSWORD,required,notEmpty"`
}

// LoadCredentials reads AO3_USERNAME and AO3_PASSWORD from the process
// environment, falling back to envFile. A missing envFile is not an error;
// missing variables are.
func LoadCredentials(envFile string) (Credentials, error) {
	environ := map[string]string{}

	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, fmt.Errorf("read %s: %w", envFile, err)
		}
		for k, v := range fileEnv {
			environ[k] = v
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			environ[k] = v
		}
	}

	var creds Credentials
	if err := env.ParseWithOptions(&creds, env.Options{Environment: environ}); err != nil {
		return Credentials{}, fmt.Errorf("AO3_USERNAME and AO3_PASSWORD must be set in the environment or %s: %w", envFile, err)
	}

	return creds, nil
}
