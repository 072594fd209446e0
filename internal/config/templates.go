package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "inventory":
		return inventoryTemplate, nil
	case "service":
		return serviceTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const inventoryTemplate = `[[devices]]
name = "leaf1"
address = "https://10.0.0.1"
username = "admin"
password_env = "LEAF1_PASSWORD"
insecure_skip_verify = true
interface_naming = "native"
timeout = "30s"
retry_max = 2

[[devices]]
name = "leaf2"
address = "https://10.0.0.2"
username = "admin"
password_env = "LEAF2_PASSWORD"
ca_file = "/etc/sonicctl/ca.crt"
interface_naming = "standard"
`

const serviceTemplate = `listen_addr = ":9300"
inventory = "inventory.toml"
api_token_env = "SONICCTL_API_TOKEN"
cors_origins = ["http://localhost:3000"]
max_parallel = 4
`
