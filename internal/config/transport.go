package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/danmuck/sonicctl/internal/intfname"
	"github.com/danmuck/sonicctl/internal/restconf"
)

// Transport converts an inventory entry into a RESTCONF client config,
// reading the password from the named environment variable.
func (dev Device) Transport() (restconf.Config, error) {
	cfg := restconf.DefaultConfig()
	cfg.Address = dev.Address
	cfg.Username = dev.Username
	cfg.InsecureSkipVerify = dev.InsecureSkipVerify
	cfg.CAFile = dev.CAFile
	if env := strings.TrimSpace(dev.PasswordEnv); env != "" {
		pw, ok := os.LookupEnv(env)
		if !ok {
			return restconf.Config{}, fmt.Errorf("device %s: password env %s is not set", dev.Name, env)
		}
		cfg.Password = pw
	}
	if strings.TrimSpace(dev.Timeout) != "" {
		d, err := time.ParseDuration(dev.Timeout)
		if err != nil {
			return restconf.Config{}, fmt.Errorf("device %s: timeout: %w", dev.Name, err)
		}
		cfg.Timeout = d
	}
	if dev.RetryMax != nil {
		cfg.RetryMax = *dev.RetryMax
	}
	return cfg, nil
}

// Naming returns the device's interface naming mode.
func (dev Device) Naming() (intfname.Mode, error) {
	return intfname.ParseMode(dev.InterfaceNaming)
}
