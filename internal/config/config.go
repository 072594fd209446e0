package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/sonicctl/internal/intfname"
)

const (
	DefaultTimeout  = 30 * time.Second
	DefaultRetryMax = 2
)

var ErrUnknownDevice = errors.New("unknown device")

// Inventory lists the switches sonicctl may reconcile.
type Inventory struct {
	Devices []Device `toml:"devices"`
}

type Device struct {
	Name               string `toml:"name"`
	Address            string `toml:"address"`
	Username           string `toml:"username"`
	PasswordEnv        string `toml:"password_env"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	CAFile             string `toml:"ca_file"`
	InterfaceNaming    string `toml:"interface_naming"`
	Timeout            string `toml:"timeout"`
	RetryMax           *int   `toml:"retry_max"`
}

func LoadInventory(path string) (Inventory, error) {
	var inv Inventory
	if err := loadToml(path, &inv); err != nil {
		return Inventory{}, err
	}
	for i := range inv.Devices {
		applyDeviceDefaults(&inv.Devices[i])
	}
	if err := ValidateInventory(inv); err != nil {
		return Inventory{}, err
	}
	return inv, nil
}

func applyDeviceDefaults(dev *Device) {
	dev.Name = strings.TrimSpace(dev.Name)
	if strings.TrimSpace(dev.InterfaceNaming) == "" {
		dev.InterfaceNaming = string(intfname.Native)
	}
	if strings.TrimSpace(dev.Timeout) == "" {
		dev.Timeout = DefaultTimeout.String()
	}
	if dev.RetryMax == nil {
		retry := DefaultRetryMax
		dev.RetryMax = &retry
	}
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateInventory(inv Inventory) error {
	seen := make(map[string]struct{}, len(inv.Devices))
	for i, dev := range inv.Devices {
		if err := ValidateDevice(dev); err != nil {
			return fmt.Errorf("device[%d] invalid: %w", i, err)
		}
		if _, dup := seen[dev.Name]; dup {
			return fmt.Errorf("device[%d] invalid: duplicate name %q", i, dev.Name)
		}
		seen[dev.Name] = struct{}{}
	}
	return nil
}

func ValidateDevice(dev Device) error {
	if strings.TrimSpace(dev.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(dev.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if _, err := intfname.ParseMode(dev.InterfaceNaming); err != nil {
		return err
	}
	if strings.TrimSpace(dev.Timeout) != "" {
		d, err := time.ParseDuration(dev.Timeout)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
	}
	if dev.RetryMax != nil && *dev.RetryMax < 0 {
		return fmt.Errorf("retry_max must not be negative")
	}
	if dev.InsecureSkipVerify && strings.TrimSpace(dev.CAFile) != "" {
		return fmt.Errorf("ca_file and insecure_skip_verify are mutually exclusive")
	}
	return nil
}

// Lookup returns the device named name.
func (inv Inventory) Lookup(name string) (Device, error) {
	for _, dev := range inv.Devices {
		if dev.Name == name {
			return dev, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
}

// Names returns device names sorted.
func (inv Inventory) Names() []string {
	out := make([]string, 0, len(inv.Devices))
	for _, dev := range inv.Devices {
		out = append(out, dev.Name)
	}
	sort.Strings(out)
	return out
}
