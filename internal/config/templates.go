package config

import (
	"fmt"
	"os"

	pelletier "github.com/pelletier/go-toml/v2"
)

// Template renders the default configuration as TOML.
func Template() (string, error) {
	data, err := pelletier.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("config template: %w", err)
	}
	return templateHeader + string(data), nil
}

func WriteTemplate(path string, overwrite bool) error {
	template, err := Template()
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

const templateHeader = `# vcioctl configuration
#
# device: vcio character device used for firmware property exchanges.
# [memory].flags: one memtest pass per entry; entries are MEM_FLAG names
# joined by '|' (NORMAL, DISCARDABLE, DIRECT, COHERENT, L1_NONALLOCATING,
# ZERO, NO_INIT, HINT_PERMALOCK).

`
