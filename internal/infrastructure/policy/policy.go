package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iho/balancechain/internal/domain"
)

// file is the YAML shape of a sign policy:
//
//	creditVouchers:
//	  - purchase
//	  - sales_return
//	  - receipt
type file struct {
	CreditVouchers []string `yaml:"creditVouchers"`
}

// Load reads a sign policy from a YAML file. An empty path returns the
// built-in defaults.
func Load(path string) (domain.SignPolicy, error) {
	if path == "" {
		return domain.DefaultSignPolicy(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.SignPolicy{}, fmt.Errorf("failed to read sign policy: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.SignPolicy{}, fmt.Errorf("failed to parse sign policy: %w", err)
	}

	if len(f.CreditVouchers) == 0 {
		return domain.SignPolicy{}, fmt.Errorf("sign policy %s lists no credit vouchers", path)
	}

	return domain.NewSignPolicy(f.CreditVouchers), nil
}
