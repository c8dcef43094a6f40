package nn

import (
	"fmt"
	"strings"

	"neurograph/internal/model"
)

// NormalizePlasticityRuleName maps user-facing rule spellings onto the
// canonical names. Unknown names pass through lowercased so validation can
// report them verbatim.
func NormalizePlasticityRuleName(rule string) model.Plasticity {
	switch strings.ToLower(strings.TrimSpace(rule)) {
	case "", string(model.PlasticityStatic), "none":
		return model.PlasticityStatic
	case string(model.PlasticitySTDP):
		return model.PlasticitySTDP
	case string(model.PlasticityHebbian), "hebbian_w":
		return model.PlasticityHebbian
	case string(model.PlasticityHomeostatic):
		return model.PlasticityHomeostatic
	default:
		return model.Plasticity(strings.ToLower(strings.TrimSpace(rule)))
	}
}

// ValidatePlasticityRule rejects rules outside the supported set. Hebbian
// and homeostatic are accepted names but only STDP drives weight updates.
func ValidatePlasticityRule(rule model.Plasticity) error {
	if !rule.Valid() {
		return fmt.Errorf("unsupported plasticity rule: %s", rule)
	}
	return nil
}
