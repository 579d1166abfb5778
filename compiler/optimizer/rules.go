package optimizer

import (
	"slices"
	"strings"

	"github.com/brimdata/gather/qerr"
)

const (
	RemoveCollectVariables = "remove-collect-variables"
	SpecializeCollect      = "specialize-collect"
	UseIndexForSort        = "use-index-for-sort"
	RemoveRedundantSorts   = "remove-redundant-sorts"
)

// Rules are applied in this order.
var Rules = []string{
	RemoveCollectVariables,
	SpecializeCollect,
	UseIndexForSort,
	RemoveRedundantSorts,
}

// specialize-collect resolves the method of every COLLECT, which must
// happen for the plan to run at all.
func canDisable(rule string) bool {
	return rule != SpecializeCollect
}

// enabledRules applies the switches "-all", "+all", "-<rule>" and
// "+<rule>" in order to the set of rules, which starts out with every rule
// enabled.  Unknown rule names produce a warning.
func enabledRules(switches []string, warnings *qerr.Warnings) map[string]bool {
	enabled := make(map[string]bool)
	for _, r := range Rules {
		enabled[r] = true
	}
	for _, s := range switches {
		on := !strings.HasPrefix(s, "-")
		name := strings.TrimLeft(s, "+-")
		if name == "all" {
			for _, r := range Rules {
				enabled[r] = on || !canDisable(r)
			}
			continue
		}
		if !slices.Contains(Rules, name) {
			warnings.Add(qerr.KindInvalidOptionsAttribute, "unknown optimizer rule: %s", name)
			continue
		}
		enabled[name] = on || !canDisable(name)
	}
	return enabled
}
