package authz

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// GrantMap is a sparse module -> action -> bool structure describing what a
// role is allowed to do. Missing keys mean "not granted": evaluation is
// fail-closed, so an unknown module or action never grants access.
type GrantMap map[string]map[string]bool

// Has reports whether the map grants the given module/action pair.
// A missing module key, a missing action key, or an explicit false all
// resolve to false.
func (g GrantMap) Has(module, action string) bool {
	if g == nil {
		return false
	}
	actions, ok := g[module]
	if !ok {
		return false
	}
	return actions[action]
}

// HasCode evaluates a "module.action" permission code.
func (g GrantMap) HasCode(code string) bool {
	module, action, ok := SplitCode(code)
	if !ok {
		return false
	}
	return g.Has(module, action)
}

// Grant sets the given module/action pair to true, allocating nested maps
// as needed.
func (g GrantMap) Grant(module, action string) {
	actions, ok := g[module]
	if !ok {
		actions = make(map[string]bool)
		g[module] = actions
	}
	actions[action] = true
}

// Revoke sets the given module/action pair to false. When every action of a
// module becomes false the module key is pruned so the stored map stays
// sparse. Pruning never changes evaluation results: a pruned module reads
// the same as explicit false grants.
func (g GrantMap) Revoke(module, action string) {
	actions, ok := g[module]
	if !ok {
		return
	}
	actions[action] = false

	for _, allowed := range actions {
		if allowed {
			return
		}
	}
	delete(g, module)
}

// Clone returns a deep copy of the map.
func (g GrantMap) Clone() GrantMap {
	out := make(GrantMap, len(g))
	for module, actions := range g {
		copied := make(map[string]bool, len(actions))
		for action, allowed := range actions {
			copied[action] = allowed
		}
		out[module] = copied
	}
	return out
}

// Value implements driver.Valuer so GrantMap persists as a JSONB column.
func (g GrantMap) Value() (driver.Value, error) {
	if g == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner for JSONB round-trips.
func (g *GrantMap) Scan(value interface{}) error {
	if value == nil {
		*g = GrantMap{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into GrantMap", value)
	}

	if len(raw) == 0 {
		*g = GrantMap{}
		return nil
	}
	return json.Unmarshal(raw, g)
}

// Code joins a module and action into the "module.action" form used by
// route middleware and the permission catalog.
func Code(module, action string) string {
	return module + "." + action
}

// SplitCode splits a "module.action" code. The action part may itself
// contain dots; only the first separator is significant.
func SplitCode(code string) (module, action string, ok bool) {
	idx := strings.Index(code, ".")
	if idx <= 0 || idx == len(code)-1 {
		return "", "", false
	}
	return code[:idx], code[idx+1:], true
}
