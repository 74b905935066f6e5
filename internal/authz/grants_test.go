package authz

import (
	"testing"
)

func TestHasFailClosed(t *testing.T) {
	g := GrantMap{"projects": {"read": true}}

	if g.Has("projects", "write") {
		t.Fatalf("missing action should evaluate to false")
	}
	if g.Has("ledger", "read") {
		t.Fatalf("missing module should evaluate to false")
	}
	if g.Has("projcets", "read") {
		t.Fatalf("misspelled module should evaluate to false, not error")
	}

	var nilMap GrantMap
	if nilMap.Has("projects", "read") {
		t.Fatalf("nil map should evaluate to false")
	}
}

func TestHasExplicitFalse(t *testing.T) {
	g := GrantMap{"projects": {"read": false, "write": true}}
	if g.Has("projects", "read") {
		t.Fatalf("explicit false should evaluate to false")
	}
	if !g.Has("projects", "write") {
		t.Fatalf("explicit true should evaluate to true")
	}
}

func TestHasCode(t *testing.T) {
	g := GrantMap{"ledger": {"read": true}}

	if !g.HasCode("ledger.read") {
		t.Fatalf("granted code should evaluate to true")
	}
	if g.HasCode("ledger.write") {
		t.Fatalf("missing code should evaluate to false")
	}
	for _, malformed := range []string{"", "ledger", ".read", "ledger.", "ledger.read.extra"} {
		if g.HasCode(malformed) {
			t.Fatalf("malformed code %q should evaluate to false", malformed)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := GrantMap{"projects": {"read": true}}
	copied := g.Clone()

	copied.Grant("projects", "write")
	copied.Revoke("projects", "read")

	if g.Has("projects", "write") {
		t.Fatalf("granting on the clone must not touch the original")
	}
	if !g.Has("projects", "read") {
		t.Fatalf("revoking on the clone must not touch the original")
	}
}

func TestGrantRoundTrip(t *testing.T) {
	g := GrantMap{}
	g.Grant("ledger", "write")
	if !g.Has("ledger", "write") {
		t.Fatalf("granted action should evaluate to true")
	}
}

func TestRevokePrunesEmptyModule(t *testing.T) {
	g := GrantMap{}
	g.Grant("crm", "read")
	g.Grant("crm", "write")

	g.Revoke("crm", "read")
	if _, ok := g["crm"]; !ok {
		t.Fatalf("module with a remaining true action must not be pruned")
	}

	g.Revoke("crm", "write")
	if _, ok := g["crm"]; ok {
		t.Fatalf("module with no true actions should be pruned")
	}

	// Pruned module must read the same as explicit false.
	if g.Has("crm", "read") || g.Has("crm", "write") {
		t.Fatalf("pruned module should still evaluate to false")
	}
}

func TestRevokeUnknownModuleIsNoop(t *testing.T) {
	g := GrantMap{"crm": {"read": true}}
	g.Revoke("ledger", "read")
	if !g.Has("crm", "read") {
		t.Fatalf("revoking an unknown module must not disturb other grants")
	}
}

func TestGrantMapSQLRoundTrip(t *testing.T) {
	g := GrantMap{}
	g.Grant("journal", "post")
	g.Grant("dashboard", "view")

	raw, err := g.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var decoded GrantMap
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if !decoded.Has("journal", "post") || !decoded.Has("dashboard", "view") {
		t.Fatalf("grants lost in SQL round trip: %v", decoded)
	}
	if decoded.Has("journal", "read") {
		t.Fatalf("round trip invented a grant")
	}
}

func TestGrantMapScanNil(t *testing.T) {
	var g GrantMap
	if err := g.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if g.Has("crm", "read") {
		t.Fatalf("nil column should yield an empty, fail-closed map")
	}
}

func TestSplitCode(t *testing.T) {
	module, action, ok := SplitCode("ledger.read")
	if !ok || module != "ledger" || action != "read" {
		t.Fatalf("unexpected split: %q %q %v", module, action, ok)
	}

	for _, bad := range []string{"", "ledger", ".read", "ledger."} {
		if _, _, ok := SplitCode(bad); ok {
			t.Fatalf("expected split of %q to fail", bad)
		}
	}
}

func TestCatalogUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range Catalog() {
		if seen[p.Code()] {
			t.Fatalf("duplicate catalog entry %s", p.Code())
		}
		seen[p.Code()] = true
	}
}

func TestFullGrantsCoversCatalog(t *testing.T) {
	g := FullGrants()
	for _, p := range Catalog() {
		if !g.Has(p.Module, p.Action) {
			t.Fatalf("full grants missing %s", p.Code())
		}
	}
}

func TestGrantsForSkipsUnknownCodes(t *testing.T) {
	g := GrantsFor("crm.read", "nonsense.everything", "badcode")
	if !g.Has("crm", "read") {
		t.Fatalf("known code should be granted")
	}
	if g.Has("nonsense", "everything") {
		t.Fatalf("unknown code must not be granted")
	}
}
