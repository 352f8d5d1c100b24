package id_test

import (
	"strings"
	"testing"

	"github.com/xraph/correlate/id"
)

func TestNew_PrefixRoundTrip(t *testing.T) {
	sub := id.NewSubscriptionID()
	if sub.Prefix() != id.PrefixSubscription {
		t.Errorf("Prefix() = %q, want %q", sub.Prefix(), id.PrefixSubscription)
	}
	if !strings.HasPrefix(sub.String(), "sub_") {
		t.Errorf("String() = %q, want sub_ prefix", sub.String())
	}
}

func TestNew_Unique(t *testing.T) {
	a := id.NewDefinitionID()
	b := id.NewDefinitionID()
	if a.String() == b.String() {
		t.Fatalf("two generated IDs collided: %s", a)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	orig := id.NewDeploymentID()

	parsed, err := id.Parse(orig.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.String() != orig.String() {
		t.Errorf("round trip = %q, want %q", parsed.String(), orig.String())
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Fatal("expected error for empty string")
	}
}

func TestParseWithPrefix_Mismatch(t *testing.T) {
	sub := id.NewSubscriptionID()
	if _, err := id.ParseDropID(sub.String()); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
}

func TestNil_Behavior(t *testing.T) {
	var n id.ID
	if !n.IsNil() {
		t.Error("zero ID should be nil")
	}
	if n.String() != "" {
		t.Errorf("Nil.String() = %q, want empty", n.String())
	}

	v, err := n.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != nil {
		t.Errorf("Nil.Value() = %v, want nil", v)
	}
}

func TestMarshalText_RoundTrip(t *testing.T) {
	orig := id.NewInstanceID()

	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var back id.ID
	if err := back.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back.String() != orig.String() {
		t.Errorf("round trip = %q, want %q", back.String(), orig.String())
	}
}

func TestScan_String(t *testing.T) {
	orig := id.NewDropID()

	var scanned id.ID
	if err := scanned.Scan(orig.String()); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if scanned.String() != orig.String() {
		t.Errorf("scanned = %q, want %q", scanned.String(), orig.String())
	}

	var empty id.ID
	if err := empty.Scan(""); err != nil {
		t.Fatalf("Scan empty: %v", err)
	}
	if !empty.IsNil() {
		t.Error("scanning empty string should yield Nil")
	}
}
