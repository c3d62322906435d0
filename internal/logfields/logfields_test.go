package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"File", KeyFile, "index.html", File("index.html")},
		{"Key", KeyKey, "header.html", Key("header.html")},
		{"Namespace", KeyNamespace, "imports", Namespace("imports")},
		{"Chain", KeyChain, "a.html -> b.html", Chain("a.html -> b.html")},
		{"Addr", KeyAddr, ":8080", Addr(":8080")},
		{"Event", KeyEvent, "WRITE", Event("WRITE")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
	if v := Compiled(3); v.Key != KeyCompiled || v.Value.Int64() != 3 {
		t.Fatalf("Compiled mismatch: %v", v)
	}
	if v := Copied(2); v.Key != KeyCopied {
		t.Fatalf("Copied key mismatch: %s", v.Key)
	}
	if v := Failed(1); v.Key != KeyFailed {
		t.Fatalf("Failed key mismatch: %s", v.Key)
	}
	if v := Partials(7); v.Key != KeyPartials {
		t.Fatalf("Partials key mismatch: %s", v.Key)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }
