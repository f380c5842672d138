package checksum

import "testing"

func TestSumKnownValue(t *testing.T) {
	// sha256("") is a well-known constant.
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %q, want %q", got, empty)
	}
}

func TestMatches(t *testing.T) {
	data := []byte(`{"a": "b"}`)
	if !Matches(data, Sum(data)) {
		t.Error("expected data to match its own sum")
	}
	if Matches(data, Sum([]byte("other"))) {
		t.Error("expected mismatch for different data")
	}
	if Matches(nil, "") {
		t.Error("empty sum must never match")
	}
}
