package checksum

import "testing"

func TestSumStable(t *testing.T) {
	a := Sum([]byte("!!!\n=== a\nx"))
	b := Sum([]byte("!!!\n=== a\nx"))
	if a != b || len(a) != 64 {
		t.Fatalf("Sum not stable: %q %q", a, b)
	}
	if a == Sum([]byte("!!!\n=== a\ny")) {
		t.Error("different content, same digest")
	}
}

func TestMatches(t *testing.T) {
	data := []byte("hello")
	sum := Sum(data)
	cases := []struct {
		want string
		ok   bool
	}{
		{"", true},
		{sum, true},
		{`"` + sum + `"`, true},
		{`W/"` + sum + `"`, true},
		{"deadbeef", false},
	}
	for _, c := range cases {
		if got := Matches(data, c.want); got != c.ok {
			t.Errorf("Matches(%q) = %v, want %v", c.want, got, c.ok)
		}
	}
}
