package intent

import "testing"

func TestClassifyEachIntent(t *testing.T) {
	cases := []struct {
		query string
		want  Intent
	}{
		{"read the config file", Read},
		{"Show me main.go", Read},
		{"cat README.md", Read},
		{"create a new handler", Write},
		{"generate docs", Write},
		{"debug the crash", Fix},
		{"please repair this", Fix},
		{"scan the repo", Scan},
		{"list everything", Scan},
		{"find files named foo", Scan},
		{"grep for TODO markers", Grep},
		{"search the code", Grep},
		{"find pattern foo", Grep},
		{"sync the mesh", Mesh},
		{"network status", Mesh},
		{"execute the job", Run},
		{"command output", Run},
		{"start the mining extraction", Mine},
		{"qbyte balance", Mine},
		{"quantum telemetry", Quantum},
		{"what is phi", Quantum},
		{"consciousness report", Quantum},
		{"hello there", Analyze},
		{"", Analyze},
	}
	for _, c := range cases {
		if got := Classify(c.query); got != c.want {
			t.Errorf("Classify(%q) = %s, want %s", c.query, got, c.want)
		}
	}
}

func TestClassifyPrecedence(t *testing.T) {
	cases := []struct {
		query string
		want  Intent
	}{
		// run precedes mine in the table.
		{"run the mining extraction", Run},
		// read precedes write.
		{"read and write the file", Read},
		// fix precedes scan.
		{"fix the directory layout", Fix},
		// grep precedes quantum.
		{"search for phi values", Grep},
		// scan precedes grep.
		{"list and search", Scan},
	}
	for _, c := range cases {
		if got := Classify(c.query); got != c.want {
			t.Errorf("Classify(%q) = %s, want %s", c.query, got, c.want)
		}
	}
}

func TestClassifyWordBoundaries(t *testing.T) {
	cases := map[string]Intent{
		"running late":    Analyze, // "running" is not "run"
		"thread pool":     Analyze, // "read" inside a word
		"mined yesterday": Analyze,
		"phials":          Analyze,
		"renewal":         Analyze,
	}
	for query, want := range cases {
		if got := Classify(query); got != want {
			t.Errorf("Classify(%q) = %s, want %s", query, got, want)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	if got := Classify("GREP FOR THINGS"); got != Grep {
		t.Fatalf("expected grep, got %s", got)
	}
}

func TestPatternsOrder(t *testing.T) {
	want := []Intent{Read, Write, Fix, Scan, Grep, Mesh, Run, Mine, Quantum}
	got := Patterns()
	if len(got) != len(want) {
		t.Fatalf("expected %d patterns, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Intent != want[i] {
			t.Fatalf("pattern %d: got %s want %s", i, got[i].Intent, want[i])
		}
	}
	got[0] = Pattern{}
	if Patterns()[0].Intent != Read {
		t.Fatal("Patterns must return a copy")
	}
}
