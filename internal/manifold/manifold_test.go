package manifold

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestTokenHashGolden(t *testing.T) {
	cases := map[string][hashCount]int64{
		"":      {0, 17, 578, 18543, 593308, 18985901, 607548862, 2033272885},
		"hello": {1121772992, 1536997359, 1939275198, 1927264145, 1542910564, 2128497747, 607548862, 2033272885},
		"naïve": {944232096, 150655983, 526024126, 347097199, 1777791588, 1054755923, 607548862, 2033272885},
		"😀":     {56732768, 1815448593, 2035187134, 701478801, 972485220, 1054755923, 607548862, 2033272885},
	}
	for token, want := range cases {
		if got := tokenHash(token); got != want {
			t.Errorf("tokenHash(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestTokenToPointGolden(t *testing.T) {
	p := TokenToPoint("hello", 0.78)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"x", p.X, 0.545984},
		{"y", p.Y, 0.994718},
		{"z", p.Z, -0.449604},
		{"theta", p.Theta, 0.829835991482476},
		{"phi", p.Phi, 5.721242346046673},
		{"psi", p.Psi, 3.1274366370927176},
		{"lambda", p.Coupling, 0.8804552},
		{"gamma", p.Decoherence, 0.0727115},
		{"coherence", p.Coherence, 0.78},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > eps {
			t.Errorf("%s: got %.12f, want %.12f", c.name, c.got, c.want)
		}
	}
	if p.Token != "hello" {
		t.Errorf("expected token to be kept, got %q", p.Token)
	}
}

func TestTokenToPointDeterministic(t *testing.T) {
	for _, tok := range []string{"", "a", "README.md", "日本", "consciousness"} {
		a := TokenToPoint(tok, 0.61)
		b := TokenToPoint(tok, 0.61)
		if a != b {
			t.Fatalf("embedding of %q not deterministic: %+v vs %+v", tok, a, b)
		}
	}
}

func TestTokenToPointCoherenceFromContext(t *testing.T) {
	a := TokenToPoint("token", 0.2)
	b := TokenToPoint("token", 0.9)
	if a.Coherence != 0.2 || b.Coherence != 0.9 {
		t.Fatalf("coherence must come from context, got %f and %f", a.Coherence, b.Coherence)
	}
	a.Coherence, b.Coherence = 0, 0
	if a != b {
		t.Fatal("context coherence must not affect hashed coordinates")
	}
}

func TestTokenToPointRanges(t *testing.T) {
	for _, tok := range []string{"", "x", "the", "quick", "brown", "fox", "a much longer token with spaces", "日本語テキスト"} {
		p := TokenToPoint(tok, 0.78)
		for _, v := range []float64{p.X, p.Y, p.Z} {
			if v < -1 || v > 1 {
				t.Errorf("%q: spatial coordinate %f out of [-1, 1]", tok, v)
			}
		}
		if p.Theta < 0 || p.Theta > math.Pi {
			t.Errorf("%q: theta %f out of [0, π]", tok, p.Theta)
		}
		if p.Phi < 0 || p.Phi > 2*math.Pi || p.Psi < 0 || p.Psi > 2*math.Pi {
			t.Errorf("%q: phi/psi out of [0, 2π]: %f %f", tok, p.Phi, p.Psi)
		}
		if p.Coupling < 0.7 || p.Coupling > 0.9 {
			t.Errorf("%q: lambda %f out of [0.7, 0.9]", tok, p.Coupling)
		}
		if p.Decoherence < 0.05 || p.Decoherence > 0.1 {
			t.Errorf("%q: gamma %f out of [0.05, 0.1]", tok, p.Decoherence)
		}
	}
}

func TestTokensToPoints(t *testing.T) {
	points := TokensToPoints([]string{"read", "file"}, 0.8)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[1] != TokenToPoint("file", 0.8) {
		t.Fatal("batch embedding should match single embedding")
	}
	if got := TokensToPoints(nil, 0.8); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestDistance(t *testing.T) {
	a := TokenToPoint("alpha", 0.5)
	if d := Distance(a, a); d != 0 {
		t.Fatalf("distance to self should be 0, got %f", d)
	}
	b := TokenToPoint("alpha", 0.9)
	if d := Distance(a, b); d != 0 {
		t.Fatalf("coherence must not affect distance, got %f", d)
	}
	c := TokenToPoint("omega", 0.5)
	if d := Distance(a, c); d <= 0 || math.IsNaN(d) {
		t.Fatalf("expected positive distance, got %f", d)
	}
}

func TestXi(t *testing.T) {
	p := TokenToPoint("hello", 0.5)
	if math.Abs(p.Xi()-2.6354201374088006e-7) > 1e-15 {
		t.Fatalf("unexpected negentropy %g", p.Xi())
	}
}

func TestCoords(t *testing.T) {
	p := TokenToPoint("hello", 0.5)
	c := p.Coords()
	if c[0] != p.X || c[3] != p.Theta || c[5] != p.Psi {
		t.Fatalf("coords out of order: %v", c)
	}
}
