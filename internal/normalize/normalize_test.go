package normalize

import "testing"

func TestISSN(t *testing.T) {
	tests := []struct {
		in   string
		want string // "" means nil
	}{
		{"1234-5678", "1234-5678"},
		{" 1234-567x ", "1234-567X"},
		{"N/A", ""},
		{"12345678", ""},
		{"1234-56789", ""},
		{"", ""},
		{"abcd-efgh", ""},
	}
	for _, tt := range tests {
		got := ISSN(tt.in)
		if tt.want == "" {
			if got != nil {
				t.Errorf("ISSN(%q) = %q, want nil", tt.in, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("ISSN(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"JOURNAL OF TESTING":        "Journal Of Testing",
		"  computer   science ":     "Computer Science",
		"acta mathematica hungarica": "Acta Mathematica Hungarica",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
	if Text("   ") != nil {
		t.Errorf("Text of blank should be nil")
	}
}

func TestQuartileAndIndex(t *testing.T) {
	if q := Quartile("q2"); q == nil || *q != "Q2" {
		t.Errorf("Quartile(q2) = %v", q)
	}
	for _, in := range []string{"N/A", "Q5", ""} {
		if q := Quartile(in); q != nil {
			t.Errorf("Quartile(%q) = %q, want nil", in, *q)
		}
	}
	if idx, ok := Index("scie"); !ok || *idx != "SCIE" {
		t.Errorf("Index(scie) = %v, %v", idx, ok)
	}
	if _, ok := Index("XYZW"); ok {
		t.Errorf("Index(XYZW) accepted")
	}
}

func TestNumbers(t *testing.T) {
	if p := Position("7"); p == nil || *p != 7 {
		t.Errorf("Position(7) = %v", p)
	}
	for _, in := range []string{"-1", "7a", "", "Q2"} {
		if p := Position(in); p != nil {
			t.Errorf("Position(%q) = %d, want nil", in, *p)
		}
	}
	if s := Score("3.14"); s == nil || *s != 3.14 {
		t.Errorf("Score(3.14) = %v", s)
	}
	if s := Score("0,5"); s == nil || *s != 0.5 {
		t.Errorf("Score(0,5) = %v", s)
	}
	for _, in := range []string{"n/a", "NaN", "inf", "-Infinity", "+Inf"} {
		if s := Score(in); s != nil {
			t.Errorf("Score(%q) = %v, want nil", in, *s)
		}
	}
}

func TestCategoryIndex(t *testing.T) {
	cat, idx, ok := CategoryIndex("COMPUTER SCIENCE - scie")
	if !ok || cat == nil || *cat != "Computer Science" || idx == nil || *idx != "SCIE" {
		t.Fatalf("CategoryIndex = %v %v %v", cat, idx, ok)
	}

	cat, idx, ok = CategoryIndex("Mathematics")
	if !ok || cat == nil || *cat != "Mathematics" || idx != nil {
		t.Fatalf("CategoryIndex without separator = %v %v %v", cat, idx, ok)
	}

	if _, _, ok = CategoryIndex("Mathematics - FOO"); ok {
		t.Fatalf("unknown index accepted")
	}
}
