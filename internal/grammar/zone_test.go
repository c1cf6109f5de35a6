package grammar

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

func feed(g RowGrammar, lines ...string) []entity.Entry {
	var (
		out []entity.Entry
		buf Buffer
	)
	for _, l := range lines {
		var rows []entity.Entry
		rows, buf = g.Step(buf, l)
		out = append(out, rows...)
	}
	return out
}

func zone(category, index, name string, issn, eissn, quartile *string, position int) entity.Entry {
	return entity.Entry{
		Category: entity.Ptr(category),
		Index:    entity.Ptr(index),
		Name:     entity.Ptr(name),
		ISSN:     issn,
		EISSN:    eissn,
		Quartile: quartile,
		Position: entity.Ptr(position),
	}
}

func TestZone2023SingleLine(t *testing.T) {
	got := feed(Zone2023{}, "Computer Science - SCIE Journal Of Testing 1234-5678 N/A Q2 7")
	want := []entity.Entry{
		zone("Computer Science", "SCIE", "Journal Of Testing", entity.Ptr("1234-5678"), nil, entity.Ptr("Q2"), 7),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	if got[0].Score != nil {
		t.Errorf("zone entry carries a score")
	}
}

func TestZone2023Wrapped(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []entity.Entry
	}{
		{
			name: "head on previous line",
			lines: []string{
				"Mathematics - SCIE Annals Of",
				"Something 0003-486x 1939-8980 Q1 1",
			},
			want: []entity.Entry{
				zone("Mathematics", "SCIE", "Annals Of Something", entity.Ptr("0003-486X"), entity.Ptr("1939-8980"), entity.Ptr("Q1"), 1),
			},
		},
		{
			name: "tail alone on its line",
			lines: []string{
				"Ecology - SSCI",
				"Journal Of Trees",
				"1111-2222 N/A N/A 12",
			},
			want: []entity.Entry{
				zone("Ecology", "SSCI", "Journal Of Trees", entity.Ptr("1111-2222"), nil, nil, 12),
			},
		},
		{
			name: "stale context is dropped after three lines",
			lines: []string{
				"Physics - SCIE",
				"noise one",
				"noise two",
				"Orphan Journal 1111-2222 N/A Q3 4",
				"Physics - SCIE Next Journal 2222-3333 N/A Q3 5",
			},
			want: []entity.Entry{
				zone("Physics", "SCIE", "Next Journal", entity.Ptr("2222-3333"), nil, entity.Ptr("Q3"), 5),
			},
		},
		{
			name: "unknown index drops the row",
			lines: []string{
				"Physics - XXXX Bad Journal 1111-2222 N/A Q3 4",
			},
			want: nil,
		},
		{
			name: "non tabular lines are ignored",
			lines: []string{
				"Page 3 of 120",
				"Computer Science - ESCI A 1234-5678 2345-6789 Q4 99",
			},
			want: []entity.Entry{
				zone("Computer Science", "ESCI", "A", entity.Ptr("1234-5678"), entity.Ptr("2345-6789"), entity.Ptr("Q4"), 99),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := feed(Zone2023{}, tt.lines...)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestZone2023BufferBounded(t *testing.T) {
	var buf Buffer
	for _, l := range []string{"a", "b", "c", "d"} {
		_, buf = Zone2023{}.Step(buf, l)
	}
	if diff := cmp.Diff(Buffer{"c", "d"}, buf); diff != "" {
		t.Errorf("buffer mismatch (-want +got):\n%s", diff)
	}
}

func TestZone2024(t *testing.T) {
	lines := []string{
		"ACTA TESTING 1234-5678 N/A COMPUTER SCIENCE, THEORY SCIE Q1 Q2",
		"JOURNAL OF",
		"WRAPPED ROWS 2345-6789 3456-7890 ECOLOGY SSCI N/A Q3",
	}

	jif := feed(Zone2024{Column: JIFColumn}, lines...)
	want := []entity.Entry{
		zone("Computer Science, Theory", "SCIE", "Acta Testing", entity.Ptr("1234-5678"), nil, entity.Ptr("Q1"), UnrankedPosition),
		zone("Ecology", "SSCI", "Journal Of Wrapped Rows", entity.Ptr("2345-6789"), entity.Ptr("3456-7890"), nil, UnrankedPosition),
	}
	if diff := cmp.Diff(want, jif); diff != "" {
		t.Errorf("JIF entries mismatch (-want +got):\n%s", diff)
	}

	ais := feed(Zone2024{Column: AISColumn}, lines...)
	if len(ais) != 2 || *ais[0].Quartile != "Q2" || *ais[1].Quartile != "Q3" {
		t.Errorf("AIS quartiles = %+v", ais)
	}
}

func TestZone2024BufferBounded(t *testing.T) {
	var buf Buffer
	for _, l := range []string{"a", "b", "c", "d"} {
		_, buf = Zone2024{}.Step(buf, l)
	}
	if diff := cmp.Diff(Buffer{"b", "c", "d"}, buf); diff != "" {
		t.Errorf("buffer mismatch (-want +got):\n%s", diff)
	}
	if (Zone2024{}).Trailer() != 1 {
		t.Errorf("2024 pages end with a footer line")
	}
}
