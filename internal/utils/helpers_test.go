package utils

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

func TestEntryRoundTrip(t *testing.T) {
	in := entity.Entry{
		Name:     entity.Ptr("Journal Of Testing"),
		ISSN:     entity.Ptr("1234-5678"),
		Category: entity.Ptr("Physics"),
		Index:    entity.Ptr("SCIE"),
		Quartile: entity.Ptr("Q2"),
		Position: entity.Ptr(7),
	}
	pb, err := ToPBEntry(in)
	if err != nil {
		t.Fatalf("ToPBEntry: %v", err)
	}
	if _, ok := pb.GetFields()["score"].GetKind().(*structpb.Value_NullValue); !ok {
		t.Errorf("score = %v, want null", pb.GetFields()["score"])
	}
	if diff := cmp.Diff(in, FromPBEntry(pb)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestIntField(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"year":  2023,
		"text":  "4",
		"half":  1.5,
		"null":  nil,
		"wrong": true,
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"year", 2023, false},
		{"text", 4, false},
		{"missing", 9, false},
		{"null", 9, false},
		{"half", 0, true},
		{"wrong", 0, true},
	}
	for _, tt := range tests {
		got, err := IntField(s, tt.key, 9)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("IntField(%q) = %d, %v; want %d, err=%v", tt.key, got, err, tt.want, tt.wantErr)
		}
	}
}
