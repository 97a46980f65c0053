package schema

import (
	"encoding/json"
	"testing"
)

func TestDefaultDescriptorTables(t *testing.T) {
	d := Default()
	want := []string{"incidents", "article", "incident_article_link"}
	if len(d.Tables) != len(want) {
		t.Fatalf("expected %d tables, got %d", len(want), len(d.Tables))
	}
	for i, name := range want {
		if d.Tables[i].Name != name {
			t.Fatalf("table %d: expected %s, got %s", i, name, d.Tables[i].Name)
		}
		if len(d.Tables[i].Columns) == 0 {
			t.Fatalf("table %s has no columns", name)
		}
	}
}

func TestDescriptorJSONRoundTrips(t *testing.T) {
	s, err := Default().JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	var back Descriptor
	if err := json.Unmarshal([]byte(s), &back); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if len(back.Tables) != 3 {
		t.Fatalf("expected 3 tables after round trip, got %d", len(back.Tables))
	}
	if back.Tables[0].Columns[0].Name != "id" {
		t.Fatalf("expected incidents.id first, got %s", back.Tables[0].Columns[0].Name)
	}
}
