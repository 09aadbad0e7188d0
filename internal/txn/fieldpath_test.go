package txn

import "testing"

func TestParseFieldPath(t *testing.T) {
	tests := []struct {
		path    string
		want    int
		wantErr bool
	}{
		{"title", 1, false},
		{"metadata.owner", 2, false},
		{"a.b.c", 3, false},
		{"", 0, true},
		{"  ", 0, true},
		{"a..b", 0, true},
		{".a", 0, true},
		{"a.", 0, true},
	}
	for _, tt := range tests {
		segs, err := ParseFieldPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFieldPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if err == nil && len(segs) != tt.want {
			t.Errorf("ParseFieldPath(%q) = %v, want %d segments", tt.path, segs, tt.want)
		}
	}
}

func TestSetFieldPath(t *testing.T) {
	data := map[string]interface{}{
		"title": "old",
		"metadata": map[string]interface{}{
			"owner": "alice",
		},
	}

	if err := SetFieldPath(data, []string{"title"}, "new"); err != nil {
		t.Fatalf("set top-level failed: %v", err)
	}
	if data["title"] != "new" {
		t.Errorf("title = %v", data["title"])
	}

	if err := SetFieldPath(data, []string{"metadata", "owner"}, "bob"); err != nil {
		t.Fatalf("set nested failed: %v", err)
	}
	if data["metadata"].(map[string]interface{})["owner"] != "bob" {
		t.Error("nested set did not take")
	}

	// Intermediate maps are created when absent.
	if err := SetFieldPath(data, []string{"extra", "deep", "leaf"}, 1); err != nil {
		t.Fatalf("set with intermediate creation failed: %v", err)
	}
	leaf := data["extra"].(map[string]interface{})["deep"].(map[string]interface{})["leaf"]
	if leaf != 1 {
		t.Errorf("leaf = %v", leaf)
	}

	// Traversing a scalar fails.
	if err := SetFieldPath(data, []string{"title", "sub"}, 1); err == nil {
		t.Error("expected error traversing a scalar")
	}
}
