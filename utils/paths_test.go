package utils

import "testing"

func TestDatabasePath(t *testing.T) {
	if got := DatabasePath("animaldb"); got != "/animaldb" {
		t.Errorf("DatabasePath = %q", got)
	}
	if got := DatabasePath("my db+2024"); got != "/my%20db+2024" {
		t.Errorf("DatabasePath = %q", got)
	}
}

func TestDocumentPath(t *testing.T) {
	cases := []struct {
		db, docID, want string
	}{
		{"animaldb", "aardvark", "/animaldb/aardvark"},
		{"animaldb", "odd id", "/animaldb/odd%20id"},
		{"animaldb", "_design/views", "/animaldb/_design/views"},
		{"animaldb", "_design/my view", "/animaldb/_design/my%20view"},
		{"animaldb", "_local/checkpoint 1", "/animaldb/_local/checkpoint%201"},
	}
	for _, tc := range cases {
		if got := DocumentPath(tc.db, tc.docID); got != tc.want {
			t.Errorf("DocumentPath(%q, %q) = %q, want %q", tc.db, tc.docID, got, tc.want)
		}
	}
}

func TestPartitionPaths(t *testing.T) {
	if got := PartitionPath("events", "2024 q1"); got != "/events/_partition/2024%20q1" {
		t.Errorf("PartitionPath = %q", got)
	}
	if got := PartitionAllDocsPath("events", "q1"); got != "/events/_partition/q1/_all_docs" {
		t.Errorf("PartitionAllDocsPath = %q", got)
	}
	if got := AllDocsPath("events"); got != "/events/_all_docs" {
		t.Errorf("AllDocsPath = %q", got)
	}
}
