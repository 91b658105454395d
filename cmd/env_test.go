package cmd

import (
	"testing"

	"github.com/abhisek/ieltsprep/internal/question"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		args    []string
		kind    question.Kind
		test    string
		section string
		wantErr bool
	}{
		{[]string{"reading", "1"}, question.KindReading, "test-1", "", false},
		{[]string{"Listening", "test-2", "3"}, question.KindListening, "test-2", "section-3", false},
		{[]string{"reading", "1", "section-2"}, question.KindReading, "test-1", "section-2", false},
		{[]string{"writing", "1"}, "", "", "", true},
		{[]string{"reading", "1", "two"}, "", "", "", true},
	}
	for _, tt := range tests {
		kind, testID, sectionID, err := parseTarget(tt.args)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseTarget(%v) expected error", tt.args)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseTarget(%v): %v", tt.args, err)
		}
		if kind != tt.kind || testID != tt.test || sectionID != tt.section {
			t.Errorf("parseTarget(%v) = %s %s %s, want %s %s %s",
				tt.args, kind, testID, sectionID, tt.kind, tt.test, tt.section)
		}
	}
}
