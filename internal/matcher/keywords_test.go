package matcher

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits",
			text: "Reset Password",
			want: []string{"reset", "password"},
		},
		{
			name: "drops stop words",
			text: "the cat is on the mat",
			want: []string{"cat", "mat"},
		},
		{
			name: "trims punctuation",
			text: "How do I reset my password?",
			want: []string{"how", "do", "i", "reset", "my", "password"},
		},
		{
			name: "deduplicates",
			text: "password password PASSWORD",
			want: []string{"password"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "only stop words",
			text: "the a an and or",
			want: nil,
		},
		{
			name: "only punctuation",
			text: "?! ... ---",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
