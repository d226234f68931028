package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDefaultModels(t *testing.T) {
	got := DefaultModels()
	want := []string{
		"gemini-2.5-flash-preview-09-2025",
		"gemini-2.0-flash-exp",
		"gemini-1.5-flash",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DefaultModels() = %v, want %v", got, want)
	}

	// Callers may mutate the returned slice
	got[0] = "changed"
	if DefaultModels()[0] != Model25FlashPreview {
		t.Error("DefaultModels should return a fresh slice")
	}
}

func TestParseModelList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "gemini-1.5-flash", []string{"gemini-1.5-flash"}},
		{"spaces", " a , b ,c ", []string{"a", "b", "c"}},
		{"blanks", "a,,b,", []string{"a", "b"}},
		{"duplicates", "a,b,a", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseModelList(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseModelList(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoleLabel(t *testing.T) {
	if RoleUser.Label() != "You" {
		t.Errorf("RoleUser.Label() = %s", RoleUser.Label())
	}
	if RoleAI.Label() != "AI" {
		t.Errorf("RoleAI.Label() = %s", RoleAI.Label())
	}
}

func TestMessageConstructors(t *testing.T) {
	u := UserMessage("hi")
	if !u.IsUser() || u.Text != "hi" {
		t.Errorf("UserMessage = %+v", u)
	}
	a := AIMessage("hello")
	if a.IsUser() || a.Role != RoleAI {
		t.Errorf("AIMessage = %+v", a)
	}
}

func TestNewGenerateRequest(t *testing.T) {
	data, err := json.Marshal(NewGenerateRequest("What is Go?"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"contents":[{"parts":[{"text":"What is Go?"}]}]}`
	if string(data) != want {
		t.Errorf("body = %s, want %s", data, want)
	}
}
