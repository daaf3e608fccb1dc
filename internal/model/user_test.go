package model

import "testing"

func TestOppositeGender(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want string
	}{
		{"male sees female", StringPtr("male"), GenderFemale},
		{"female sees male", StringPtr("female"), GenderMale},
		{"null sees male", nil, GenderMale},
		// Literal comparison: anything that is not exactly "male" falls through.
		{"capitalised Male sees male", StringPtr("Male"), GenderMale},
		{"other value sees male", StringPtr("nonbinary"), GenderMale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OppositeGender(tt.in); got != tt.want {
				t.Errorf("OppositeGender() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringPtr(t *testing.T) {
	if StringPtr("") != nil {
		t.Error("StringPtr(\"\") should be nil")
	}
	if p := StringPtr("bio"); p == nil || *p != "bio" {
		t.Errorf("StringPtr(\"bio\") = %v, want pointer to \"bio\"", p)
	}
}
