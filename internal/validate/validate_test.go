package validate

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple name", "Ann Lee", true},
		{"hyphenated", "Mary-Jane", true},
		{"apostrophe", "O'Brien", true},
		{"minimum length", "Al", true},
		{"single char", "A", false},
		{"empty", "", false},
		{"starts with space", " Ann", false},
		{"starts with digit", "1Ann", false},
		{"contains digit", "Ann2", false},
		{"fifty chars", "A" + string(letters(49)), true},
		{"fifty one chars", "A" + string(letters(50)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func letters(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return b
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "ann@example.com", true},
		{"subdomain", "ann@mail.example.com", true},
		{"plus tag", "ann+tag@example.com", true},
		{"dots in local", "a.nn@example.com", true},
		{"empty", "", false},
		{"no at", "annexample.com", false},
		{"two ats", "ann@ex@ample.com", false},
		{"empty local", "@example.com", false},
		{"local too long", string(letters(65)) + "@example.com", false},
		{"bad local char", "an n@example.com", false},
		{"no tld", "ann@example", false},
		{"one letter tld", "ann@example.c", false},
		{"domain starts with hyphen", "ann@-example.com", false},
		{"double dot in local", "a..nn@example.com", false},
		{"double dot in domain", "ann@exa..mple.com", false},
		{"digit tld", "ann@example.c0m", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Email(tt.input); got != tt.want {
				t.Errorf("Email(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSignupPassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"all classes", "Str0ng!pw", true},
		{"underscore as symbol", "Str0ng_pw", true},
		{"space as symbol", "Str0ng pw", true},
		{"too short", "S0ng!pw", false},
		{"no uppercase", "str0ng!pw", false},
		{"no lowercase", "STR0NG!PW", false},
		{"no digit", "Strong!pw", false},
		{"no symbol", "Str0ngpwd", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SignupPassword(tt.input); got != tt.want {
				t.Errorf("SignupPassword(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoginPassword(t *testing.T) {
	if !LoginPassword("weakpassword") {
		t.Error("login check must not re-validate strength")
	}
	if LoginPassword("short1!") {
		t.Error("login check must still enforce minimum length")
	}
}
