package normalize

import "testing"

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  ALEX.CHAN5@gmail.com ", "alex.chan5@gmail.com"},
		{"alex.chan5@gmail.com", "alex.chan5@gmail.com"},
		{"  ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Email(tt.in); got != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmailVariantsCollapse(t *testing.T) {
	a := Email("  ALEX.CHAN5@gmail.com ")
	b := Email("alex.chan5@gmail.com")
	if a != b {
		t.Errorf("case/space variants should normalize identically: %q vs %q", a, b)
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+852 9123 4567", "91234567"},
		{"(852) 9123-4567", "91234567"},
		{"91234567", "91234567"},
		{"123456", "123456"},
		{"12345678901", "45678901"},
		{"  9123-4567  ", "91234567"},
		{"", ""},
		{"abc", ""},
	}
	for _, tt := range tests {
		if got := Phone(tt.in); got != tt.want {
			t.Errorf("Phone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBool(t *testing.T) {
	truthy := []string{"1", "true", "TRUE", "t", "yes", "Y", "  y  ", "", "   "}
	for _, in := range truthy {
		if !Bool(in) {
			t.Errorf("Bool(%q) = false, want true", in)
		}
	}
	falsy := []string{"0", "false", "FALSE", "no", "n", "off", "banana"}
	for _, in := range falsy {
		if Bool(in) {
			t.Errorf("Bool(%q) = true, want false", in)
		}
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HK$ 1,299.00", "1299.00"},
		{"$99", "99"},
		{" $ 899 ", "899"},
		{"399.5", "399.5"},
		{"HK$1,099", "1099"},
		{"", "0"},
		{"n/a", "0"},
	}
	for _, tt := range tests {
		if got := Price(tt.in); got != tt.want {
			t.Errorf("Price(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-12-31", "2023-12-31"},
		{"2023/12/31", "2023-12-31"},
		{"31-12-2023", "2023-12-31"},
		{"31/12/2023", "2023-12-31"},
		{" 2023-01-05 ", "2023-01-05"},
		{"not-a-date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Date(tt.in); got != tt.want {
			t.Errorf("Date(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1299", "1299.00"},
		{"99", "99.00"},
		{"399.5", "399.50"},
		{"0", "0.00"},
		{"", "0.00"},
		{"junk", "0.00"},
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"-3.555", "-3.56"},
		{".5", "0.50"},
	}
	for _, tt := range tests {
		if got := Decimal(tt.in); got != tt.want {
			t.Errorf("Decimal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecimalFromFloat(t *testing.T) {
	if got := DecimalFromFloat(5.0); got != "5.00" {
		t.Errorf("DecimalFromFloat(5.0) = %q, want %q", got, "5.00")
	}
	if got := DecimalFromFloat(12.345); got != "12.35" {
		t.Errorf("DecimalFromFloat(12.345) = %q, want %q", got, "12.35")
	}
}

func TestPositiveInt(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"3", 1, 3},
		{" 2 ", 1, 2},
		{"2.0", 1, 2},
		{"", 1, 1},
		{"abc", 1, 1},
		{"0", 1, 1},
		{"-4", 1, 1},
	}
	for _, tt := range tests {
		if got := PositiveInt(tt.in, tt.def); got != tt.want {
			t.Errorf("PositiveInt(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(1, 5, 0); got != 1 {
		t.Errorf("Clamp(1,5,0) = %d, want 1", got)
	}
	if got := Clamp(1, 5, 11); got != 5 {
		t.Errorf("Clamp(1,5,11) = %d, want 5", got)
	}
	if got := Clamp(1, 5, 3); got != 3 {
		t.Errorf("Clamp(1,5,3) = %d, want 3", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 3); got != "hel" {
		t.Errorf("Truncate = %q, want %q", got, "hel")
	}
	if got := Truncate("hi", 10); got != "hi" {
		t.Errorf("Truncate should leave short strings alone, got %q", got)
	}
	if got := Truncate("héllo", 2); got != "hé" {
		t.Errorf("Truncate should count runes, got %q", got)
	}
}

func TestText(t *testing.T) {
	if got := Text("  VIP  ", "none"); got != "VIP" {
		t.Errorf("Text = %q, want %q", got, "VIP")
	}
	if got := Text("   ", "No bio provided."); got != "No bio provided." {
		t.Errorf("Text fallback = %q, want placeholder", got)
	}
}
