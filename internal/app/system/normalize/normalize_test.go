package normalize

import "testing"

func TestNormalizers(t *testing.T) {
	cases := []struct {
		fn    string
		f     func(string) string
		input string
		want  string
	}{
		{"Email", Email, "user@example.com", "user@example.com"},
		{"Email", Email, "  Admin@School.EDU.vn  ", "admin@school.edu.vn"},
		{"Email", Email, "   ", ""},
		{"Role", Role, "ADMIN", "admin"},
		{"Role", Role, "  Student  ", "student"},
		{"Role", Role, "", ""},
		{"MSSV", MSSV, "  SV001 ", "SV001"},
		{"MSSV", MSSV, "sv001", "sv001"},
		{"MSSV", MSSV, "", ""},
		{"QueryParam", QueryParam, "  cntt1  ", "cntt1"},
		{"QueryParam", QueryParam, "Nguyen Van", "Nguyen Van"},
	}

	for _, tc := range cases {
		t.Run(tc.fn+"/"+tc.input, func(t *testing.T) {
			if got := tc.f(tc.input); got != tc.want {
				t.Errorf("%s(%q) = %q, want %q", tc.fn, tc.input, got, tc.want)
			}
		})
	}
}
