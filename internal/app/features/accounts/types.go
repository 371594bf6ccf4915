// internal/app/features/accounts/types.go
package accounts

import (
	"net/http"
	"strings"

	"github.com/dalemusser/classhub/internal/app/gateway"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/viewdata"
	"github.com/dalemusser/classhub/internal/domain/models"
)

// credentials are the login half of a registration.
type credentials struct {
	Email    string `validate:"required,email,max=254" label:"Email"`
	Password string `validate:"required,min=6,max=72" label:"Password"`
	Confirm  string `validate:"eqfield=Password" label:"Password confirmation"`
	Role     string `validate:"required,role" label:"Role"`
}

// accountForm holds the submitted values for redisplay.
type accountForm struct {
	Email   string
	Role    string
	Student models.Student
	LockID  bool
}

type roleOption struct {
	Value    string
	Label    string
	Selected bool
}

func roleOptions(selected string) []roleOption {
	return []roleOption{
		{Value: models.RoleStudent, Label: "Student", Selected: selected != models.RoleAdmin},
		{Value: models.RoleAdmin, Label: "Admin", Selected: selected == models.RoleAdmin},
	}
}

// readForm parses the registration fields shared by both pages.
func readForm(r *http.Request) (credentials, accountForm) {
	c := credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm"),
		Role:     strings.ToLower(strings.TrimSpace(r.FormValue("role"))),
	}
	if c.Role == "" {
		c.Role = models.RoleStudent
	}
	st := models.Student{
		MSSV:      r.FormValue("mssv"),
		FullName:  r.FormValue("hoten"),
		Faculty:   r.FormValue("khoa"),
		Class:     r.FormValue("lop"),
		BirthDate: r.FormValue("ngaysinh"),
	}
	st.Normalize()
	return c, accountForm{Email: c.Email, Role: c.Role, Student: st}
}

// validate checks the credentials and, for students, the profile. It
// returns the first message to show.
func validate(c credentials, f accountForm) string {
	if res := inputval.Validate(c); res.HasErrors() {
		return res.First()
	}
	if c.Role == models.RoleStudent {
		if res := inputval.Validate(f.Student); res.HasErrors() {
			return res.First()
		}
	}
	return ""
}

func registerRequest(c credentials, f accountForm) gateway.RegisterRequest {
	req := gateway.RegisterRequest{Email: c.Email, Password: c.Password, Role: c.Role}
	if c.Role == models.RoleStudent {
		req.Student = f.Student
	}
	return req
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type signupData struct {
	viewdata.BaseVM
	Error string
	Form  accountForm
}

type accountRow struct {
	ID      string
	Email   string
	Role    string
	MSSV    string
	Created string
	IsSelf  bool
}

type accountsData struct {
	viewdata.BaseVM
	Error     string
	LoadError string
	Form      accountForm
	Roles     []roleOption
	Accounts  []accountRow
}

func accountRows(accs []models.Account, self string) []accountRow {
	rows := make([]accountRow, 0, len(accs))
	for _, a := range accs {
		rows = append(rows, accountRow{
			ID:      a.ID.String(),
			Email:   a.Email,
			Role:    a.Role,
			MSSV:    a.MSSV,
			Created: a.CreatedAt.Display(),
			IsSelf:  strings.EqualFold(a.Email, self),
		})
	}
	return rows
}
