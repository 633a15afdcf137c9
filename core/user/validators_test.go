package user

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tetrixuno/skillup/core"
)

func newTestValidator() *validator.Validate {
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	RegisterValidators(validate, translator)
	return validate
}

func newUserFixture() NewUser {
	return NewUser{
		Name:            "Jo Kal",
		Username:        "jokal_24",
		Email:           "jokal@test.cd",
		Password:        "V3ry$ecretStuff",
		PasswordConfirm: "V3ry$ecretStuff",
		Roles:           []string{RoleStudent},
	}
}

func hasFieldError(err error, field, tag string) bool {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	for _, vErr := range vErrs {
		if vErr.Field() == field && vErr.Tag() == tag {
			return true
		}
	}
	return false
}

func TestNewUserValidation(t *testing.T) {
	validate := newTestValidator()

	t.Run("valid", func(t *testing.T) {
		nu := newUserFixture()
		if err := validate.Struct(nu); err != nil {
			t.Errorf("Struct() failed: %v", err)
		}
	})

	t.Run("username or email required", func(t *testing.T) {
		nu := newUserFixture()
		nu.Username = ""
		nu.Email = ""
		err := validate.Struct(nu)
		if !hasFieldError(err, "username", usernameOrEmailTag) {
			t.Errorf("Struct() = %v, want %s error", err, usernameOrEmailTag)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		nu := newUserFixture()
		nu.Roles = []string{"superuser:"}
		err := validate.Struct(nu)
		if !hasFieldError(err, "roles", allRolesTag) {
			t.Errorf("Struct() = %v, want %s error", err, allRolesTag)
		}
	})
}

func TestPasswordPolicy(t *testing.T) {
	validate := newTestValidator()

	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "aB1$", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "aB1$ aB1$", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "20242025", wantTag: pwdNotAllNumTag},
		{name: "no digit", pwd: "LePassword?!", wantTag: pwdComplexityTag},
		{name: "no special", pwd: "LePassword19", wantTag: pwdComplexityTag},
		{name: "similar to username", pwd: "Jokal_24!a", wantTag: pwdAttrSimTag},
		{name: "strong", pwd: "V3ry$ecretStuff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := newUserFixture()
			nu.Password = tt.pwd
			nu.PasswordConfirm = tt.pwd
			err := validate.Struct(nu)
			if tt.wantTag == "" {
				if err != nil {
					t.Errorf("Struct() failed: %v", err)
				}
				return
			}
			if !hasFieldError(err, "password", tt.wantTag) {
				t.Errorf("Struct() = %v, want %s error", err, tt.wantTag)
			}
		})
	}
}
