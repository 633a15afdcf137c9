package main

import (
	"context"

	"github.com/tetrixuno/skillup/core"
	"github.com/tetrixuno/skillup/core/user"
)

func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrSvc.CheckUniqueness(uname, email); err != nil {
		return err
	}

	roles := []string{user.RoleStudent}
	if isAdmin {
		roles = user.AllRoles
	}
	_, err := cli.usrSvc.Create(ctx, user.NewUser{
		Name:            core.CleanString(name),
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	return err
}
